package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/vest-service/vest_service/pkg/logger"
)

func newTestInvestmentHandlers() *InvestmentHandlers {
	// Service stays nil; these paths fail before reaching it
	return NewInvestmentHandlers(nil, logger.NewLogger(zap.NewNop()))
}

func TestInvest_ValidatesPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	planID := uuid.New().String()
	userID := uuid.New().String()

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Empty payload",
			body:           map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Missing plan id",
			body: map[string]interface{}{
				"userId": userID,
				"amount": 100,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Missing user id",
			body: map[string]interface{}{
				"planId": planID,
				"amount": 100,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Missing amount",
			body: map[string]interface{}{
				"planId": planID,
				"userId": userID,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Malformed plan id",
			body: map[string]interface{}{
				"planId": "not-a-uuid",
				"userId": userID,
				"amount": 100,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_REQUEST",
		},
		{
			name: "Malformed amount",
			body: map[string]interface{}{
				"planId": planID,
				"userId": userID,
				"amount": "plenty",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestInvestmentHandlers()

			router := gin.New()
			router.POST("/plans/invest", h.Invest)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/plans/invest", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedError)
		})
	}
}

func TestUpdateInvestmentStatus_ValidatesRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		investmentID   string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Invalid investment id",
			investmentID:   "nope",
			body:           map[string]interface{}{"status": "approved"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid investment id",
		},
		{
			name:           "Missing status",
			investmentID:   uuid.New().String(),
			body:           map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestInvestmentHandlers()

			router := gin.New()
			router.PUT("/plans/investment/:id", h.UpdateInvestmentStatus)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPut, "/plans/investment/"+tt.investmentID, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedError)
		})
	}
}

func TestGetInvestmentProgress_RejectsInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newTestInvestmentHandlers()

	router := gin.New()
	router.GET("/plans/investment/:id/progress", h.GetInvestmentProgress)

	req := httptest.NewRequest(http.MethodGet, "/plans/investment/abc/progress", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid investment id")
}
