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

func newTestUserHandlers() *UserHandlers {
	// Service stays nil; these paths fail before reaching it
	return NewUserHandlers(nil, logger.NewLogger(zap.NewNop()))
}

func TestCreateUser_ValidatesPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Empty payload",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Missing email",
			body:           map[string]string{"name": "Ada"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Invalid email format",
			body:           map[string]string{"email": "not-an-email", "name": "Ada"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Missing name",
			body:           map[string]string{"email": "ada@example.com"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestUserHandlers()

			router := gin.New()
			router.POST("/api/v1/users", h.CreateUser)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedError)
		})
	}
}

func TestDeposit_ValidatesRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		userID         string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Invalid user id",
			userID:         "broken",
			body:           map[string]interface{}{"amount": 50},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid user id",
		},
		{
			name:           "Missing amount",
			userID:         uuid.New().String(),
			body:           map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Malformed amount",
			userID:         uuid.New().String(),
			body:           map[string]interface{}{"amount": "heaps"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestUserHandlers()

			router := gin.New()
			router.POST("/api/v1/users/:id/deposit", h.Deposit)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/"+tt.userID+"/deposit", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedError)
		})
	}
}

func TestGetBalance_RejectsInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newTestUserHandlers()

	router := gin.New()
	router.GET("/api/v1/users/:id/balance", h.GetBalance)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/oops/balance", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid user id")
}
