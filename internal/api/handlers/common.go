package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/domain/errors"
)

// getRequestID extracts request ID from context
func getRequestID(c *gin.Context) string {
	if reqID, exists := c.Get("request_id"); exists {
		if id, ok := reqID.(string); ok {
			return id
		}
	}
	return ""
}

// respondError sends a standardized error response
func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, entities.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// respondBadRequest sends a bad request error
func respondBadRequest(c *gin.Context, message string, details ...map[string]interface{}) {
	var det map[string]interface{}
	if len(details) > 0 {
		det = details[0]
	}
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message, det)
}

// respondUnauthorized sends an unauthorized error
func respondUnauthorized(c *gin.Context, message string) {
	respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// respondNotFound sends a not found error
func respondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// respondConflict sends a conflict error
func respondConflict(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, "CONFLICT", message, nil)
}

// respondInternalError sends an internal server error
func respondInternalError(c *gin.Context, message string) {
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

// respondSuccess sends a success response with data
func respondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// respondCreated sends a created response with data
func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// respondDomainError maps a domain error onto the HTTP status it
// corresponds to. Unclassified errors become opaque 500s so internal
// failure detail never leaks to clients.
func respondDomainError(c *gin.Context, err error) {
	code := errors.GetErrorCode(err)
	details := errors.GetErrorDetails(err)

	switch {
	case errors.IsNotFound(err):
		respondError(c, http.StatusNotFound, code, err.Error(), details)
	case errors.IsInvalidInput(err), errors.IsInsufficientFunds(err), errors.IsAlreadyExists(err):
		// Duplicate names are a field problem from the caller's point
		// of view, so they surface as 400 rather than 409.
		respondError(c, http.StatusBadRequest, code, err.Error(), details)
	case errors.IsConflict(err):
		respondError(c, http.StatusConflict, code, err.Error(), details)
	case errors.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, code, err.Error(), details)
	default:
		respondInternalError(c, "internal server error")
	}
}

// parseUUID parses a string to uuid.UUID
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, fmt.Errorf("empty UUID string")
	}
	return uuid.Parse(s)
}
