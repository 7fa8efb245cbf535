package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/infrastructure/config"
	"github.com/vest-service/vest_service/pkg/auth"
	"github.com/vest-service/vest_service/pkg/crypto"
	"github.com/vest-service/vest_service/pkg/logger"
)

// AuthHandlers handles administrative authentication
type AuthHandlers struct {
	cfg       *config.Config
	validator *validator.Validate
	logger    *logger.Logger
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(cfg *config.Config, log *logger.Logger) *AuthHandlers {
	return &AuthHandlers{
		cfg:       cfg,
		validator: validator.New(),
		logger:    log,
	}
}

// AdminLogin authenticates the configured admin account
// @Summary Admin login
// @Description Authenticate with the admin credentials and receive a bearer token for the administrative endpoints
// @Tags auth
// @Accept json
// @Produce json
// @Param request body entities.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} auth.Token
// @Failure 400 {object} entities.ErrorResponse
// @Failure 401 {object} entities.ErrorResponse
// @Router /api/v1/auth/admin/login [post]
func (h *AuthHandlers) AdminLogin(c *gin.Context) {
	var req entities.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid admin login request", "error", err)
		respondBadRequest(c, "Invalid request payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Username and password are required", nil)
		return
	}

	if !h.credentialsValid(req.Username, req.Password) {
		h.logger.Warn("admin login failed", "username", req.Username, "request_id", getRequestID(c))
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}

	token, err := auth.GenerateToken(req.Username, "admin", h.cfg.JWT.Secret, h.cfg.JWT.AccessTTL)
	if err != nil {
		h.logger.Error("failed to generate admin token", "error", err)
		respondError(c, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate authentication token", nil)
		return
	}

	h.logger.Info("admin login", "username", req.Username)
	respondSuccess(c, token)
}

// credentialsValid checks the submitted credentials against the
// configured admin account. The bcrypt hash takes precedence; the
// plain password is a development fallback compared in constant time.
func (h *AuthHandlers) credentialsValid(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(h.cfg.Admin.Username)) != 1 {
		return false
	}

	if h.cfg.Admin.PasswordHash != "" {
		return crypto.ValidateSecret(password, h.cfg.Admin.PasswordHash)
	}
	if h.cfg.Admin.Password != "" {
		return subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.Admin.Password)) == 1
	}

	return false
}
