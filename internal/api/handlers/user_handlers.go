package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/domain/services/investment"
	"github.com/vest-service/vest_service/pkg/logger"
)

// UserHandlers handles investor account endpoints
type UserHandlers struct {
	investmentService *investment.Service
	validator         *validator.Validate
	logger            *logger.Logger
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(investmentService *investment.Service, log *logger.Logger) *UserHandlers {
	return &UserHandlers{
		investmentService: investmentService,
		validator:         validator.New(),
		logger:            log,
	}
}

// CreateUser registers a new investor account
// @Summary Register a user
// @Description Creates an investor account with zero deposit and interest balances
// @Tags users
// @Accept json
// @Produce json
// @Param request body entities.CreateUserRequest true "User details"
// @Success 201 {object} entities.User
// @Failure 400 {object} entities.ErrorResponse
// @Failure 409 {object} entities.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/users [post]
func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req entities.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, 400, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	user, err := h.investmentService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("user creation failed", "email", req.Email, "error", err)
		respondDomainError(c, err)
		return
	}

	respondCreated(c, user)
}

// Deposit credits a user's deposit balance
// @Summary Credit a deposit
// @Description Adds funds to the user's spendable deposit balance and records a deposit transaction
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body entities.DepositRequest true "Deposit amount"
// @Success 200 {object} entities.BalanceResponse
// @Failure 400 {object} entities.ErrorResponse
// @Failure 404 {object} entities.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/users/{id}/deposit [post]
func (h *UserHandlers) Deposit(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid user id")
		return
	}

	var req entities.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, 400, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	balance, err := h.investmentService.Deposit(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.logger.Warn("deposit failed", "user_id", id.String(), "amount", req.Amount.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	respondSuccess(c, balance)
}

// GetBalance reports a user's balances
// @Summary Get user balances
// @Description Returns the user's deposit and interest balances
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} entities.BalanceResponse
// @Failure 400 {object} entities.ErrorResponse
// @Failure 404 {object} entities.ErrorResponse
// @Router /api/v1/users/{id}/balance [get]
func (h *UserHandlers) GetBalance(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid user id")
		return
	}

	balance, err := h.investmentService.GetBalance(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondSuccess(c, balance)
}
