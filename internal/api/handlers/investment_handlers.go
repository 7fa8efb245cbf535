package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/domain/services/investment"
	"github.com/vest-service/vest_service/pkg/logger"
)

// InvestmentHandlers handles the investment lifecycle endpoints
type InvestmentHandlers struct {
	investmentService *investment.Service
	validator         *validator.Validate
	logger            *logger.Logger
}

// NewInvestmentHandlers creates a new investment handlers instance
func NewInvestmentHandlers(investmentService *investment.Service, log *logger.Logger) *InvestmentHandlers {
	return &InvestmentHandlers{
		investmentService: investmentService,
		validator:         validator.New(),
		logger:            log,
	}
}

// Invest creates an investment in a plan
// @Summary Invest in a plan
// @Description Debits the user's deposit balance and creates a pending investment record with a snapshot of the plan terms
// @Tags investments
// @Accept json
// @Produce json
// @Param request body entities.InvestRequest true "Investment request"
// @Success 201 {object} entities.InvestResponse
// @Failure 400 {object} entities.ErrorResponse
// @Failure 404 {object} entities.ErrorResponse
// @Router /plans/invest [post]
func (h *InvestmentHandlers) Invest(c *gin.Context) {
	var req entities.InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid invest request", "error", err, "request_id", getRequestID(c))
		respondBadRequest(c, "Invalid request payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, 400, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	resp, err := h.investmentService.Invest(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("investment failed",
			"user_id", req.UserID.String(),
			"plan_id", req.PlanID.String(),
			"amount", req.Amount.String(),
			"error", err)
		respondDomainError(c, err)
		return
	}

	respondCreated(c, resp)
}

// UpdateInvestmentStatus transitions an investment's lifecycle status
// @Summary Update investment status
// @Description Moves an investment to approved, rejected or completed. Rejection refunds the invested amount; completion pays out principal and accrued interest.
// @Tags investments
// @Accept json
// @Produce json
// @Param id path string true "Investment ID"
// @Param request body entities.UpdateInvestmentStatusRequest true "Target status"
// @Success 200 {object} entities.Transaction
// @Failure 400 {object} entities.ErrorResponse
// @Failure 404 {object} entities.ErrorResponse
// @Failure 409 {object} entities.ErrorResponse
// @Security BearerAuth
// @Router /plans/investment/{id} [put]
func (h *InvestmentHandlers) UpdateInvestmentStatus(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid investment id")
		return
	}

	var req entities.UpdateInvestmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, 400, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	record, err := h.investmentService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.logger.Warn("status transition failed",
			"investment_id", id.String(),
			"target_status", string(req.Status),
			"error", err)
		respondDomainError(c, err)
		return
	}

	respondSuccess(c, record)
}

// GetInvestmentProgress reports the accrual state of an investment
// @Summary Get investment progress
// @Description Returns the progressive interest accrued so far and the remaining time, formatted for display
// @Tags investments
// @Produce json
// @Param id path string true "Investment ID"
// @Success 200 {object} entities.InvestmentProgress
// @Failure 400 {object} entities.ErrorResponse
// @Failure 404 {object} entities.ErrorResponse
// @Router /plans/investment/{id}/progress [get]
func (h *InvestmentHandlers) GetInvestmentProgress(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid investment id")
		return
	}

	progress, err := h.investmentService.GetProgress(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondSuccess(c, progress)
}

// ListActiveInvestments lists all active investments with progress
// @Summary List active investments
// @Description Returns every active investment with its accrual progress, plus a summary of how many are ready to complete
// @Tags investments
// @Produce json
// @Success 200 {object} entities.ActiveInvestmentsResponse
// @Failure 500 {object} entities.ErrorResponse
// @Router /plans/investments/active [get]
func (h *InvestmentHandlers) ListActiveInvestments(c *gin.Context) {
	resp, err := h.investmentService.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list active investments", "error", err)
		respondDomainError(c, err)
		return
	}

	respondSuccess(c, resp)
}

// CompleteInvestments triggers a completion sweep
// @Summary Run the completion sweep
// @Description Completes every active investment whose period has elapsed. At most one sweep runs at a time; concurrent triggers are skipped.
// @Tags investments
// @Produce json
// @Success 200 {object} investment.SweepReport
// @Failure 500 {object} entities.ErrorResponse
// @Security BearerAuth
// @Router /plans/investments/complete-automation [post]
func (h *InvestmentHandlers) CompleteInvestments(c *gin.Context) {
	report, err := h.investmentService.CompleteDueInvestments(c.Request.Context())
	if err != nil {
		h.logger.Error("completion sweep failed", "error", err)
		respondDomainError(c, err)
		return
	}

	respondSuccess(c, report)
}
