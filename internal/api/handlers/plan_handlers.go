package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/domain/services/plans"
	"github.com/vest-service/vest_service/pkg/logger"
)

// PlanHandlers handles investment plan management endpoints
type PlanHandlers struct {
	planService *plans.Service
	validator   *validator.Validate
	logger      *logger.Logger
}

// NewPlanHandlers creates a new plan handlers instance
func NewPlanHandlers(planService *plans.Service, log *logger.Logger) *PlanHandlers {
	return &PlanHandlers{
		planService: planService,
		validator:   validator.New(),
		logger:      log,
	}
}

// ListPlans returns all active investment plans
// @Summary List active plans
// @Description Returns every active investment plan ordered by minimum amount
// @Tags plans
// @Produce json
// @Success 200 {array} entities.Plan
// @Failure 500 {object} entities.ErrorResponse
// @Router /plans [get]
func (h *PlanHandlers) ListPlans(c *gin.Context) {
	planList, err := h.planService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list plans", "error", err, "request_id", getRequestID(c))
		respondDomainError(c, err)
		return
	}

	respondSuccess(c, planList)
}

// GetPlan returns a single plan by id
// @Summary Get a plan
// @Description Returns one investment plan, active or retired
// @Tags plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} entities.Plan
// @Failure 400 {object} entities.ErrorResponse
// @Failure 404 {object} entities.ErrorResponse
// @Router /plans/{id} [get]
func (h *PlanHandlers) GetPlan(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid plan id")
		return
	}

	plan, err := h.planService.Get(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondSuccess(c, plan)
}

// CreatePlan creates a new investment plan
// @Summary Create a plan
// @Description Creates an investment plan. New plans start active.
// @Tags plans
// @Accept json
// @Produce json
// @Param request body entities.CreatePlanRequest true "Plan definition"
// @Success 201 {object} entities.Plan
// @Failure 400 {object} entities.ErrorResponse
// @Failure 409 {object} entities.ErrorResponse
// @Security BearerAuth
// @Router /plans [post]
func (h *PlanHandlers) CreatePlan(c *gin.Context) {
	var req entities.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid plan create request", "error", err)
		respondBadRequest(c, "Invalid request payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, 400, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("plan creation failed", "name", req.Name, "error", err)
		respondDomainError(c, err)
		return
	}

	respondCreated(c, plan)
}

// UpdatePlan updates an existing plan
// @Summary Update a plan
// @Description Replaces the mutable fields of an investment plan
// @Tags plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param request body entities.UpdatePlanRequest true "Plan definition"
// @Success 200 {object} entities.Plan
// @Failure 400 {object} entities.ErrorResponse
// @Failure 404 {object} entities.ErrorResponse
// @Security BearerAuth
// @Router /plans/{id} [put]
func (h *PlanHandlers) UpdatePlan(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid plan id")
		return
	}

	var req entities.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, 400, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.logger.Warn("plan update failed", "plan_id", id.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	respondSuccess(c, plan)
}

// DeletePlan retires a plan
// @Summary Delete a plan
// @Description Soft-deletes a plan by clearing its active flag. Existing investments keep their snapshot of the plan terms.
// @Tags plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} entities.MessageResponse
// @Failure 400 {object} entities.ErrorResponse
// @Failure 404 {object} entities.ErrorResponse
// @Security BearerAuth
// @Router /plans/{id} [delete]
func (h *PlanHandlers) DeletePlan(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid plan id")
		return
	}

	if err := h.planService.Delete(c.Request.Context(), id); err != nil {
		h.logger.Warn("plan delete failed", "plan_id", id.String(), "error", err)
		respondDomainError(c, err)
		return
	}

	respondSuccess(c, entities.MessageResponse{Message: "Plan deactivated"})
}
