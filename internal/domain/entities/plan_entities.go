package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Investment plan rate-of-return bounds, in percent
var (
	planROIMin = decimal.Zero
	planROIMax = decimal.NewFromInt(1000)
)

// Plan represents an investment plan users can invest in.
// Plans are never hard-deleted; retiring a plan clears the active flag.
type Plan struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	ROI           decimal.Decimal `json:"roi" db:"roi"`
	MinimumAmount decimal.Decimal `json:"minimumAmount" db:"minimum_amount"`
	Duration      string          `json:"duration" db:"duration"`
	Features      []string        `json:"features" db:"features"`
	Active        bool            `json:"active" db:"active"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// Validate checks the plan's field invariants
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("plan name is required")
	}
	if p.ROI.LessThan(planROIMin) || p.ROI.GreaterThan(planROIMax) {
		return fmt.Errorf("plan roi must be between 0 and 1000")
	}
	if p.MinimumAmount.IsNegative() {
		return fmt.Errorf("plan minimum amount cannot be negative")
	}
	if strings.TrimSpace(p.Duration) == "" {
		return fmt.Errorf("plan duration is required")
	}
	for _, feature := range p.Features {
		if strings.TrimSpace(feature) == "" {
			return fmt.Errorf("plan features cannot be empty")
		}
	}
	return nil
}

// CreatePlanRequest represents a plan creation request
type CreatePlanRequest struct {
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description"`
	ROI           decimal.Decimal `json:"roi" validate:"required"`
	MinimumAmount decimal.Decimal `json:"minimumAmount"`
	Duration      string          `json:"duration" validate:"required"`
	Features      []string        `json:"features"`
}

// ToPlan builds a Plan from the request. New plans start active.
func (r *CreatePlanRequest) ToPlan() *Plan {
	now := time.Now()
	return &Plan{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(r.Name),
		Description:   r.Description,
		ROI:           r.ROI,
		MinimumAmount: r.MinimumAmount,
		Duration:      strings.TrimSpace(r.Duration),
		Features:      r.Features,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// UpdatePlanRequest represents a plan update request
type UpdatePlanRequest struct {
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description"`
	ROI           decimal.Decimal `json:"roi" validate:"required"`
	MinimumAmount decimal.Decimal `json:"minimumAmount"`
	Duration      string          `json:"duration" validate:"required"`
	Features      []string        `json:"features"`
	Active        *bool           `json:"active,omitempty"`
}
