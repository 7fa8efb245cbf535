package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of a transaction record
type TransactionType string

const (
	TransactionTypeInvestment TransactionType = "investment"
	TransactionTypeDeposit    TransactionType = "deposit"
)

// IsValid checks if the transaction type is supported
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeInvestment || t == TransactionTypeDeposit
}

// InvestmentStatus represents the lifecycle state of an investment
type InvestmentStatus string

const (
	InvestmentStatusPending   InvestmentStatus = "pending"
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusApproved  InvestmentStatus = "approved"
	InvestmentStatusRejected  InvestmentStatus = "rejected"
	InvestmentStatusCompleted InvestmentStatus = "completed"

	// InvestmentStatusReadyToComplete is a display-only status for
	// active investments whose end date has passed. It is never stored.
	InvestmentStatusReadyToComplete InvestmentStatus = "ready_to_complete"
)

// IsValid checks if the status is a storable lifecycle status
func (s InvestmentStatus) IsValid() bool {
	switch s {
	case InvestmentStatusPending, InvestmentStatusActive, InvestmentStatusApproved,
		InvestmentStatusRejected, InvestmentStatusCompleted:
		return true
	default:
		return false
	}
}

// Transaction represents a user transaction record. Investment records
// carry a denormalized snapshot of the user contact fields and the plan
// terms taken at creation time, so later plan edits never change the
// terms of an existing investment.
type Transaction struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	UserID          uuid.UUID        `json:"userId" db:"user_id"`
	UserEmail       string           `json:"userEmail" db:"user_email"`
	UserName        string           `json:"userName" db:"user_name"`
	Type            TransactionType  `json:"type" db:"type"`
	Amount          decimal.Decimal  `json:"amount" db:"amount"`
	Status          InvestmentStatus `json:"status" db:"status"`
	PlanID          *uuid.UUID       `json:"planId,omitempty" db:"plan_id"`
	PlanName        string           `json:"planName,omitempty" db:"plan_name"`
	PlanDuration    string           `json:"planDuration,omitempty" db:"plan_duration"`
	TotalInterest   decimal.Decimal  `json:"totalInterest" db:"total_interest"`
	CurrentInterest decimal.Decimal  `json:"currentInterest" db:"current_interest"`
	StartDate       *time.Time       `json:"startDate,omitempty" db:"start_date"`
	EndDate         *time.Time       `json:"endDate,omitempty" db:"end_date"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// IsInvestment reports whether the record is an investment transaction
func (t *Transaction) IsInvestment() bool {
	return t.Type == TransactionTypeInvestment
}

// InvestRequest represents an investment creation request
type InvestRequest struct {
	PlanID   uuid.UUID        `json:"planId" validate:"required"`
	UserID   uuid.UUID        `json:"userId" validate:"required"`
	Amount   decimal.Decimal  `json:"amount" validate:"required"`
	Interest *decimal.Decimal `json:"interest,omitempty"`
}

// InvestmentSummary is the creation-time view of a new investment
type InvestmentSummary struct {
	ID            uuid.UUID        `json:"id"`
	Status        InvestmentStatus `json:"status"`
	StartDate     time.Time        `json:"startDate"`
	EndDate       time.Time        `json:"endDate"`
	TimeRemaining int64            `json:"timeRemaining"`
}

// InvestResponse is returned after a successful investment creation
type InvestResponse struct {
	RemainingBalance decimal.Decimal   `json:"remainingBalance"`
	Investment       InvestmentSummary `json:"investment"`
}

// UpdateInvestmentStatusRequest drives a lifecycle transition
type UpdateInvestmentStatusRequest struct {
	Status InvestmentStatus `json:"status" validate:"required"`
}

// InvestmentProgress is a read-only projection of an investment's
// accrual state at a point in time
type InvestmentProgress struct {
	ID              uuid.UUID        `json:"id"`
	PlanName        string           `json:"planName"`
	Status          InvestmentStatus `json:"status"`
	Amount          decimal.Decimal  `json:"amount"`
	TotalInterest   decimal.Decimal  `json:"totalInterest"`
	CurrentInterest decimal.Decimal  `json:"currentInterest"`
	StartDate       time.Time        `json:"startDate"`
	EndDate         time.Time        `json:"endDate"`
	TimeRemaining   string           `json:"timeRemaining"`
	IsCompleted     bool             `json:"isCompleted"`
}

// ActiveInvestmentsSummary aggregates the active investment set
type ActiveInvestmentsSummary struct {
	Total           int `json:"total"`
	ReadyToComplete int `json:"readyToComplete"`
}

// ActiveInvestmentsResponse lists active investments with progress
type ActiveInvestmentsResponse struct {
	Investments []InvestmentProgress     `json:"investments"`
	Summary     ActiveInvestmentsSummary `json:"summary"`
}
