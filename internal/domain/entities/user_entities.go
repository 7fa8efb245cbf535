package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents an investor account. Deposit is the spendable
// principal balance; Interest is the realized interest balance. Both
// are mutated only by the investment lifecycle and the deposit
// endpoint.
type User struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Email     string          `json:"email" db:"email"`
	Name      string          `json:"name" db:"name"`
	Deposit   decimal.Decimal `json:"deposit" db:"deposit"`
	Interest  decimal.Decimal `json:"interest" db:"interest"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// CreateUserRequest represents a user registration request
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

// DepositRequest represents a deposit balance top-up request
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// BalanceResponse reports a user's balances
type BalanceResponse struct {
	UserID   uuid.UUID       `json:"userId"`
	Deposit  decimal.Decimal `json:"deposit"`
	Interest decimal.Decimal `json:"interest"`
}
