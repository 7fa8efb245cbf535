package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/domain/errors"
	"github.com/vest-service/vest_service/internal/infrastructure/database"
	"github.com/vest-service/vest_service/pkg/tracing"
	"go.uber.org/zap"
)

// InvestmentRepository handles transaction record persistence. Lifecycle
// operations that touch both a transaction record and the owning user's
// balances run inside a single database transaction so a crash can never
// leave a debit without a record or a completed record without its payout.
type InvestmentRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(db *sqlx.DB, logger *zap.Logger) *InvestmentRepository {
	return &InvestmentRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a transaction record by identifier
func (r *InvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	ctx, span := tracing.StartDBSpan(ctx, tracing.DBSpanConfig{
		Operation: "SELECT",
		Table:     "transactions",
	})
	defer span.End()

	query := `SELECT * FROM transactions WHERE id = $1`

	var record entities.Transaction
	err := r.db.GetContext(ctx, &record, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			tracing.EndDBSpan(span, nil, 0)
			return nil, errors.NotFoundError("investment")
		}
		tracing.EndDBSpan(span, err, -1)
		r.logger.Error("failed to get transaction",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	tracing.EndDBSpan(span, nil, 1)
	return &record, nil
}

// ListActiveInvestments returns all active investment records that carry
// an end date, ordered soonest-ending first. This is the working set for
// the completion sweep.
func (r *InvestmentRepository) ListActiveInvestments(ctx context.Context) ([]*entities.Transaction, error) {
	ctx, span := tracing.StartDBSpan(ctx, tracing.DBSpanConfig{
		Operation: "SELECT",
		Table:     "transactions",
	})
	defer span.End()

	query := `
		SELECT * FROM transactions
		WHERE type = 'investment' AND status = 'active' AND end_date IS NOT NULL
		ORDER BY end_date ASC
	`

	records := make([]*entities.Transaction, 0)
	err := r.db.SelectContext(ctx, &records, query)
	if err != nil {
		tracing.EndDBSpan(span, err, -1)
		r.logger.Error("failed to list active investments", zap.Error(err))
		return nil, fmt.Errorf("failed to list active investments: %w", err)
	}

	tracing.EndDBSpan(span, nil, int64(len(records)))
	return records, nil
}

// CreateInvestment atomically debits the invested amount from the user's
// deposit balance and inserts the investment record. The debit is guarded
// on the current balance, so a concurrent spend cannot push the balance
// negative; the guard failing rolls the whole operation back.
func (r *InvestmentRepository) CreateInvestment(ctx context.Context, record *entities.Transaction) error {
	ctx, span := tracing.StartDBSpan(ctx, tracing.DBSpanConfig{
		Operation: "INSERT",
		Table:     "transactions",
	})
	defer span.End()

	err := database.WithTransaction(ctx, r.db.DB, func(tx *sql.Tx) error {
		if err := r.debitDepositTx(ctx, tx, record.UserID, record.Amount); err != nil {
			return err
		}
		return r.insertTx(ctx, tx, record)
	})

	if err != nil {
		tracing.EndDBSpan(span, err, -1)
		if !errors.IsInsufficientFunds(err) {
			r.logger.Error("failed to create investment",
				zap.Error(err),
				zap.String("user_id", record.UserID.String()),
				zap.String("amount", record.Amount.String()),
			)
		}
		return err
	}

	tracing.EndDBSpan(span, nil, 1)
	r.logger.Info("investment created",
		zap.String("transaction_id", record.ID.String()),
		zap.String("user_id", record.UserID.String()),
		zap.String("plan_name", record.PlanName),
		zap.String("amount", record.Amount.String()),
	)

	return nil
}

// RecordDeposit atomically inserts a deposit record and credits the
// user's deposit balance.
func (r *InvestmentRepository) RecordDeposit(ctx context.Context, record *entities.Transaction) error {
	ctx, span := tracing.StartDBSpan(ctx, tracing.DBSpanConfig{
		Operation: "INSERT",
		Table:     "transactions",
	})
	defer span.End()

	err := database.WithTransaction(ctx, r.db.DB, func(tx *sql.Tx) error {
		if err := r.insertTx(ctx, tx, record); err != nil {
			return err
		}
		return r.creditBalancesTx(ctx, tx, record.UserID, record.Amount, decimal.Zero)
	})

	if err != nil {
		tracing.EndDBSpan(span, err, -1)
		r.logger.Error("failed to record deposit",
			zap.Error(err),
			zap.String("user_id", record.UserID.String()),
			zap.String("amount", record.Amount.String()),
		)
		return err
	}

	tracing.EndDBSpan(span, nil, 1)
	r.logger.Info("deposit recorded",
		zap.String("transaction_id", record.ID.String()),
		zap.String("user_id", record.UserID.String()),
		zap.String("amount", record.Amount.String()),
	)

	return nil
}

// UpdateStatus persists a bare status change with no balance movement
func (r *InvestmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.InvestmentStatus) error {
	ctx, span := tracing.StartDBSpan(ctx, tracing.DBSpanConfig{
		Operation: "UPDATE",
		Table:     "transactions",
	})
	defer span.End()

	query := `
		UPDATE transactions
		SET status = $2, updated_at = $3
		WHERE id = $1 AND type = 'investment'
	`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		tracing.EndDBSpan(span, err, -1)
		r.logger.Error("failed to update investment status",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("failed to update investment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		tracing.EndDBSpan(span, nil, 0)
		return errors.NotFoundError("investment")
	}

	tracing.EndDBSpan(span, nil, rowsAffected)
	r.logger.Info("investment status updated",
		zap.String("transaction_id", id.String()),
		zap.String("status", string(status)),
	)

	return nil
}

// RejectInvestment atomically rejects an investment: the record's status
// moves to rejected, the refund is credited back to the user's deposit
// balance, and the record's amount is zeroed. The status guard means a
// record can only be rejected once; a second attempt finds no matching
// row and reports a conflict.
func (r *InvestmentRepository) RejectInvestment(ctx context.Context, id, userID uuid.UUID, refund decimal.Decimal) error {
	ctx, span := tracing.StartDBSpan(ctx, tracing.DBSpanConfig{
		Operation: "UPDATE",
		Table:     "transactions",
	})
	defer span.End()

	err := database.WithTransaction(ctx, r.db.DB, func(tx *sql.Tx) error {
		query := `
			UPDATE transactions
			SET status = 'rejected', amount = 0, updated_at = $2
			WHERE id = $1 AND type = 'investment' AND status IN ('pending', 'active', 'approved')
		`

		result, err := tx.ExecContext(ctx, query, id, time.Now())
		if err != nil {
			return fmt.Errorf("failed to reject investment: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return errors.ConflictError("investment", "already processed")
		}

		if refund.IsPositive() {
			return r.creditBalancesTx(ctx, tx, userID, refund, decimal.Zero)
		}
		return nil
	})

	if err != nil {
		tracing.EndDBSpan(span, err, -1)
		if !errors.IsConflict(err) {
			r.logger.Error("failed to reject investment",
				zap.Error(err),
				zap.String("transaction_id", id.String()),
				zap.String("user_id", userID.String()),
			)
		}
		return err
	}

	tracing.EndDBSpan(span, nil, 1)
	r.logger.Info("investment rejected",
		zap.String("transaction_id", id.String()),
		zap.String("user_id", userID.String()),
		zap.String("refunded", refund.String()),
	)

	return nil
}

// CompleteInvestment atomically completes an investment: the principal
// returns to the user's deposit balance, the full interest is credited
// to the interest balance, and the record's status and current interest
// are finalized. The status guard makes completion idempotent; once a
// record is completed no further attempt can pay out again.
func (r *InvestmentRepository) CompleteInvestment(ctx context.Context, id, userID uuid.UUID, principal, interest decimal.Decimal) error {
	ctx, span := tracing.StartDBSpan(ctx, tracing.DBSpanConfig{
		Operation: "UPDATE",
		Table:     "transactions",
	})
	defer span.End()

	err := database.WithTransaction(ctx, r.db.DB, func(tx *sql.Tx) error {
		query := `
			UPDATE transactions
			SET status = 'completed', current_interest = $2, updated_at = $3
			WHERE id = $1 AND type = 'investment' AND status IN ('active', 'approved')
		`

		result, err := tx.ExecContext(ctx, query, id, interest, time.Now())
		if err != nil {
			return fmt.Errorf("failed to complete investment: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return errors.ConflictError("investment", "already processed")
		}

		return r.creditBalancesTx(ctx, tx, userID, principal, interest)
	})

	if err != nil {
		tracing.EndDBSpan(span, err, -1)
		if !errors.IsConflict(err) {
			r.logger.Error("failed to complete investment",
				zap.Error(err),
				zap.String("transaction_id", id.String()),
				zap.String("user_id", userID.String()),
			)
		}
		return err
	}

	tracing.EndDBSpan(span, nil, 1)
	r.logger.Info("investment completed",
		zap.String("transaction_id", id.String()),
		zap.String("user_id", userID.String()),
		zap.String("principal", principal.String()),
		zap.String("interest", interest.String()),
	)

	return nil
}

// insertTx inserts a transaction record within an open transaction
func (r *InvestmentRepository) insertTx(ctx context.Context, tx *sql.Tx, record *entities.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, user_email, user_name, type, amount, status,
			plan_id, plan_name, plan_duration, total_interest, current_interest,
			start_date, end_date, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)`

	_, err := tx.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.UserEmail,
		record.UserName,
		record.Type,
		record.Amount,
		record.Status,
		record.PlanID,
		record.PlanName,
		record.PlanDuration,
		record.TotalInterest,
		record.CurrentInterest,
		record.StartDate,
		record.EndDate,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// debitDepositTx deducts amount from the user's deposit balance within
// an open transaction. The balance guard rejects overdrafts.
func (r *InvestmentRepository) debitDepositTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE users
		SET deposit = deposit - $2, updated_at = $3
		WHERE id = $1 AND deposit >= $2
	`

	result, err := tx.ExecContext(ctx, query, userID, amount, time.Now())
	if err != nil {
		return fmt.Errorf("failed to debit deposit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.InsufficientFundsError("insufficient deposit balance")
	}

	return nil
}

// creditBalancesTx adds to the user's deposit and interest balances
// within an open transaction
func (r *InvestmentRepository) creditBalancesTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, deposit, interest decimal.Decimal) error {
	query := `
		UPDATE users
		SET deposit = deposit + $2, interest = interest + $3, updated_at = $4
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query, userID, deposit, interest, time.Now())
	if err != nil {
		return fmt.Errorf("failed to credit balances: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NotFoundError("user")
	}

	return nil
}
