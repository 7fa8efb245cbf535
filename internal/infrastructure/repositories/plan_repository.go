package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/domain/errors"
	"go.uber.org/zap"
)

// PlanRepository handles investment plan persistence operations
type PlanRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *sql.DB, logger *zap.Logger) *PlanRepository {
	return &PlanRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new plan. Plan names are unique case-insensitively,
// enforced by a unique index on LOWER(name).
func (r *PlanRepository) Create(ctx context.Context, plan *entities.Plan) error {
	query := `
		INSERT INTO plans (id, name, description, roi, minimum_amount, duration, features, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.Description,
		plan.ROI,
		plan.MinimumAmount,
		plan.Duration,
		pq.Array(plan.Features),
		plan.Active,
		plan.CreatedAt,
		plan.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return errors.AlreadyExistsError("plan")
		}
		r.logger.Error("failed to create plan",
			zap.Error(err),
			zap.String("plan_name", plan.Name),
		)
		return fmt.Errorf("failed to create plan: %w", err)
	}

	r.logger.Info("plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("plan_name", plan.Name),
	)

	return nil
}

// GetByID retrieves a plan by its identifier
func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	query := `
		SELECT id, name, description, roi, minimum_amount, duration, features, active, created_at, updated_at
		FROM plans
		WHERE id = $1
	`

	plan := &entities.Plan{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.Description,
		&plan.ROI,
		&plan.MinimumAmount,
		&plan.Duration,
		pq.Array(&plan.Features),
		&plan.Active,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("plan")
		}
		r.logger.Error("failed to get plan",
			zap.Error(err),
			zap.String("plan_id", id.String()),
		)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return plan, nil
}

// ListActive returns all active plans ordered by minimum amount ascending
func (r *PlanRepository) ListActive(ctx context.Context) ([]*entities.Plan, error) {
	query := `
		SELECT id, name, description, roi, minimum_amount, duration, features, active, created_at, updated_at
		FROM plans
		WHERE active = true
		ORDER BY minimum_amount ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list active plans", zap.Error(err))
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}
	defer rows.Close()

	plans := make([]*entities.Plan, 0)
	for rows.Next() {
		plan := &entities.Plan{}
		err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.Description,
			&plan.ROI,
			&plan.MinimumAmount,
			&plan.Duration,
			pq.Array(&plan.Features),
			&plan.Active,
			&plan.CreatedAt,
			&plan.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}

	return plans, nil
}

// Update persists changes to an existing plan
func (r *PlanRepository) Update(ctx context.Context, plan *entities.Plan) error {
	query := `
		UPDATE plans
		SET name = $2, description = $3, roi = $4, minimum_amount = $5,
			duration = $6, features = $7, active = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.Description,
		plan.ROI,
		plan.MinimumAmount,
		plan.Duration,
		pq.Array(plan.Features),
		plan.Active,
		time.Now(),
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return errors.AlreadyExistsError("plan")
		}
		r.logger.Error("failed to update plan",
			zap.Error(err),
			zap.String("plan_id", plan.ID.String()),
		)
		return fmt.Errorf("failed to update plan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NotFoundError("plan")
	}

	r.logger.Info("plan updated",
		zap.String("plan_id", plan.ID.String()),
		zap.String("plan_name", plan.Name),
	)

	return nil
}

// Deactivate soft-deletes a plan by clearing its active flag. The plan
// row is kept so existing investments retain a valid plan reference.
func (r *PlanRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE plans
		SET active = false, updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		r.logger.Error("failed to deactivate plan",
			zap.Error(err),
			zap.String("plan_id", id.String()),
		)
		return fmt.Errorf("failed to deactivate plan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NotFoundError("plan")
	}

	r.logger.Info("plan deactivated", zap.String("plan_id", id.String()))

	return nil
}
