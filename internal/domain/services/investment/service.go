package investment

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/domain/errors"
	"github.com/vest-service/vest_service/internal/domain/services/duration"
	"github.com/vest-service/vest_service/pkg/logger"
	"github.com/vest-service/vest_service/pkg/metrics"
)

// InvestmentRepository interface for transaction record persistence.
// The balance-moving operations are atomic: record change and balance
// change commit together or not at all.
type InvestmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	ListActiveInvestments(ctx context.Context) ([]*entities.Transaction, error)
	CreateInvestment(ctx context.Context, record *entities.Transaction) error
	RecordDeposit(ctx context.Context, record *entities.Transaction) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.InvestmentStatus) error
	RejectInvestment(ctx context.Context, id, userID uuid.UUID, refund decimal.Decimal) error
	CompleteInvestment(ctx context.Context, id, userID uuid.UUID, principal, interest decimal.Decimal) error
}

// UserRepository interface for user persistence
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
}

// PlanService interface for plan resolution
type PlanService interface {
	Get(ctx context.Context, id uuid.UUID) (*entities.Plan, error)
}

// NotificationService interface for lifecycle notifications
type NotificationService interface {
	SendInvestmentApproved(ctx context.Context, email, name string, amount decimal.Decimal, date time.Time, planName string) error
	SendInvestmentRejected(ctx context.Context, email, name string, amount decimal.Decimal, date time.Time, planName string) error
	SendInvestmentCompleted(ctx context.Context, email, name string, amount decimal.Decimal, date time.Time, planName string) error
	SendAdminAlert(ctx context.Context, email string, amount decimal.Decimal, date time.Time, kind string) error
}

// Service drives the investment lifecycle: creation, status
// transitions with their balance effects, progress projection, and the
// completion sweep.
type Service struct {
	repo       InvestmentRepository
	users      UserRepository
	plans      PlanService
	notifier   NotificationService
	adminEmail string
	logger     *logger.Logger
	sweeping   atomic.Bool
}

// NewService creates a new investment service
func NewService(repo InvestmentRepository, users UserRepository, planService PlanService, notifier NotificationService, adminEmail string, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		plans:      planService,
		notifier:   notifier,
		adminEmail: adminEmail,
		logger:     log,
	}
}

// Invest creates a new investment. The invested amount is debited from
// the user's deposit balance and the investment starts out active,
// accruing from now until the end date derived from the plan duration.
func (s *Service) Invest(ctx context.Context, req *entities.InvestRequest) (*entities.InvestResponse, error) {
	plan, err := s.plans.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, errors.NotFoundError("plan")
	}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, errors.ValidationError("amount", "amount must be positive")
	}
	if req.Amount.LessThan(plan.MinimumAmount) {
		return nil, errors.ValidationError("amount",
			fmt.Sprintf("amount is below the plan minimum of %s", plan.MinimumAmount.String()))
	}

	now := time.Now()
	endDate, err := duration.EndDate(now, plan.Duration)
	if err != nil {
		return nil, errors.InternalError("plan has an invalid duration", err)
	}

	totalInterest := req.Amount.Mul(plan.ROI).Div(decimal.NewFromInt(100)).Round(2)
	if req.Interest != nil {
		if req.Interest.IsNegative() {
			return nil, errors.ValidationError("interest", "interest override cannot be negative")
		}
		totalInterest = *req.Interest
	}

	planID := plan.ID
	record := &entities.Transaction{
		ID:              uuid.New(),
		UserID:          user.ID,
		UserEmail:       user.Email,
		UserName:        user.Name,
		Type:            entities.TransactionTypeInvestment,
		Amount:          req.Amount,
		Status:          entities.InvestmentStatusActive,
		PlanID:          &planID,
		PlanName:        plan.Name,
		PlanDuration:    plan.Duration,
		TotalInterest:   totalInterest,
		CurrentInterest: decimal.Zero,
		StartDate:       &now,
		EndDate:         &endDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateInvestment(ctx, record); err != nil {
		return nil, err
	}

	metrics.InvestmentsCreatedTotal.Inc()

	if err := s.notifier.SendInvestmentApproved(ctx, user.Email, user.Name, record.Amount, now, plan.Name); err != nil {
		s.logger.Warn("investment approved notification failed",
			"transaction_id", record.ID.String(), "error", err)
	}
	if s.adminEmail != "" {
		if err := s.notifier.SendAdminAlert(ctx, s.adminEmail, record.Amount, now, "new investment"); err != nil {
			s.logger.Warn("admin alert failed",
				"transaction_id", record.ID.String(), "error", err)
		}
	}

	s.logger.Info("investment created",
		"transaction_id", record.ID.String(),
		"user_id", user.ID.String(),
		"plan_name", plan.Name,
		"amount", record.Amount.String(),
		"total_interest", totalInterest.String())

	return &entities.InvestResponse{
		RemainingBalance: user.Deposit.Sub(req.Amount),
		Investment: entities.InvestmentSummary{
			ID:            record.ID,
			Status:        record.Status,
			StartDate:     now,
			EndDate:       endDate,
			TimeRemaining: duration.RemainingMillis(endDate, now),
		},
	}, nil
}

// UpdateStatus applies a lifecycle transition to an investment record.
// Rejection refunds the currently stored amount and zeroes it;
// completion pays out principal and interest; the remaining statuses
// persist without touching balances.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus entities.InvestmentStatus) (*entities.Transaction, error) {
	if !newStatus.IsValid() {
		return nil, errors.ValidationError("status",
			fmt.Sprintf("unsupported status %q", string(newStatus)))
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.IsInvestment() {
		return nil, errors.NotFoundError("investment")
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	switch newStatus {
	case entities.InvestmentStatusRejected:
		// The refund and the rejection notification both use the amount
		// as stored before it is zeroed.
		refund := record.Amount
		if err := s.repo.RejectInvestment(ctx, id, record.UserID, refund); err != nil {
			return nil, err
		}
		if err := s.notifier.SendInvestmentRejected(ctx, user.Email, user.Name, refund, now, record.PlanName); err != nil {
			s.logger.Warn("investment rejected notification failed",
				"transaction_id", id.String(), "error", err)
		}

	case entities.InvestmentStatusCompleted:
		if err := s.repo.CompleteInvestment(ctx, id, record.UserID, record.Amount, record.TotalInterest); err != nil {
			return nil, err
		}
		if err := s.notifier.SendInvestmentCompleted(ctx, user.Email, user.Name, record.Amount, now, record.PlanName); err != nil {
			s.logger.Warn("investment completed notification failed",
				"transaction_id", id.String(), "error", err)
		}

	case entities.InvestmentStatusApproved:
		if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
			return nil, err
		}
		if err := s.notifier.SendInvestmentApproved(ctx, user.Email, user.Name, record.Amount, now, record.PlanName); err != nil {
			s.logger.Warn("investment approved notification failed",
				"transaction_id", id.String(), "error", err)
		}

	default:
		if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
			return nil, err
		}
	}

	metrics.InvestmentTransitionsTotal.WithLabelValues(string(newStatus)).Inc()

	s.logger.Info("investment status updated",
		"transaction_id", id.String(),
		"from", string(record.Status),
		"to", string(newStatus))

	return s.repo.GetByID(ctx, id)
}

// GetProgress projects an investment's accrual state at the current
// moment without mutating the record
func (s *Service) GetProgress(ctx context.Context, id uuid.UUID) (*entities.InvestmentProgress, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.IsInvestment() {
		return nil, errors.NotFoundError("investment")
	}
	if record.StartDate == nil || record.EndDate == nil {
		return nil, errors.InternalError("investment record is missing its term dates", nil)
	}

	progress := buildProgress(record, time.Now())
	return &progress, nil
}

// ListActive returns all active investments with their live progress
// and a summary of how many are ready to complete
func (s *Service) ListActive(ctx context.Context) (*entities.ActiveInvestmentsResponse, error) {
	records, err := s.repo.ListActiveInvestments(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	investments := make([]entities.InvestmentProgress, 0, len(records))
	ready := 0

	for _, record := range records {
		if record.StartDate == nil || record.EndDate == nil {
			s.logger.Warn("active investment missing term dates, skipping",
				"transaction_id", record.ID.String())
			continue
		}
		progress := buildProgress(record, now)
		if progress.IsCompleted {
			ready++
		}
		investments = append(investments, progress)
	}

	return &entities.ActiveInvestmentsResponse{
		Investments: investments,
		Summary: entities.ActiveInvestmentsSummary{
			Total:           len(investments),
			ReadyToComplete: ready,
		},
	}, nil
}

// CreateUser registers a new user with zero balances
func (s *Service) CreateUser(ctx context.Context, req *entities.CreateUserRequest) (*entities.User, error) {
	now := time.Now()
	user := &entities.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Name:      req.Name,
		Deposit:   decimal.Zero,
		Interest:  decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID.String(), "email", user.Email)
	return user, nil
}

// Deposit credits the user's deposit balance and records a deposit
// transaction
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*entities.BalanceResponse, error) {
	if !amount.IsPositive() {
		return nil, errors.ValidationError("amount", "amount must be positive")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &entities.Transaction{
		ID:              uuid.New(),
		UserID:          user.ID,
		UserEmail:       user.Email,
		UserName:        user.Name,
		Type:            entities.TransactionTypeDeposit,
		Amount:          amount,
		Status:          entities.InvestmentStatusCompleted,
		TotalInterest:   decimal.Zero,
		CurrentInterest: decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.RecordDeposit(ctx, record); err != nil {
		return nil, err
	}

	return &entities.BalanceResponse{
		UserID:   user.ID,
		Deposit:  user.Deposit.Add(amount),
		Interest: user.Interest,
	}, nil
}

// GetBalance reads a user's current balances
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*entities.BalanceResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &entities.BalanceResponse{
		UserID:   user.ID,
		Deposit:  user.Deposit,
		Interest: user.Interest,
	}, nil
}

// buildProgress derives the display projection for an investment
// record. The projection is pure: the same record and clock always
// produce the same view, and nothing is persisted.
func buildProgress(record *entities.Transaction, now time.Time) entities.InvestmentProgress {
	start := *record.StartDate
	end := *record.EndDate

	status := record.Status
	isCompleted := duration.IsDue(end, now)
	if isCompleted && status == entities.InvestmentStatusActive {
		status = entities.InvestmentStatusReadyToComplete
	}

	return entities.InvestmentProgress{
		ID:              record.ID,
		PlanName:        record.PlanName,
		Status:          status,
		Amount:          record.Amount,
		TotalInterest:   record.TotalInterest,
		CurrentInterest: duration.ProgressiveInterest(record.TotalInterest, start, end, now),
		StartDate:       start,
		EndDate:         end,
		TimeRemaining:   duration.FormatRemaining(end, now),
		IsCompleted:     isCompleted,
	}
}
