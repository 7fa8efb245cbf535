package plans

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/domain/errors"
	"github.com/vest-service/vest_service/internal/domain/services/duration"
	"github.com/vest-service/vest_service/internal/infrastructure/cache"
	"github.com/vest-service/vest_service/pkg/logger"
	"github.com/vest-service/vest_service/pkg/metrics"
)

// PlanRepository interface for plan persistence
type PlanRepository interface {
	Create(ctx context.Context, plan *entities.Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error)
	ListActive(ctx context.Context) ([]*entities.Plan, error)
	Update(ctx context.Context, plan *entities.Plan) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// PlanCache interface for caching operations
type PlanCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service handles investment plan management
type Service struct {
	repo     PlanRepository
	cache    PlanCache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewService creates a new plans service. The cache is optional; when
// nil every read goes straight to the repository.
func NewService(repo PlanRepository, planCache PlanCache, cacheTTL time.Duration, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    planCache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Create validates and persists a new plan. New plans start active and
// immediately appear in the public listing.
func (s *Service) Create(ctx context.Context, req *entities.CreatePlanRequest) (*entities.Plan, error) {
	plan := req.ToPlan()

	if err := s.validatePlan(plan); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.ActivePlansKey)

	s.logger.Info("plan created", "plan_id", plan.ID.String(), "name", plan.Name)
	return plan, nil
}

// List returns all active plans ordered by minimum amount ascending
func (s *Service) List(ctx context.Context) ([]*entities.Plan, error) {
	// Try cache first
	if s.cache != nil {
		var cached []*entities.Plan
		if err := s.cache.Get(ctx, cache.ActivePlansKey, &cached); err == nil {
			metrics.CacheOperationsTotal.WithLabelValues("get", "hit").Inc()
			s.logger.Debug("active plans retrieved from cache", "count", len(cached))
			return cached, nil
		} else if err == cache.ErrCacheMiss {
			metrics.CacheOperationsTotal.WithLabelValues("get", "miss").Inc()
		} else {
			metrics.CacheOperationsTotal.WithLabelValues("get", "error").Inc()
			s.logger.Debug("plan cache read failed", "error", err)
		}
	}

	plans, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.ActivePlansKey, plans, s.cacheTTL); err != nil {
			metrics.CacheOperationsTotal.WithLabelValues("set", "error").Inc()
			s.logger.Debug("plan cache write failed", "error", err)
		} else {
			metrics.CacheOperationsTotal.WithLabelValues("set", "ok").Inc()
		}
	}

	return plans, nil
}

// Get fetches a single plan by id. Inactive plans remain fetchable so
// admin tooling and existing investments can still resolve them.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	if s.cache != nil {
		var cached entities.Plan
		if err := s.cache.Get(ctx, cache.PlanKey(id.String()), &cached); err == nil {
			metrics.CacheOperationsTotal.WithLabelValues("get", "hit").Inc()
			return &cached, nil
		} else if err == cache.ErrCacheMiss {
			metrics.CacheOperationsTotal.WithLabelValues("get", "miss").Inc()
		} else {
			metrics.CacheOperationsTotal.WithLabelValues("get", "error").Inc()
			s.logger.Debug("plan cache read failed", "error", err)
		}
	}

	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.PlanKey(id.String()), plan, s.cacheTTL); err != nil {
			metrics.CacheOperationsTotal.WithLabelValues("set", "error").Inc()
			s.logger.Debug("plan cache write failed", "error", err)
		} else {
			metrics.CacheOperationsTotal.WithLabelValues("set", "ok").Inc()
		}
	}

	return plan, nil
}

// Update applies changes to an existing plan
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *entities.UpdatePlanRequest) (*entities.Plan, error) {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	plan.Name = strings.TrimSpace(req.Name)
	plan.Description = req.Description
	plan.ROI = req.ROI
	plan.MinimumAmount = req.MinimumAmount
	plan.Duration = strings.TrimSpace(req.Duration)
	plan.Features = req.Features
	if req.Active != nil {
		plan.Active = *req.Active
	}
	plan.UpdatedAt = time.Now()

	if err := s.validatePlan(plan); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.ActivePlansKey, cache.PlanKey(id.String()))

	s.logger.Info("plan updated", "plan_id", plan.ID.String(), "name", plan.Name)
	return plan, nil
}

// Delete retires a plan. The row is kept and only the active flag is
// cleared, so investment records referencing the plan stay intact.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, cache.ActivePlansKey, cache.PlanKey(id.String()))

	s.logger.Info("plan deactivated", "plan_id", id.String())
	return nil
}

// validatePlan checks field invariants and that the duration both
// parses and spans a positive interval, so every investment created
// from the plan gets an end date strictly after its start date.
func (s *Service) validatePlan(plan *entities.Plan) error {
	if err := plan.Validate(); err != nil {
		return errors.ValidationError("plan", err.Error())
	}

	span, err := duration.Parse(plan.Duration)
	if err != nil {
		return err
	}
	if span <= 0 {
		return errors.ValidationError("duration", "duration must span a positive interval")
	}

	return nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues("del", "error").Inc()
		s.logger.Debug("plan cache invalidation failed", "error", err)
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues("del", "ok").Inc()
}
