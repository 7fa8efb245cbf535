package unit

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/domain/errors"
	"github.com/vest-service/vest_service/internal/domain/services/plans"
	"github.com/vest-service/vest_service/internal/infrastructure/cache"
	"github.com/vest-service/vest_service/pkg/logger"
)

// MockPlanRepository implements plans.PlanRepository for testing
type MockPlanRepository struct {
	plans map[uuid.UUID]*entities.Plan
}

func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{
		plans: make(map[uuid.UUID]*entities.Plan),
	}
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *entities.Plan) error {
	for _, existing := range m.plans {
		if strings.EqualFold(existing.Name, plan.Name) {
			return errors.AlreadyExistsError("plan")
		}
	}
	m.plans[plan.ID] = plan
	return nil
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	if plan, ok := m.plans[id]; ok {
		copied := *plan
		return &copied, nil
	}
	return nil, errors.NotFoundError("plan")
}

func (m *MockPlanRepository) ListActive(ctx context.Context) ([]*entities.Plan, error) {
	active := make([]*entities.Plan, 0)
	for _, plan := range m.plans {
		if plan.Active {
			copied := *plan
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (m *MockPlanRepository) Update(ctx context.Context, plan *entities.Plan) error {
	if _, ok := m.plans[plan.ID]; !ok {
		return errors.NotFoundError("plan")
	}
	for id, existing := range m.plans {
		if id != plan.ID && strings.EqualFold(existing.Name, plan.Name) {
			return errors.AlreadyExistsError("plan")
		}
	}
	copied := *plan
	m.plans[plan.ID] = &copied
	return nil
}

func (m *MockPlanRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	plan, ok := m.plans[id]
	if !ok {
		return errors.NotFoundError("plan")
	}
	plan.Active = false
	return nil
}

// MockPlanCache implements plans.PlanCache with JSON round-trips to
// mimic redis serialization
type MockPlanCache struct {
	store map[string][]byte
}

func NewMockPlanCache() *MockPlanCache {
	return &MockPlanCache{
		store: make(map[string][]byte),
	}
}

func (m *MockPlanCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := m.store[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *MockPlanCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = data
	return nil
}

func (m *MockPlanCache) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.store, key)
	}
	return nil
}

func validPlanRequest(name string) *entities.CreatePlanRequest {
	return &entities.CreatePlanRequest{
		Name:          name,
		Description:   "Steady growth plan",
		ROI:           decimal.NewFromInt(10),
		MinimumAmount: decimal.NewFromInt(100),
		Duration:      "3 months",
		Features:      []string{"daily compounding", "email support"},
	}
}

func TestPlansService_Create_Valid(t *testing.T) {
	repo := NewMockPlanRepository()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, nil, 5*time.Minute, log)

	plan, err := svc.Create(context.Background(), validPlanRequest("Gold Plan"))

	require.NoError(t, err)
	assert.Equal(t, "Gold Plan", plan.Name)
	assert.True(t, plan.Active)
	assert.True(t, plan.ROI.Equal(decimal.NewFromInt(10)))
	assert.NotEqual(t, uuid.Nil, plan.ID)
}

func TestPlansService_Create_DuplicateNameCaseInsensitive(t *testing.T) {
	repo := NewMockPlanRepository()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, nil, 5*time.Minute, log)

	_, err := svc.Create(context.Background(), validPlanRequest("Gold Plan"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validPlanRequest("gold plan"))

	assert.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestPlansService_Create_ROIOutOfRange(t *testing.T) {
	repo := NewMockPlanRepository()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, nil, 5*time.Minute, log)

	req := validPlanRequest("Gold Plan")
	req.ROI = decimal.NewFromInt(1001)

	_, err := svc.Create(context.Background(), req)

	assert.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestPlansService_Create_MalformedDuration(t *testing.T) {
	repo := NewMockPlanRepository()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, nil, 5*time.Minute, log)

	req := validPlanRequest("Gold Plan")
	req.Duration = "3 fortnights"

	_, err := svc.Create(context.Background(), req)

	assert.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestPlansService_Create_ZeroDurationRejected(t *testing.T) {
	repo := NewMockPlanRepository()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, nil, 5*time.Minute, log)

	req := validPlanRequest("Gold Plan")
	req.Duration = "0 days"

	_, err := svc.Create(context.Background(), req)

	assert.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestPlansService_List_ExcludesInactive(t *testing.T) {
	repo := NewMockPlanRepository()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, nil, 5*time.Minute, log)

	gold, err := svc.Create(context.Background(), validPlanRequest("Gold Plan"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validPlanRequest("Silver Plan"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), gold.ID))

	listed, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Silver Plan", listed[0].Name)
}

func TestPlansService_List_ServesFromCache(t *testing.T) {
	repo := NewMockPlanRepository()
	planCache := NewMockPlanCache()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, planCache, 5*time.Minute, log)

	_, err := svc.Create(context.Background(), validPlanRequest("Gold Plan"))
	require.NoError(t, err)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Write directly to the repository, bypassing the service and its
	// cache invalidation. The cached listing should still be served.
	stale := validPlanRequest("Silver Plan").ToPlan()
	repo.plans[stale.ID] = stale

	second, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestPlansService_Create_InvalidatesListCache(t *testing.T) {
	repo := NewMockPlanRepository()
	planCache := NewMockPlanCache()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, planCache, 5*time.Minute, log)

	_, err := svc.Create(context.Background(), validPlanRequest("Gold Plan"))
	require.NoError(t, err)

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, err = svc.Create(context.Background(), validPlanRequest("Silver Plan"))
	require.NoError(t, err)

	listed, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestPlansService_Update_NotFound(t *testing.T) {
	repo := NewMockPlanRepository()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, nil, 5*time.Minute, log)

	req := &entities.UpdatePlanRequest{
		Name:          "Gold Plan",
		ROI:           decimal.NewFromInt(12),
		MinimumAmount: decimal.NewFromInt(100),
		Duration:      "6 months",
		Features:      []string{"daily compounding"},
	}

	_, err := svc.Update(context.Background(), uuid.New(), req)

	assert.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestPlansService_Update_AppliesChanges(t *testing.T) {
	repo := NewMockPlanRepository()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, nil, 5*time.Minute, log)

	plan, err := svc.Create(context.Background(), validPlanRequest("Gold Plan"))
	require.NoError(t, err)

	inactive := false
	req := &entities.UpdatePlanRequest{
		Name:          "Gold Plan Plus",
		Description:   "Upgraded terms",
		ROI:           decimal.NewFromInt(15),
		MinimumAmount: decimal.NewFromInt(250),
		Duration:      "6 months",
		Features:      []string{"daily compounding"},
		Active:        &inactive,
	}

	updated, err := svc.Update(context.Background(), plan.ID, req)

	require.NoError(t, err)
	assert.Equal(t, "Gold Plan Plus", updated.Name)
	assert.True(t, updated.ROI.Equal(decimal.NewFromInt(15)))
	assert.False(t, updated.Active)

	fetched, err := svc.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gold Plan Plus", fetched.Name)
}

func TestPlansService_Delete_KeepsPlanFetchable(t *testing.T) {
	repo := NewMockPlanRepository()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	svc := plans.NewService(repo, nil, 5*time.Minute, log)

	plan, err := svc.Create(context.Background(), validPlanRequest("Gold Plan"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), plan.ID))

	fetched, err := svc.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Active)

	err = svc.Delete(context.Background(), uuid.New())
	assert.True(t, errors.IsNotFound(err))
}
