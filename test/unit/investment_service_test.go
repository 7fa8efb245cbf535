package unit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vest-service/vest_service/internal/domain/entities"
	"github.com/vest-service/vest_service/internal/domain/errors"
	"github.com/vest-service/vest_service/internal/domain/services/investment"
	"github.com/vest-service/vest_service/pkg/logger"
)

// MockUserStore implements investment.UserRepository for testing
type MockUserStore struct {
	users map[uuid.UUID]*entities.User
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users: make(map[uuid.UUID]*entities.User),
	}
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, errors.NotFoundError("user")
}

func (m *MockUserStore) Create(ctx context.Context, user *entities.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return errors.AlreadyExistsError("user")
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserStore) AddUser(user *entities.User) {
	m.users[user.ID] = user
}

// MockInvestmentRepository implements investment.InvestmentRepository.
// It mirrors the real repository's balance coupling: lifecycle
// operations mutate the user store the way the SQL transactions do.
type MockInvestmentRepository struct {
	records map[uuid.UUID]*entities.Transaction
	store   *MockUserStore
}

func NewMockInvestmentRepository(store *MockUserStore) *MockInvestmentRepository {
	return &MockInvestmentRepository{
		records: make(map[uuid.UUID]*entities.Transaction),
		store:   store,
	}
}

func (m *MockInvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	if record, ok := m.records[id]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, errors.NotFoundError("investment")
}

func (m *MockInvestmentRepository) ListActiveInvestments(ctx context.Context) ([]*entities.Transaction, error) {
	active := make([]*entities.Transaction, 0)
	for _, record := range m.records {
		if record.Type == entities.TransactionTypeInvestment &&
			record.Status == entities.InvestmentStatusActive && record.EndDate != nil {
			copied := *record
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (m *MockInvestmentRepository) CreateInvestment(ctx context.Context, record *entities.Transaction) error {
	user, ok := m.store.users[record.UserID]
	if !ok {
		return errors.NotFoundError("user")
	}
	if user.Deposit.LessThan(record.Amount) {
		return errors.InsufficientFundsError("insufficient deposit balance")
	}
	user.Deposit = user.Deposit.Sub(record.Amount)
	copied := *record
	m.records[record.ID] = &copied
	return nil
}

func (m *MockInvestmentRepository) RecordDeposit(ctx context.Context, record *entities.Transaction) error {
	user, ok := m.store.users[record.UserID]
	if !ok {
		return errors.NotFoundError("user")
	}
	user.Deposit = user.Deposit.Add(record.Amount)
	copied := *record
	m.records[record.ID] = &copied
	return nil
}

func (m *MockInvestmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.InvestmentStatus) error {
	record, ok := m.records[id]
	if !ok {
		return errors.NotFoundError("investment")
	}
	record.Status = status
	record.UpdatedAt = time.Now()
	return nil
}

func (m *MockInvestmentRepository) RejectInvestment(ctx context.Context, id, userID uuid.UUID, refund decimal.Decimal) error {
	record, ok := m.records[id]
	if !ok {
		return errors.NotFoundError("investment")
	}
	switch record.Status {
	case entities.InvestmentStatusPending, entities.InvestmentStatusActive, entities.InvestmentStatusApproved:
	default:
		return errors.ConflictError("investment", "already processed")
	}
	user, ok := m.store.users[userID]
	if !ok {
		return errors.NotFoundError("user")
	}
	user.Deposit = user.Deposit.Add(refund)
	record.Status = entities.InvestmentStatusRejected
	record.Amount = decimal.Zero
	record.UpdatedAt = time.Now()
	return nil
}

func (m *MockInvestmentRepository) CompleteInvestment(ctx context.Context, id, userID uuid.UUID, principal, interest decimal.Decimal) error {
	record, ok := m.records[id]
	if !ok {
		return errors.NotFoundError("investment")
	}
	switch record.Status {
	case entities.InvestmentStatusActive, entities.InvestmentStatusApproved:
	default:
		return errors.ConflictError("investment", "already processed")
	}
	user, ok := m.store.users[userID]
	if !ok {
		return errors.NotFoundError("user")
	}
	user.Deposit = user.Deposit.Add(principal)
	user.Interest = user.Interest.Add(interest)
	record.Status = entities.InvestmentStatusCompleted
	record.CurrentInterest = interest
	record.UpdatedAt = time.Now()
	return nil
}

// MockPlanService implements investment.PlanService
type MockPlanService struct {
	plans map[uuid.UUID]*entities.Plan
}

func NewMockPlanService() *MockPlanService {
	return &MockPlanService{
		plans: make(map[uuid.UUID]*entities.Plan),
	}
}

func (m *MockPlanService) Get(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	if plan, ok := m.plans[id]; ok {
		copied := *plan
		return &copied, nil
	}
	return nil, errors.NotFoundError("plan")
}

func (m *MockPlanService) AddPlan(plan *entities.Plan) {
	m.plans[plan.ID] = plan
}

// MockNotifier implements investment.NotificationService and counts
// every call. The completedGate, when set, blocks completion sends
// until released so tests can hold a sweep mid-flight.
type MockNotifier struct {
	mu            sync.Mutex
	approved      int
	rejected      int
	completed     int
	alerts        int
	lastRejected  decimal.Decimal
	lastCompleted decimal.Decimal
	completedGate chan struct{}
	enteredGate   chan struct{}
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) SendInvestmentApproved(ctx context.Context, email, name string, amount decimal.Decimal, date time.Time, planName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approved++
	return nil
}

func (m *MockNotifier) SendInvestmentRejected(ctx context.Context, email, name string, amount decimal.Decimal, date time.Time, planName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected++
	m.lastRejected = amount
	return nil
}

func (m *MockNotifier) SendInvestmentCompleted(ctx context.Context, email, name string, amount decimal.Decimal, date time.Time, planName string) error {
	m.mu.Lock()
	gate := m.completedGate
	entered := m.enteredGate
	m.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed++
	m.lastCompleted = amount
	return nil
}

func (m *MockNotifier) SendAdminAlert(ctx context.Context, email string, amount decimal.Decimal, date time.Time, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts++
	return nil
}

type lifecycleFixture struct {
	svc      *investment.Service
	users    *MockUserStore
	repo     *MockInvestmentRepository
	plans    *MockPlanService
	notifier *MockNotifier
	plan     *entities.Plan
	user     *entities.User
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	users := NewMockUserStore()
	repo := NewMockInvestmentRepository(users)
	planSvc := NewMockPlanService()
	notifier := NewMockNotifier()
	zapLog, _ := zap.NewDevelopment()
	log := logger.NewLogger(zapLog)

	plan := &entities.Plan{
		ID:            uuid.New(),
		Name:          "Gold Plan",
		ROI:           decimal.NewFromInt(10),
		MinimumAmount: decimal.NewFromInt(100),
		Duration:      "3 months",
		Features:      []string{"daily compounding"},
		Active:        true,
	}
	planSvc.AddPlan(plan)

	user := &entities.User{
		ID:      uuid.New(),
		Email:   "investor@example.com",
		Name:    "Ada Investor",
		Deposit: decimal.NewFromInt(1000),
	}
	users.AddUser(user)

	svc := investment.NewService(repo, users, planSvc, notifier, "ops@example.com", log)

	return &lifecycleFixture{
		svc:      svc,
		users:    users,
		repo:     repo,
		plans:    planSvc,
		notifier: notifier,
		plan:     plan,
		user:     user,
	}
}

func (f *lifecycleFixture) seedInvestment(amount, totalInterest decimal.Decimal, start, end time.Time) *entities.Transaction {
	planID := f.plan.ID
	record := &entities.Transaction{
		ID:              uuid.New(),
		UserID:          f.user.ID,
		UserEmail:       f.user.Email,
		UserName:        f.user.Name,
		Type:            entities.TransactionTypeInvestment,
		Amount:          amount,
		Status:          entities.InvestmentStatusActive,
		PlanID:          &planID,
		PlanName:        f.plan.Name,
		PlanDuration:    f.plan.Duration,
		TotalInterest:   totalInterest,
		CurrentInterest: decimal.Zero,
		StartDate:       &start,
		EndDate:         &end,
	}
	f.repo.records[record.ID] = record
	return record
}

func TestInvestmentService_Invest_Success(t *testing.T) {
	f := newLifecycleFixture(t)

	resp, err := f.svc.Invest(context.Background(), &entities.InvestRequest{
		PlanID: f.plan.ID,
		UserID: f.user.ID,
		Amount: decimal.NewFromInt(200),
	})

	require.NoError(t, err)
	assert.True(t, resp.RemainingBalance.Equal(decimal.NewFromInt(800)),
		"remaining balance should be 800, got %s", resp.RemainingBalance)
	assert.Equal(t, entities.InvestmentStatusActive, resp.Investment.Status)
	assert.Greater(t, resp.Investment.TimeRemaining, int64(0))
	assert.True(t, resp.Investment.EndDate.After(resp.Investment.StartDate))

	stored, err := f.repo.GetByID(context.Background(), resp.Investment.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalInterest.Equal(decimal.NewFromInt(20)),
		"total interest should be 20, got %s", stored.TotalInterest)
	assert.True(t, stored.CurrentInterest.IsZero())
	assert.Equal(t, f.user.Email, stored.UserEmail)
	assert.Equal(t, "Gold Plan", stored.PlanName)

	assert.True(t, f.users.users[f.user.ID].Deposit.Equal(decimal.NewFromInt(800)))
	assert.Equal(t, 1, f.notifier.approved)
	assert.Equal(t, 1, f.notifier.alerts)
}

func TestInvestmentService_Invest_BelowPlanMinimum(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.Invest(context.Background(), &entities.InvestRequest{
		PlanID: f.plan.ID,
		UserID: f.user.ID,
		Amount: decimal.NewFromInt(50),
	})

	assert.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
	assert.True(t, f.users.users[f.user.ID].Deposit.Equal(decimal.NewFromInt(1000)),
		"balance must be untouched on validation failure")
	assert.Empty(t, f.repo.records)
}

func TestInvestmentService_Invest_InsufficientFunds(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.Invest(context.Background(), &entities.InvestRequest{
		PlanID: f.plan.ID,
		UserID: f.user.ID,
		Amount: decimal.NewFromInt(5000),
	})

	assert.Error(t, err)
	assert.True(t, errors.IsInsufficientFunds(err))
	assert.True(t, f.users.users[f.user.ID].Deposit.Equal(decimal.NewFromInt(1000)))
	assert.Empty(t, f.repo.records)
}

func TestInvestmentService_Invest_MissingPlan(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.Invest(context.Background(), &entities.InvestRequest{
		PlanID: uuid.New(),
		UserID: f.user.ID,
		Amount: decimal.NewFromInt(200),
	})

	assert.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestInvestmentService_Invest_InactivePlan(t *testing.T) {
	f := newLifecycleFixture(t)
	f.plan.Active = false

	_, err := f.svc.Invest(context.Background(), &entities.InvestRequest{
		PlanID: f.plan.ID,
		UserID: f.user.ID,
		Amount: decimal.NewFromInt(200),
	})

	assert.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestInvestmentService_Invest_MissingUser(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.Invest(context.Background(), &entities.InvestRequest{
		PlanID: f.plan.ID,
		UserID: uuid.New(),
		Amount: decimal.NewFromInt(200),
	})

	assert.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestInvestmentService_Invest_InterestOverride(t *testing.T) {
	f := newLifecycleFixture(t)

	override := decimal.NewFromInt(5)
	resp, err := f.svc.Invest(context.Background(), &entities.InvestRequest{
		PlanID:   f.plan.ID,
		UserID:   f.user.ID,
		Amount:   decimal.NewFromInt(200),
		Interest: &override,
	})

	require.NoError(t, err)
	stored, err := f.repo.GetByID(context.Background(), resp.Investment.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalInterest.Equal(override),
		"override should replace the derived interest, got %s", stored.TotalInterest)
}

func TestInvestmentService_Reject_RefundsThenZeroes(t *testing.T) {
	f := newLifecycleFixture(t)

	resp, err := f.svc.Invest(context.Background(), &entities.InvestRequest{
		PlanID: f.plan.ID,
		UserID: f.user.ID,
		Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	require.True(t, f.users.users[f.user.ID].Deposit.Equal(decimal.NewFromInt(800)))

	updated, err := f.svc.UpdateStatus(context.Background(), resp.Investment.ID, entities.InvestmentStatusRejected)

	require.NoError(t, err)
	assert.Equal(t, entities.InvestmentStatusRejected, updated.Status)
	assert.True(t, updated.Amount.IsZero(), "amount must be zeroed after rejection")
	assert.True(t, f.users.users[f.user.ID].Deposit.Equal(decimal.NewFromInt(1000)),
		"rejection must refund the invested amount")

	// The rejection notification carries the pre-zero amount.
	assert.Equal(t, 1, f.notifier.rejected)
	assert.True(t, f.notifier.lastRejected.Equal(decimal.NewFromInt(200)))

	_, err = f.svc.UpdateStatus(context.Background(), resp.Investment.ID, entities.InvestmentStatusRejected)
	assert.True(t, errors.IsConflict(err), "second rejection must not refund twice")
	assert.True(t, f.users.users[f.user.ID].Deposit.Equal(decimal.NewFromInt(1000)))
}

func TestInvestmentService_Complete_PaysOutOnce(t *testing.T) {
	f := newLifecycleFixture(t)

	resp, err := f.svc.Invest(context.Background(), &entities.InvestRequest{
		PlanID: f.plan.ID,
		UserID: f.user.ID,
		Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), resp.Investment.ID, entities.InvestmentStatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, entities.InvestmentStatusCompleted, updated.Status)
	assert.True(t, updated.CurrentInterest.Equal(decimal.NewFromInt(20)))

	user := f.users.users[f.user.ID]
	assert.True(t, user.Deposit.Equal(decimal.NewFromInt(1000)),
		"principal must return to the deposit balance")
	assert.True(t, user.Interest.Equal(decimal.NewFromInt(20)),
		"interest must be credited to the interest balance")

	_, err = f.svc.UpdateStatus(context.Background(), resp.Investment.ID, entities.InvestmentStatusCompleted)
	assert.True(t, errors.IsConflict(err), "second completion must not pay out twice")
	assert.True(t, user.Deposit.Equal(decimal.NewFromInt(1000)))
	assert.True(t, user.Interest.Equal(decimal.NewFromInt(20)))
}

func TestInvestmentService_Approve_NoBalanceChange(t *testing.T) {
	f := newLifecycleFixture(t)

	resp, err := f.svc.Invest(context.Background(), &entities.InvestRequest{
		PlanID: f.plan.ID,
		UserID: f.user.ID,
		Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), resp.Investment.ID, entities.InvestmentStatusApproved)

	require.NoError(t, err)
	assert.Equal(t, entities.InvestmentStatusApproved, updated.Status)
	assert.True(t, f.users.users[f.user.ID].Deposit.Equal(decimal.NewFromInt(800)))
	assert.Equal(t, 2, f.notifier.approved, "creation and approval each notify")
}

func TestInvestmentService_UpdateStatus_InvalidStatus(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), entities.InvestmentStatusReadyToComplete)

	assert.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestInvestmentService_UpdateStatus_NotFound(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), entities.InvestmentStatusApproved)

	assert.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestInvestmentService_GetProgress_Halfway(t *testing.T) {
	f := newLifecycleFixture(t)

	now := time.Now()
	record := f.seedInvestment(decimal.NewFromInt(200), decimal.NewFromInt(20),
		now.Add(-48*time.Hour), now.Add(48*time.Hour))

	progress, err := f.svc.GetProgress(context.Background(), record.ID)

	require.NoError(t, err)
	assert.True(t, progress.CurrentInterest.Equal(decimal.NewFromInt(10)),
		"halfway through the term half the interest has accrued, got %s", progress.CurrentInterest)
	assert.Equal(t, entities.InvestmentStatusActive, progress.Status)
	assert.False(t, progress.IsCompleted)
	assert.Equal(t, "1 day 23 hours", progress.TimeRemaining)
}

func TestInvestmentService_GetProgress_DuePromotesStatus(t *testing.T) {
	f := newLifecycleFixture(t)

	now := time.Now()
	record := f.seedInvestment(decimal.NewFromInt(200), decimal.NewFromInt(20),
		now.Add(-96*time.Hour), now.Add(-time.Second))

	progress, err := f.svc.GetProgress(context.Background(), record.ID)

	require.NoError(t, err)
	assert.Equal(t, entities.InvestmentStatusReadyToComplete, progress.Status)
	assert.True(t, progress.IsCompleted)
	assert.True(t, progress.CurrentInterest.Equal(decimal.NewFromInt(20)),
		"past the end date the full interest has accrued")
	assert.Equal(t, "Investment period completed", progress.TimeRemaining)
}

func TestInvestmentService_GetProgress_NotFound(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.GetProgress(context.Background(), uuid.New())

	assert.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestInvestmentService_ListActive_Summary(t *testing.T) {
	f := newLifecycleFixture(t)

	now := time.Now()
	f.seedInvestment(decimal.NewFromInt(200), decimal.NewFromInt(20),
		now.Add(-96*time.Hour), now.Add(-time.Hour))
	f.seedInvestment(decimal.NewFromInt(300), decimal.NewFromInt(30),
		now.Add(-time.Hour), now.Add(96*time.Hour))

	resp, err := f.svc.ListActive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.ReadyToComplete)
	assert.Len(t, resp.Investments, 2)
}

func TestInvestmentService_Sweep_CompletesDueOnly(t *testing.T) {
	f := newLifecycleFixture(t)

	now := time.Now()
	due := f.seedInvestment(decimal.NewFromInt(200), decimal.NewFromInt(20),
		now.Add(-96*time.Hour), now.Add(-time.Hour))
	pending := f.seedInvestment(decimal.NewFromInt(300), decimal.NewFromInt(30),
		now.Add(-time.Hour), now.Add(96*time.Hour))

	report, err := f.svc.CompleteDueInvestments(context.Background())

	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Due)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 0, report.Failed)

	completed, err := f.repo.GetByID(context.Background(), due.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.InvestmentStatusCompleted, completed.Status)

	untouched, err := f.repo.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.InvestmentStatusActive, untouched.Status)

	user := f.users.users[f.user.ID]
	assert.True(t, user.Deposit.Equal(decimal.NewFromInt(1200)),
		"due principal must return to the deposit balance")
	assert.True(t, user.Interest.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 1, f.notifier.completed)
}

func TestInvestmentService_Sweep_SkipsWhileRunning(t *testing.T) {
	f := newLifecycleFixture(t)

	now := time.Now()
	f.seedInvestment(decimal.NewFromInt(200), decimal.NewFromInt(20),
		now.Add(-96*time.Hour), now.Add(-time.Hour))

	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	f.notifier.completedGate = gate
	f.notifier.enteredGate = entered

	type sweepResult struct {
		report *investment.SweepReport
		err    error
	}
	done := make(chan sweepResult, 1)
	go func() {
		report, err := f.svc.CompleteDueInvestments(context.Background())
		done <- sweepResult{report: report, err: err}
	}()

	// Wait until the first sweep is blocked inside the notifier, then
	// trigger a second sweep.
	<-entered
	second, err := f.svc.CompleteDueInvestments(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Skipped, "overlapping sweep must be skipped")

	close(gate)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, 1, first.report.Completed)
}

func TestInvestmentService_Sweep_ContinuesOnRecordFailure(t *testing.T) {
	f := newLifecycleFixture(t)

	now := time.Now()
	f.seedInvestment(decimal.NewFromInt(200), decimal.NewFromInt(20),
		now.Add(-96*time.Hour), now.Add(-time.Hour))

	// A due record whose user cannot be resolved.
	orphanID := uuid.New()
	start := now.Add(-96 * time.Hour)
	end := now.Add(-time.Hour)
	f.repo.records[orphanID] = &entities.Transaction{
		ID:            orphanID,
		UserID:        uuid.New(),
		Type:          entities.TransactionTypeInvestment,
		Amount:        decimal.NewFromInt(500),
		Status:        entities.InvestmentStatusActive,
		TotalInterest: decimal.NewFromInt(50),
		StartDate:     &start,
		EndDate:       &end,
	}

	report, err := f.svc.CompleteDueInvestments(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Due)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Failed)
}

func TestInvestmentService_Deposit_CreditsAndRecords(t *testing.T) {
	f := newLifecycleFixture(t)

	balance, err := f.svc.Deposit(context.Background(), f.user.ID, decimal.NewFromInt(500))

	require.NoError(t, err)
	assert.True(t, balance.Deposit.Equal(decimal.NewFromInt(1500)))
	assert.True(t, balance.Interest.IsZero())

	deposits := 0
	for _, record := range f.repo.records {
		if record.Type == entities.TransactionTypeDeposit {
			deposits++
			assert.True(t, record.Amount.Equal(decimal.NewFromInt(500)))
		}
	}
	assert.Equal(t, 1, deposits)
}

func TestInvestmentService_Deposit_RejectsNonPositive(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.svc.Deposit(context.Background(), f.user.ID, decimal.Zero)

	assert.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestInvestmentService_CreateUser_DuplicateEmail(t *testing.T) {
	f := newLifecycleFixture(t)

	created, err := f.svc.CreateUser(context.Background(), &entities.CreateUserRequest{
		Email: "new@example.com",
		Name:  "New Investor",
	})
	require.NoError(t, err)
	assert.True(t, created.Deposit.IsZero())

	_, err = f.svc.CreateUser(context.Background(), &entities.CreateUserRequest{
		Email: "investor@example.com",
		Name:  "Duplicate",
	})
	assert.True(t, errors.IsAlreadyExists(err))
}
