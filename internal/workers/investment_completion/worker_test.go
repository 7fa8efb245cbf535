package investment_completion

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vest-service/vest_service/internal/domain/services/investment"
	"github.com/vest-service/vest_service/internal/infrastructure/config"
)

// stubSweeper counts sweep invocations and signals each one. When block
// is set, a sweep holds until release is closed.
type stubSweeper struct {
	mu      sync.Mutex
	calls   int
	swept   chan struct{}
	block   bool
	release chan struct{}
}

func newStubSweeper() *stubSweeper {
	return &stubSweeper{
		swept:   make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (s *stubSweeper) CompleteDueInvestments(ctx context.Context) (*investment.SweepReport, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	s.mu.Unlock()

	s.swept <- struct{}{}
	if block {
		<-s.release
	}
	return &investment.SweepReport{Scanned: 3, Due: 1, Completed: 1, Duration: "1ms"}, nil
}

func (s *stubSweeper) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:           true,
		CronSpec:          "@every 1h",
		InitialSweepDelay: 0,
		SweepTimeout:      5,
	}
}

func TestWorker_RunsInitialSweepOnStart(t *testing.T) {
	sweeper := newStubSweeper()
	w := NewWorker(sweeper, testSchedulerConfig(), zap.NewNop())

	require.NoError(t, w.Start())
	defer w.Stop()

	select {
	case <-sweeper.swept:
	case <-time.After(2 * time.Second):
		t.Fatal("initial sweep did not run")
	}

	assert.GreaterOrEqual(t, sweeper.callCount(), 1)
}

func TestWorker_RejectsInvalidCronSpec(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.CronSpec = "not a schedule"

	w := NewWorker(newStubSweeper(), cfg, zap.NewNop())

	err := w.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid completion sweep schedule")
}

func TestWorker_StopCancelsPendingInitialSweep(t *testing.T) {
	sweeper := newStubSweeper()
	cfg := testSchedulerConfig()
	cfg.InitialSweepDelay = 60

	w := NewWorker(sweeper, cfg, zap.NewNop())
	require.NoError(t, w.Start())

	w.Stop()

	assert.Equal(t, 0, sweeper.callCount())
}

func TestWorker_StopIsIdempotent(t *testing.T) {
	sweeper := newStubSweeper()
	w := NewWorker(sweeper, testSchedulerConfig(), zap.NewNop())

	require.NoError(t, w.Start())

	<-sweeper.swept
	w.Stop()
	w.Stop()
}

func TestWorker_ShutdownTimesOutOnStuckSweep(t *testing.T) {
	sweeper := newStubSweeper()
	sweeper.block = true
	defer close(sweeper.release)

	cfg := testSchedulerConfig()
	w := NewWorker(sweeper, cfg, zap.NewNop())
	require.NoError(t, w.Start())

	// Wait until the sweep is in flight and holding
	<-sweeper.swept

	err := w.Shutdown(100 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not stop")
}

func TestWorker_ShutdownCompletesWhenIdle(t *testing.T) {
	sweeper := newStubSweeper()
	w := NewWorker(sweeper, testSchedulerConfig(), zap.NewNop())

	require.NoError(t, w.Start())
	<-sweeper.swept

	assert.NoError(t, w.Shutdown(2*time.Second))
}
