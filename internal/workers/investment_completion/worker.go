package investment_completion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vest-service/vest_service/internal/domain/services/investment"
	"github.com/vest-service/vest_service/internal/infrastructure/config"
)

// Sweeper runs one completion sweep over due investments
type Sweeper interface {
	CompleteDueInvestments(ctx context.Context) (*investment.SweepReport, error)
}

// Worker schedules the investment completion sweep. The cron schedule
// drives steady-state runs; one extra sweep fires shortly after start
// to settle investments that matured while the service was down.
type Worker struct {
	sweeper  Sweeper
	cfg      config.SchedulerConfig
	cron     *cron.Cron
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewWorker(sweeper Sweeper, cfg config.SchedulerConfig, logger *zap.Logger) *Worker {
	return &Worker{
		sweeper: sweeper,
		cfg:     cfg,
		cron:    cron.New(),
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.cfg.CronSpec, w.runSweep)
	if err != nil {
		return fmt.Errorf("invalid completion sweep schedule %q: %w", w.cfg.CronSpec, err)
	}

	w.cron.Start()

	delay := time.Duration(w.cfg.InitialSweepDelay) * time.Second
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			w.runSweep()
		case <-w.stopCh:
		}
	}()

	w.logger.Info("Investment completion worker started",
		zap.String("cron_spec", w.cfg.CronSpec),
		zap.Duration("initial_sweep_delay", delay),
	)
	return nil
}

func (w *Worker) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(w.cfg.SweepTimeout)*time.Second)
	defer cancel()

	report, err := w.sweeper.CompleteDueInvestments(ctx)
	if err != nil {
		w.logger.Error("Completion sweep failed", zap.Error(err))
		return
	}

	if report.Skipped {
		w.logger.Info("Completion sweep skipped, previous run still in flight")
		return
	}

	w.logger.Info("Completion sweep finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("due", report.Due),
		zap.Int("completed", report.Completed),
		zap.Int("failed", report.Failed),
		zap.Int("conflicts", report.Conflicts),
		zap.String("duration", report.Duration),
	)
}

// Stop halts the schedule and waits for any in-flight sweep to finish
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})

	ctx := w.cron.Stop()
	<-ctx.Done()
	w.wg.Wait()

	w.logger.Info("Investment completion worker stopped")
}

// Shutdown implements the graceful shutdown contract
func (w *Worker) Shutdown(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("completion worker did not stop within %s", timeout)
	}
}
