package investment

import (
	"context"
	"time"

	"github.com/vest-service/vest_service/internal/domain/errors"
	"github.com/vest-service/vest_service/internal/domain/services/duration"
	"github.com/vest-service/vest_service/pkg/metrics"
)

// SweepReport summarizes one completion sweep run
type SweepReport struct {
	Scanned   int       `json:"scanned"`
	Due       int       `json:"due"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
	Conflicts int       `json:"conflicts"`
	Skipped   bool      `json:"skipped"`
	StartedAt time.Time `json:"startedAt"`
	Duration  string    `json:"duration"`
}

// CompleteDueInvestments runs one completion sweep: every active
// investment whose end date has been reached is paid out and marked
// completed. At most one sweep runs at a time; a run that finds
// another in flight returns immediately with Skipped set. Failures on
// individual records are logged and counted but never abort the rest
// of the sweep.
func (s *Service) CompleteDueInvestments(ctx context.Context) (*SweepReport, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		metrics.CompletionSweepSkippedTotal.Inc()
		s.logger.Info("completion sweep already running, skipping")
		return &SweepReport{Skipped: true, StartedAt: time.Now()}, nil
	}
	defer s.sweeping.Store(false)

	started := time.Now()
	report := &SweepReport{StartedAt: started}

	records, err := s.repo.ListActiveInvestments(ctx)
	if err != nil {
		return nil, err
	}
	report.Scanned = len(records)

	for _, record := range records {
		if record.EndDate == nil || !duration.IsDue(*record.EndDate, started) {
			continue
		}
		report.Due++

		user, err := s.users.GetByID(ctx, record.UserID)
		if err != nil {
			metrics.CompletionSweepRecordsTotal.WithLabelValues("failed").Inc()
			report.Failed++
			s.logger.Error("completion sweep could not resolve user",
				"transaction_id", record.ID.String(),
				"user_id", record.UserID.String(),
				"error", err)
			continue
		}

		err = s.repo.CompleteInvestment(ctx, record.ID, record.UserID, record.Amount, record.TotalInterest)
		if err != nil {
			if errors.IsConflict(err) {
				// Another actor already completed this record.
				metrics.CompletionSweepRecordsTotal.WithLabelValues("conflict").Inc()
				report.Conflicts++
				s.logger.Info("investment already completed elsewhere",
					"transaction_id", record.ID.String())
				continue
			}
			metrics.CompletionSweepRecordsTotal.WithLabelValues("failed").Inc()
			report.Failed++
			s.logger.Error("completion sweep failed to complete investment",
				"transaction_id", record.ID.String(),
				"error", err)
			continue
		}

		metrics.CompletionSweepRecordsTotal.WithLabelValues("completed").Inc()
		metrics.InvestmentTransitionsTotal.WithLabelValues("completed").Inc()
		report.Completed++

		if err := s.notifier.SendInvestmentCompleted(ctx, user.Email, user.Name, record.Amount, started, record.PlanName); err != nil {
			s.logger.Warn("investment completed notification failed",
				"transaction_id", record.ID.String(), "error", err)
		}
	}

	elapsed := time.Since(started)
	report.Duration = elapsed.String()
	metrics.CompletionSweepDuration.Observe(elapsed.Seconds())
	metrics.CompletionSweepLastRun.SetToCurrentTime()

	s.logger.Info("completion sweep finished",
		"scanned", report.Scanned,
		"due", report.Due,
		"completed", report.Completed,
		"failed", report.Failed,
		"conflicts", report.Conflicts,
		"duration", elapsed.String())

	return report, nil
}
