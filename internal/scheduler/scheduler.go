package scheduler

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/config"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/service"
	"github.com/robfig/cron/v3"
)

// Scheduler drives the nightly reconciliation in-process. The service itself
// rejects concurrent runs, so an overlapping HTTP trigger is safe; the
// SkipIfStillRunning wrapper just avoids pointless attempts.
type Scheduler struct {
	cron              *cron.Cron
	reconcilerService service.ReconcilerService
	schedule          string
	logger            *logger.Logger
}

func New(cfg *config.Configuration, reconcilerService service.ReconcilerService, logger *logger.Logger) *Scheduler {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	return &Scheduler{
		cron:              c,
		reconcilerService: reconcilerService,
		schedule:          cfg.Cron.Schedule,
		logger:            logger,
	}
}

// Start registers the reconciliation job and starts the cron loop
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runReconciliation)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infow("scheduler started", "schedule", s.schedule)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runReconciliation() {
	now := time.Now().UTC()
	s.logger.Infow("scheduled reconciliation starting", "time", now.Format(time.RFC3339))

	resp, err := s.reconcilerService.Run(context.Background(), now)
	if err != nil {
		s.logger.Errorw("scheduled reconciliation failed", "error", err)
		return
	}

	s.logger.Infow("scheduled reconciliation finished",
		"total_suspended", resp.TotalSuspended,
		"expired_subscriptions", resp.ExpiredSubscriptions,
		"overdue_invoices", resp.OverdueInvoices,
		"errors", len(resp.Errors),
	)
}
