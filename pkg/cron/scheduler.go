// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/moneyapp/moneyapp/internal/domain/ledger"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron        *cron.Cron
	store       *ledger.Store
	snapshotDir string
	logger      *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(store *ledger.Store, snapshotDir string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:        c,
		store:       store,
		snapshotDir: snapshotDir,
		logger:      logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Ledger snapshot: runs daily at 2:00 AM
	_, err := s.cron.AddFunc("0 2 * * *", s.snapshotLedger)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the ledger snapshot (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.snapshotLedger()
}

func (s *Scheduler) snapshotLedger() {
	dest, err := s.store.Snapshot(s.snapshotDir)
	if err != nil {
		s.logger.Error("ledger snapshot failed", slog.Any("error", err))
		return
	}
	s.logger.Info("ledger snapshot written", slog.String("path", dest))
}
