package wishlist

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic wishlist refresh cycles.
type Scheduler struct {
	cron    *cron.Cron
	tracker *Tracker
	log     *slog.Logger
}

// NewScheduler creates a Scheduler that refreshes the wishlist on a fixed
// interval.
func NewScheduler(
	tracker *Tracker,
	refreshInterval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:    c,
		tracker: tracker,
		log:     log,
	}

	if _, err := c.AddFunc(
		"@every "+refreshInterval.String(),
		s.runRefresh,
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled refresh cycles.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runRefresh() {
	ctx := context.Background()
	s.log.Info("scheduled refresh starting")
	if err := s.tracker.RefreshAll(ctx); err != nil {
		s.log.Error("scheduled refresh failed", "error", err)
	}
}
