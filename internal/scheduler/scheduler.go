// Package scheduler runs the periodic maintenance of the board: applicant
// count reconciliation and closed-posting announcements.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"jobmate/board-service/internal/metrics"
)

// Maintainer is the subset of board.Service the scheduler drives.
type Maintainer interface {
	ReconcileApplicantCounts(ctx context.Context) (int, error)
	AnnounceClosed(ctx context.Context, from, to time.Time) (int, error)
}

// Scheduler wraps robfig/cron and owns the maintenance loop.
type Scheduler struct {
	cron *cron.Cron
	m    Maintainer
	spec string // cron spec, e.g. "@every 15m"
	now  func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

// New creates a Scheduler that fires every interval.
func New(m Maintainer, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		m:    m,
		spec: fmt.Sprintf("@every %s", interval),
		now:  time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Start registers the job and starts the cron. One pass runs immediately so
// counts are fixed without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	log.Info().Str("spec", s.spec).Msg("scheduler started")

	go s.RunOnce(ctx)
	return nil
}

// Stop halts the cron and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunOnce performs one maintenance pass. Closed postings are announced for
// the window since the previous pass; the first pass only records its time.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	changed, err := s.m.ReconcileApplicantCounts(ctx)
	if err != nil {
		metrics.ReconcileRuns.WithLabelValues("reconcile", "error").Inc()
		log.Error().Err(err).Msg("reconcile applicant counts failed")
	} else {
		metrics.ReconcileRuns.WithLabelValues("reconcile", "ok").Inc()
		log.Debug().Int("changed", changed).Msg("applicant counts reconciled")
	}

	if s.lastRun.IsZero() {
		s.lastRun = now
		return
	}

	announced, err := s.m.AnnounceClosed(ctx, s.lastRun, now)
	if err != nil {
		metrics.ReconcileRuns.WithLabelValues("announce", "error").Inc()
		log.Error().Err(err).Msg("announce closed postings failed")
		return
	}
	metrics.ReconcileRuns.WithLabelValues("announce", "ok").Inc()
	if announced > 0 {
		log.Info().Int("count", announced).Msg("closed postings announced")
	}
	s.lastRun = now
}
