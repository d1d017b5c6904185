// Package scheduler pre-generates comments for every gazetteer location on a
// fixed interval, so UI requests serve from fresh history even before any
// interactive generation.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/ayane-k/soracast/internal/gazetteer"
	"github.com/ayane-k/soracast/internal/generate"
)

// Scheduler drives periodic batch generation.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	orch        *generate.Orchestrator
	locations   []gazetteer.Location
	interval    time.Duration
	concurrency int
	perTimeout  time.Duration
	log         *zap.Logger
}

// New creates a scheduler over the orchestrator.
func New(orch *generate.Orchestrator, locations []gazetteer.Location, interval time.Duration, concurrency int, perTimeout time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		orch:        orch,
		locations:   locations,
		interval:    interval,
		concurrency: concurrency,
		perTimeout:  perTimeout,
		log:         log,
	}
}

// Start schedules the periodic job and starts the scheduler asynchronously.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.log.Info("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 360
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		s.log.Info("scheduled batch generation starting", zap.Int("locations", len(s.locations)))
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(s.locations))*s.perTimeout)
		defer cancel()
		s.orch.GenerateBatch(ctx, s.locations, s.concurrency, s.perTimeout)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
