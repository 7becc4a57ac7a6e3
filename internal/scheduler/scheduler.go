package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/icebeam7/IgniteWeatherBot/internal/digest"
)

// runTimeout bounds a single digest pass.
const runTimeout = 2 * time.Minute

// Scheduler periodically runs the proactive weather digest.
type Scheduler struct {
	scheduler *gocron.Scheduler
	digest    *digest.Digest
	interval  time.Duration
}

// New creates a new Scheduler.
func New(d *digest.Digest, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		digest:    d,
		interval:  interval,
	}
}

// Start schedules the periodic digest job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.digest.Cities()) == 0 {
		log.Println("scheduler: no digest cities configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		log.Println("scheduler: running weather digest job")

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		if err := s.digest.Run(ctx); err != nil {
			log.Printf("scheduler: digest run failed: %v", err)
		}

		log.Println("scheduler: completed weather digest job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
