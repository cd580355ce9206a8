package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher is triggered on every tick. *controller.Controller satisfies it.
type Refresher interface {
	Refresh()
}

// Scheduler periodically triggers a weather refresh.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, refresher Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler.
// The first tick fires one interval after Start; the launch refresh is the
// caller's job. A non-positive interval disables scheduling.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("INFO: scheduler: refresh interval not set; periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		log.Println("INFO: scheduler: running periodic weather refresh")
		s.refresher.Refresh()
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future ticks.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
