package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher is the job the scheduler runs.
type Refresher interface {
	Refresh(ctx context.Context)
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context)

func (f RefreshFunc) Refresh(ctx context.Context) { f(ctx) }

// Scheduler periodically rebuilds the dashboard.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Refresher
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. timeout bounds a single run (0 = unbounded).
func New(interval, timeout time.Duration, job Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		job:       job,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens one interval after Start.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: refresh interval is zero; periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: refreshing every %s", s.interval)
	return nil
}

func (s *Scheduler) run() {
	log.Println("scheduler: running weather refresh job")

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.job.Refresh(ctx)
	log.Println("scheduler: completed weather refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
