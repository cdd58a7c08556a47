package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/climate-tracker/internal/climate"
)

// Refresher refetches data for one location.
type Refresher interface {
	Refresh(ctx context.Context, loc climate.Location) error
}

// Scheduler periodically refreshes cached climate data for configured locations,
// so the fetched range keeps up with the current date.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	locations []climate.Location
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. timeout bounds each location's refresh.
func New(locations []climate.Location, interval, timeout time.Duration, refresher Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		locations: locations,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately and warms the cache.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}
	if s.interval <= 0 {
		log.Println("scheduler: refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.refreshAll)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// refreshAll refreshes locations one at a time; the archive API is never hit in parallel.
func (s *Scheduler) refreshAll() {
	log.Println("scheduler: running climate refresh job")

	failed := 0
	for _, loc := range s.locations {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.refresher.Refresh(ctx, loc); err != nil {
			log.Printf("scheduler: refresh failed for %s: %v", loc.Name, err)
			failed++
		}
		cancel()
	}

	log.Printf("scheduler: completed climate refresh job (%d/%d refreshed)", len(s.locations)-failed, len(s.locations))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
