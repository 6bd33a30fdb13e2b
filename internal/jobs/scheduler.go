package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/gommon/log"
)

// Scheduler runs periodic maintenance jobs
type Scheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewScheduler creates a scheduler with no jobs registered
func NewScheduler() (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: scheduler,
		jobs:      make(map[string]gocron.Job),
	}, nil
}

// Start starts the job scheduler
func (s *Scheduler) Start() {
	log.Infof("starting background job scheduler with %d jobs", len(s.jobs))
	s.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() error {
	log.Info("stopping background job scheduler")
	return s.scheduler.Shutdown()
}

// AddJob registers task to run every interval, starting immediately. A run
// still in progress when the next one is due is skipped.
func (s *Scheduler) AddJob(name string, interval time.Duration, task func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if err := task(ctx); err != nil {
				log.Warnf("job %s failed: %v", name, err)
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}

	s.jobs[name] = job
	log.Infof("registered job %s every %s", name, interval)
	return nil
}

// JobNames returns the registered job names in order
func (s *Scheduler) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
