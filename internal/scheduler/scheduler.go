// Package scheduler runs the platform's recurring jobs on cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds scheduler settings.
type Config struct {
	// Enabled controls whether the scheduler participates in bulk startup.
	// When false it is registered lazily and only starts on explicit request.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Scheduler wraps a cron runner with named jobs and container-managed
// lifecycle.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a stopped scheduler; call Start after registering jobs.
func New(log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		log:     log,
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers a named job on a cron expression. Names are unique; the
// expression accepts standard cron specs and descriptors like "@every 5m".
func (s *Scheduler) Add(name, spec string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job already scheduled: %s", name)
	}

	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		s.log.Debug("job started", "job", name)
		job()
		s.log.Info("job finished", "job", name, "duration_ms", time.Since(start).Milliseconds())
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}

	s.entries[name] = id
	return nil
}

// Jobs returns the names of all scheduled jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.entries))
}

// Shutdown stops scheduling and waits for running jobs to finish, bounded by
// ctx.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler jobs still running: %w", ctx.Err())
	}
}
