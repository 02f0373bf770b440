// Package scheduler runs the periodic background jobs of the medication
// API: recurring external API health probes.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/medtrack/medication-api/interfaces"
	"github.com/medtrack/medication-api/logging"
)

// Compile-time check to ensure Scheduler implements the Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler probes the external APIs on a fixed interval and logs health
// transitions.
type Scheduler struct {
	monitor   interfaces.HealthMonitor
	interval  time.Duration
	scheduler *gocron.Scheduler

	lastHealthy map[string]bool
}

// NewScheduler creates a scheduler probing via the given monitor every
// interval.
func NewScheduler(monitor interfaces.HealthMonitor, interval time.Duration) *Scheduler {
	return &Scheduler{
		monitor:     monitor,
		interval:    interval,
		scheduler:   gocron.NewScheduler(time.Local),
		lastHealthy: make(map[string]bool),
	}
}

// Start runs one immediate probe round and schedules the recurring job.
func (s *Scheduler) Start() error {
	s.probeAll()

	_, err := s.scheduler.Every(s.interval).Do(s.probeAll)
	if err != nil {
		logging.Error("Failed to schedule health probes", "error", err)
		return fmt.Errorf("failed to schedule health probes: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// probeAll checks both APIs and logs any healthy/unhealthy transition.
func (s *Scheduler) probeAll() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	statuses := s.monitor.CheckAll(ctx)
	for name, status := range statuses {
		previous, known := s.lastHealthy[name]
		if known && previous != status.Healthy {
			if status.Healthy {
				logging.Info("External API recovered", "api", name,
					"response_time", status.ResponseTime.String())
			} else {
				logging.Warn("External API became unhealthy", "api", name,
					"error", status.LastError)
			}
		}
		s.lastHealthy[name] = status.Healthy
	}
}
