// Package scheduler runs the periodic provider probe. Each probe performs a
// full ListCategories round trip and records the outcome in the probe store
// for the health endpoint.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/interfaces"
	"github.com/giygas/drugs-api/logging"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler probes the provider every interval
type Scheduler struct {
	store     interfaces.ProbeStore
	service   interfaces.DrugQueryService
	interval  time.Duration
	timeout   time.Duration
	scheduler *gocron.Scheduler

	stopOnce sync.Once
	done     chan struct{}
}

// NewScheduler creates a probe scheduler. An interval of 0 disables probing.
func NewScheduler(store interfaces.ProbeStore, service interfaces.DrugQueryService, interval, timeout time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		service:   service,
		interval:  interval,
		timeout:   timeout,
		scheduler: gocron.NewScheduler(time.Local),
		done:      make(chan struct{}),
	}
}

// Start schedules the probe job; the first probe runs immediately
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		logging.Info("Provider probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.probe)
	if err != nil {
		logging.Error("Failed to schedule provider probe", "error", err)
		return fmt.Errorf("failed to schedule provider probe: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Provider probe scheduled", "interval", s.interval.String())

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler and the monitoring goroutine
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.scheduler.Stop()
	})
}

// probe runs one ListCategories round trip and records its outcome
func (s *Scheduler) probe() {
	// Prevent overlapping probes
	if !s.store.BeginProbe() {
		logging.Info("Probe already in progress, skipping...")
		return
	}
	defer s.store.EndProbe()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	catalog, err := s.service.ListCategories(ctx)

	result := interfaces.ProbeResult{
		At:       start,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Err = err.Error()
		result.ErrKind = apperrors.Classify(err)
		logging.Warn("Provider probe failed", "kind", result.ErrKind, "error", err, "duration", result.Duration.String())
	} else {
		result.Categories = len(catalog.Categories)
		logging.Info("Provider probe completed", "categories", result.Categories, "duration", result.Duration.String())
	}

	s.store.RecordProbe(result)
}

// startHealthMonitoring warns when no probe has succeeded for three intervals
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				lastSuccess := s.store.LastSuccess()
				if lastSuccess.IsZero() || time.Since(lastSuccess) > 3*s.interval {
					logging.Warn("Provider has not answered a probe recently", "last_success", lastSuccess)
				}
			}
		}
	}()
}
