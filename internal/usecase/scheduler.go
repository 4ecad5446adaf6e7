package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/logging"
	"DailyEdition/internal/ports"
)

// RunSubmitter starts a daily run in the background.
type RunSubmitter interface {
	Submit() (string, error)
}

// Scheduler wires the clock driver with the run dispatcher.
type Scheduler struct {
	driver ports.Scheduler
	runs   RunSubmitter
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, runs RunSubmitter, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scheduler{driver: driver, runs: runs, logger: logger}
}

// Start registers the daily run with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runs == nil {
		return nil
	}

	job := func(trigger time.Time) {
		id, err := s.runs.Submit()
		switch {
		case errors.Is(err, domain.ErrRunInProgress):
			s.logger.Warn("scheduled run skipped, previous run still active", "run_id", id, "trigger", trigger)
		case err != nil:
			s.logger.Error("scheduled run not started", "error", err)
		default:
			s.logger.Info("scheduled run started", "run_id", id, "trigger", trigger)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
