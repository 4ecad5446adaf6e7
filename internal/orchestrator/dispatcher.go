package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/logging"
)

// RunFunc performs one daily run.
type RunFunc func(ctx context.Context, runID string) domain.RunReport

// Dispatcher is a single-slot job runner: at most one run at a time,
// overlapping submissions are rejected.
type Dispatcher struct {
	ctx    context.Context
	run    RunFunc
	logger *slog.Logger

	mu      sync.Mutex
	running string
	latest  *domain.RunReport
	wg      sync.WaitGroup
}

// NewDispatcher binds runs to ctx; cancelling it stops an active run.
func NewDispatcher(ctx context.Context, run RunFunc, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Dispatcher{ctx: ctx, run: run, logger: logger}
}

// Submit starts a run in the background and returns its id.
func (d *Dispatcher) Submit() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running != "" {
		return d.running, domain.ErrRunInProgress
	}
	id := uuid.NewString()
	d.running = id
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()
		d.logger.Info("daily run started", "run_id", id)
		report := d.execute(id)

		d.mu.Lock()
		d.latest = &report
		d.running = ""
		d.mu.Unlock()
		d.logger.Info("daily run finished", "run_id", id, "failed", report.FailedCount)
	}()
	return id, nil
}

// execute turns a panicking run into a failed report so the slot is released.
func (d *Dispatcher) execute(id string) (report domain.RunReport) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("daily run panicked", "run_id", id, "panic", r)
			report = domain.RunReport{ID: id}
			report.Add(domain.TaskResult{
				Name:    "daily run",
				Outcome: domain.OutcomeFailed,
				Error:   fmt.Sprintf("%v: %v", domain.ErrTaskCrash, r),
			})
		}
	}()
	return d.run(d.ctx, id)
}

// Running returns the id of the active run, if any.
func (d *Dispatcher) Running() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running, d.running != ""
}

// Latest returns the most recent finished report.
func (d *Dispatcher) Latest() (domain.RunReport, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.latest == nil {
		return domain.RunReport{}, false
	}
	return *d.latest, true
}

// Wait blocks until the active run finishes.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
