package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/logging"
	"DailyEdition/internal/ports"
)

// DefaultTimeout is the per-task ceiling.
const DefaultTimeout = 120 * time.Second

// Options configure an Orchestrator.
type Options struct {
	Tasks   []Task
	Runner  Runner
	Timeout time.Duration
	// Out receives the banner, per-task lines and the summary table.
	Out     io.Writer
	Sinks   []ports.ReportSink
	Metrics *Metrics
	Logger  *slog.Logger
	Now     func() time.Time
}

// Orchestrator runs the registered tasks strictly in order, one at a time.
type Orchestrator struct {
	tasks   []Task
	runner  Runner
	timeout time.Duration
	out     io.Writer
	sinks   []ports.ReportSink
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// New builds an orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		tasks:   opts.Tasks,
		runner:  opts.Runner,
		timeout: opts.Timeout,
		out:     opts.Out,
		sinks:   opts.Sinks,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	if o.out == nil {
		o.out = io.Discard
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Run executes every task and returns the report. An empty runID gets a fresh one.
func (o *Orchestrator) Run(ctx context.Context, runID string) domain.RunReport {
	if runID == "" {
		runID = uuid.NewString()
	}
	report := domain.RunReport{ID: runID, StartedAt: o.now(), Results: make([]domain.TaskResult, 0, len(o.tasks))}
	logger := o.logger.With("run_id", runID)

	writeBanner(o.out, report, len(o.tasks))
	for _, task := range o.tasks {
		result := o.runTask(ctx, task)
		report.Add(result)
		o.metrics.recordTask(ctx, task.ID, result)
		writeTaskLine(o.out, result)
		logger.Info("task finished", "task", task.ID, "outcome", result.Outcome, "elapsed_s", result.ElapsedSeconds)
	}
	report.FinishedAt = o.now()

	RenderReport(o.out, report)
	o.metrics.recordRun(ctx, report)
	o.publish(ctx, logger, report)
	return report
}

func (o *Orchestrator) runTask(ctx context.Context, task Task) domain.TaskResult {
	name := task.Name
	if name == "" {
		name = task.ID
	}
	if !task.Available || o.runner == nil {
		return domain.TaskResult{Name: name, Outcome: domain.OutcomeSkipped, Error: "no implementation registered"}
	}

	taskCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := o.now()
	exec := o.runner.Run(taskCtx, task)
	elapsed := o.now().Sub(start)

	result := domain.TaskResult{
		Name:           name,
		ElapsedSeconds: elapsed.Seconds(),
		Stdout:         exec.Stdout,
		Stderr:         exec.Stderr,
	}
	switch {
	case errors.Is(taskCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.Outcome = domain.OutcomeTimedOut
		result.ElapsedSeconds = o.timeout.Seconds()
		result.Error = domain.ErrTaskTimeout.Error()
	case exec.Err != nil:
		result.Outcome = domain.OutcomeFailed
		result.Error = exec.Err.Error()
	default:
		result.Outcome = domain.OutcomeOK
		result.Success = true
	}
	return result
}

func (o *Orchestrator) publish(ctx context.Context, logger *slog.Logger, report domain.RunReport) {
	for _, sink := range o.sinks {
		if err := sink.PublishReport(ctx, report); err != nil {
			logger.Warn("report sink failed", "error", err)
		}
	}
}
