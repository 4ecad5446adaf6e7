package orchestrator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"DailyEdition/internal/domain"
)

// MeterName scopes the orchestrator instruments.
const MeterName = "dailyedition/orchestrator"

// Metrics holds the instruments recorded for every run.
type Metrics struct {
	taskRuns     metric.Int64Counter
	taskDuration metric.Float64Histogram
	runFailures  metric.Int64Counter
}

// NewMetrics registers instruments on meter. A nil meter uses the global provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}

	taskRuns, err := meter.Int64Counter(
		"edition_task_runs_total",
		metric.WithDescription("Task executions by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create task runs counter: %w", err)
	}

	taskDuration, err := meter.Float64Histogram(
		"edition_task_duration_seconds",
		metric.WithDescription("Task wall time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create task duration histogram: %w", err)
	}

	runFailures, err := meter.Int64Counter(
		"edition_run_failures_total",
		metric.WithDescription("Daily runs with at least one failed task"),
	)
	if err != nil {
		return nil, fmt.Errorf("create run failures counter: %w", err)
	}

	return &Metrics{taskRuns: taskRuns, taskDuration: taskDuration, runFailures: runFailures}, nil
}

func (m *Metrics) recordTask(ctx context.Context, taskID string, result domain.TaskResult) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("task", taskID),
		attribute.String("outcome", string(result.Outcome)),
	)
	m.taskRuns.Add(ctx, 1, attrs)
	if result.Outcome != domain.OutcomeSkipped {
		m.taskDuration.Record(ctx, result.ElapsedSeconds, metric.WithAttributes(attribute.String("task", taskID)))
	}
}

func (m *Metrics) recordRun(ctx context.Context, report domain.RunReport) {
	if m == nil || !report.Failed() {
		return
	}
	m.runFailures.Add(ctx, 1)
}
