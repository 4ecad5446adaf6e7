package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/ports"
)

type recordingSink struct {
	mu      sync.Mutex
	reports []domain.RunReport
	err     error
}

func (s *recordingSink) PublishReport(_ context.Context, report domain.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return s.err
}

func available(ids ...string) []Task {
	tasks := make([]Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, Task{ID: id, Name: strings.ToUpper(id), Available: true})
	}
	return tasks
}

func outcomes(report domain.RunReport) []domain.Outcome {
	out := make([]domain.Outcome, 0, len(report.Results))
	for _, r := range report.Results {
		out = append(out, r.Outcome)
	}
	return out
}

func TestRunIsolatesFailingTask(t *testing.T) {
	t.Parallel()

	var order []string
	runner := FuncRunner{
		"a": func(context.Context) error { order = append(order, "a"); return nil },
		"b": func(context.Context) error { order = append(order, "b"); return errors.New("judge quota") },
		"c": func(context.Context) error { order = append(order, "c"); return nil },
	}
	var out bytes.Buffer
	failing := &recordingSink{err: errors.New("chat unreachable")}
	ok := &recordingSink{}

	orch := New(Options{
		Tasks:  available("a", "b", "c"),
		Runner: runner,
		Out:    &out,
		Sinks:  []ports.ReportSink{failing, ok},
	})
	report := orch.Run(context.Background(), "run-1")

	require.Equal(t, []string{"a", "b", "c"}, order)
	require.Equal(t, []domain.Outcome{domain.OutcomeOK, domain.OutcomeFailed, domain.OutcomeOK}, outcomes(report))
	require.Equal(t, 1, report.FailedCount)
	require.Equal(t, 1, report.ExitCode())
	require.Equal(t, "judge quota", report.Results[1].Error)
	require.Equal(t, "run-1", report.ID)

	require.Len(t, failing.reports, 1)
	require.Len(t, ok.reports, 1)

	text := out.String()
	require.Contains(t, text, "--- A: OK (")
	require.Contains(t, text, "--- B: FAIL (")
	require.Contains(t, text, "WARNING: 1/3 task(s) failed.")
}

func TestRunAllSucceed(t *testing.T) {
	t.Parallel()

	runner := FuncRunner{
		"a": func(context.Context) error { return nil },
		"b": func(context.Context) error { return nil },
	}
	var out bytes.Buffer
	report := New(Options{Tasks: available("a", "b"), Runner: runner, Out: &out}).Run(context.Background(), "")

	require.NotEmpty(t, report.ID)
	require.Zero(t, report.FailedCount)
	require.Zero(t, report.ExitCode())
	require.Contains(t, out.String(), "All 2 tasks completed successfully.")
	require.Contains(t, out.String(), "TASK")
}

func TestRunTimesOutAtCeiling(t *testing.T) {
	t.Parallel()

	runner := FuncRunner{
		"slow": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	timeout := 50 * time.Millisecond
	report := New(Options{Tasks: available("slow"), Runner: runner, Timeout: timeout}).Run(context.Background(), "")

	result := report.Results[0]
	require.False(t, result.Success)
	require.Equal(t, domain.OutcomeTimedOut, result.Outcome)
	require.Equal(t, timeout.Seconds(), result.ElapsedSeconds)
	require.Equal(t, 1, report.ExitCode())
}

func TestRunSkipsMissingImplementation(t *testing.T) {
	t.Parallel()

	called := false
	runner := FuncRunner{"a": func(context.Context) error { called = true; return nil }}
	tasks := []Task{{ID: "a", Name: "Alpha", Available: false}}

	report := New(Options{Tasks: tasks, Runner: runner}).Run(context.Background(), "")
	require.False(t, called)
	require.Equal(t, domain.TaskResult{Name: "Alpha", Outcome: domain.OutcomeSkipped, Error: "no implementation registered"}, report.Results[0])
	require.Equal(t, 1, report.FailedCount)
}

func TestFuncRunnerReportsPanicAsCrash(t *testing.T) {
	t.Parallel()

	runner := FuncRunner{"boom": func(context.Context) error { panic("nil map") }}
	exec := runner.Run(context.Background(), Task{ID: "boom"})
	require.ErrorIs(t, exec.Err, domain.ErrTaskCrash)
	require.Contains(t, exec.Err.Error(), "nil map")
}

func TestRunRecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	runner := FuncRunner{
		"a": func(context.Context) error { return nil },
		"b": func(context.Context) error { return errors.New("x") },
	}
	New(Options{Tasks: available("a", "b"), Runner: runner, Metrics: metrics}).Run(context.Background(), "")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	require.Equal(t, int64(2), sums["edition_task_runs_total"])
	require.Equal(t, int64(1), sums["edition_run_failures_total"])
}

// TestHelperProcess is not a real test; ProcessRunner tests re-execute the
// test binary and land here.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("EDITION_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	if len(args) == 0 {
		os.Exit(2)
	}

	switch args[0] {
	case "ok":
		fmt.Fprintln(os.Stdout, "section saved")
		fmt.Fprintln(os.Stderr, "level=INFO msg=collected")
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "level=ERROR msg=\"judge returned an object\"")
		os.Exit(1)
	case "hang":
		time.Sleep(time.Minute)
		os.Exit(0)
	}
	os.Exit(2)
}

func helperRunner() *ProcessRunner {
	return &ProcessRunner{
		Executable: os.Args[0],
		Args: func(task Task) []string {
			return []string{"-test.run=TestHelperProcess", "--", task.ID}
		},
		Env:       []string{"EDITION_HELPER_PROCESS=1"},
		WaitDelay: time.Second,
	}
}

func TestProcessRunnerCapturesOutputAndStatus(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	orch := New(Options{
		Tasks:   available("ok", "fail", "hang"),
		Runner:  helperRunner(),
		Timeout: 2 * time.Second,
		Out:     &out,
	})
	report := orch.Run(context.Background(), "")

	require.Equal(t, []domain.Outcome{domain.OutcomeOK, domain.OutcomeFailed, domain.OutcomeTimedOut}, outcomes(report))

	ok := report.Results[0]
	require.Contains(t, ok.Stdout, "section saved")
	require.Contains(t, ok.Stderr, "msg=collected")

	failed := report.Results[1]
	require.Contains(t, failed.Error, "exited with status 1")
	require.Contains(t, failed.Stderr, "judge returned an object")
	require.Contains(t, out.String(), "judge returned an object")

	require.Equal(t, 2.0, report.Results[2].ElapsedSeconds)
	require.Equal(t, 2, report.FailedCount)
}
