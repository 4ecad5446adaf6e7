package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"DailyEdition/internal/config"
	"DailyEdition/internal/domain"
	"DailyEdition/internal/logging"
	"DailyEdition/internal/orchestrator"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Telemetry.Metrics = false
	cfg.Judge.APIKey = "test-key"
	return cfg
}

func TestTasksFollowConfiguredOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Orchestrator.Tasks = []string{config.SectionHeroStory, "weekend-magazine", config.SectionMarketTicker}

	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	tasks := a.Tasks()
	require.Len(t, tasks, 3)
	require.Equal(t, "Hero Story", tasks[0].Name)
	require.True(t, tasks[0].Available)
	require.Equal(t, "weekend-magazine", tasks[1].Name)
	require.False(t, tasks[1].Available)
	require.Equal(t, "Market Ticker", tasks[2].Name)
}

func TestRunDailyReportsUnimplementedTask(t *testing.T) {
	cfg := testConfig()
	cfg.Orchestrator.Tasks = []string{"weekend-magazine"}

	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	var out bytes.Buffer
	report, err := a.RunDaily(context.Background(), &out, true)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeSkipped, report.Results[0].Outcome)
	require.Equal(t, 1, report.ExitCode())
	require.Contains(t, out.String(), "WARNING: 1/1 task(s) failed.")
}

func TestRunTaskRejectsUnknownID(t *testing.T) {
	a, err := New(context.Background(), testConfig(), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	require.ErrorContains(t, a.RunTask(context.Background(), "crossword"), `unknown task "crossword"`)
}

func TestMemoryStoreKeepsTasksInProcess(t *testing.T) {
	cfg := testConfig()
	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	require.True(t, a.inProcess(false))

	runner, err := a.runner(a.inProcess(false))
	require.NoError(t, err)
	_, ok := runner.(orchestrator.FuncRunner)
	require.True(t, ok)
}
