package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"DailyEdition/internal/domain"
)

func TestDispatcherRejectsOverlappingRuns(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan string, 2)
	d := NewDispatcher(context.Background(), func(_ context.Context, runID string) domain.RunReport {
		started <- runID
		<-release
		return domain.RunReport{ID: runID}
	}, nil)

	_, ok := d.Latest()
	require.False(t, ok)

	first, err := d.Submit()
	require.NoError(t, err)
	require.Equal(t, first, <-started)

	active, err := d.Submit()
	require.ErrorIs(t, err, domain.ErrRunInProgress)
	require.Equal(t, first, active)

	running, busy := d.Running()
	require.True(t, busy)
	require.Equal(t, first, running)

	close(release)
	d.Wait()

	latest, ok := d.Latest()
	require.True(t, ok)
	require.Equal(t, first, latest.ID)

	second, err := d.Submit()
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	d.Wait()
}

func TestDispatcherReleasesSlotAfterPanic(t *testing.T) {
	t.Parallel()

	calls := 0
	d := NewDispatcher(context.Background(), func(_ context.Context, runID string) domain.RunReport {
		calls++
		if calls == 1 {
			panic("nil store")
		}
		return domain.RunReport{ID: runID}
	}, nil)

	first, err := d.Submit()
	require.NoError(t, err)
	d.Wait()

	_, busy := d.Running()
	require.False(t, busy)

	latest, ok := d.Latest()
	require.True(t, ok)
	require.Equal(t, first, latest.ID)
	require.Equal(t, 1, latest.FailedCount)
	require.Contains(t, latest.Results[0].Error, "nil store")

	second, err := d.Submit()
	require.NoError(t, err)
	d.Wait()
	latest, _ = d.Latest()
	require.Equal(t, second, latest.ID)
	require.Zero(t, latest.FailedCount)
}
