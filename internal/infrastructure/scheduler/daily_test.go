package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextFiring(t *testing.T) {
	t.Parallel()

	toronto, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)
	s, err := NewDailyScheduler("06:30", toronto)
	require.NoError(t, err)

	before := time.Date(2026, 3, 2, 5, 0, 0, 0, toronto)
	require.Equal(t, time.Date(2026, 3, 2, 6, 30, 0, 0, toronto), s.Next(before))

	exact := time.Date(2026, 3, 2, 6, 30, 0, 0, toronto)
	require.Equal(t, time.Date(2026, 3, 3, 6, 30, 0, 0, toronto), s.Next(exact))

	utc := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 3, 6, 30, 0, 0, toronto), s.Next(utc))
}

func TestRejectsBadRunTime(t *testing.T) {
	t.Parallel()

	_, err := NewDailyScheduler("25:00", nil)
	require.Error(t, err)
}

func TestStartFiresAndStops(t *testing.T) {
	t.Parallel()

	s, err := NewDailyScheduler("06:00", time.UTC)
	require.NoError(t, err)
	fixed := time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	var waits []time.Duration
	ticks := make(chan time.Time)
	s.after = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		return ticks
	}

	fired := make(chan time.Time, 1)
	require.NoError(t, s.Start(context.Background(), func(at time.Time) { fired <- at }))

	ticks <- fixed
	require.Equal(t, time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC), <-fired)

	require.NoError(t, s.Stop(context.Background()))
	require.Equal(t, time.Hour, waits[0])
	require.NoError(t, s.Stop(context.Background()))
}
