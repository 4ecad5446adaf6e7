package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"DailyEdition/internal/ports"
)

// DailyScheduler fires the job once a day at a wall-clock time in a fixed location.
type DailyScheduler struct {
	hour, minute int
	loc          *time.Location

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler parses runAt as "15:04". A nil location means UTC.
func NewDailyScheduler(runAt string, loc *time.Location) (*DailyScheduler, error) {
	at, err := time.Parse("15:04", runAt)
	if err != nil {
		return nil, fmt.Errorf("scheduler: run time %q: %w", runAt, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DailyScheduler{
		hour:   at.Hour(),
		minute: at.Minute(),
		loc:    loc,
		now:    time.Now,
		after:  time.After,
	}, nil
}

// Next returns the first firing strictly after t.
func (d *DailyScheduler) Next(t time.Time) time.Time {
	local := t.In(d.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.hour, d.minute, 0, 0, d.loc)
	}
	return next
}

// Start runs job at every firing until ctx ends or Stop is called.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return errors.New("scheduler: nil job")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}
	d.stop = make(chan struct{})
	d.done = make(chan struct{})

	go d.loop(ctx, job, d.stop, d.done)
	return nil
}

func (d *DailyScheduler) loop(ctx context.Context, job func(time.Time), stop, done chan struct{}) {
	defer close(done)
	for {
		next := d.Next(d.now())
		select {
		case <-d.after(next.Sub(d.now())):
			job(next)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

// Stop halts the loop and waits for it to exit.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
