package domain

import (
	"time"
)

// Outcome enumerates how a task finished.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFailed   Outcome = "failed"
	OutcomeTimedOut Outcome = "timed_out"
	OutcomeSkipped  Outcome = "skipped"
)

// TaskResult records a single task execution inside a run.
type TaskResult struct {
	Name           string  `json:"name"`
	Success        bool    `json:"success"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	Outcome        Outcome `json:"outcome"`
	Error          string  `json:"error,omitempty"`
	Stdout         string  `json:"stdout,omitempty"`
	Stderr         string  `json:"stderr,omitempty"`
}

// RunReport aggregates the results of one orchestrator run in execution order.
type RunReport struct {
	ID          string       `json:"id"`
	StartedAt   time.Time    `json:"startedAt"`
	FinishedAt  time.Time    `json:"finishedAt"`
	Results     []TaskResult `json:"results"`
	FailedCount int          `json:"failedCount"`
}

// Add appends a result and keeps FailedCount in step with it.
func (r *RunReport) Add(result TaskResult) {
	r.Results = append(r.Results, result)
	if !result.Success {
		r.FailedCount++
	}
}

// Failed reports whether the run as a whole failed.
func (r RunReport) Failed() bool {
	return r.FailedCount > 0
}

// ExitCode is the process exit status that corresponds to the report.
func (r RunReport) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}

// Elapsed is the wall time of the run.
func (r RunReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
