package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"DailyEdition/internal/domain"
)

// Task is one entry of the daily run.
type Task struct {
	ID   string
	Name string
	// Available is false when no implementation is registered for ID.
	Available bool
}

// Execution is what a runner observed while running a task.
type Execution struct {
	Err    error
	Stdout string
	Stderr string
}

// Runner executes a single task. The context carries the time ceiling.
type Runner interface {
	Run(ctx context.Context, task Task) Execution
}

// TaskFunc is an in-process task body.
type TaskFunc func(ctx context.Context) error

// FuncRunner runs tasks in the current process. Panics are reported as crashes.
// A task that ignores its context keeps running after the ceiling.
type FuncRunner map[string]TaskFunc

func (f FuncRunner) Run(ctx context.Context, task Task) Execution {
	fn, ok := f[task.ID]
	if !ok {
		return Execution{Err: fmt.Errorf("task %s: %w: no implementation", task.ID, domain.ErrTaskCrash)}
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("task %s: %w: %v", task.ID, domain.ErrTaskCrash, r)
			}
		}()
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return Execution{Err: err}
	case <-ctx.Done():
		return Execution{Err: ctx.Err()}
	}
}

// ProcessRunner re-executes a binary once per task so a crash or hang in one
// task cannot affect the others.
type ProcessRunner struct {
	Executable string
	// Args builds the child arguments. Defaults to "task <id>".
	Args func(task Task) []string
	// Env is appended to the parent environment.
	Env []string
	// WaitDelay bounds how long output pipes may stay open after a kill.
	WaitDelay time.Duration
}

// NewProcessRunner targets the running binary.
func NewProcessRunner() (*ProcessRunner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return &ProcessRunner{Executable: exe, WaitDelay: 5 * time.Second}, nil
}

func (p *ProcessRunner) Run(ctx context.Context, task Task) Execution {
	args := []string{"task", task.ID}
	if p.Args != nil {
		args = p.Args(task)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Executable, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), p.Env...)
	cmd.WaitDelay = p.WaitDelay

	err := cmd.Run()
	out := Execution{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		out.Err = fmt.Errorf("task %s exited with status %d", task.ID, exitErr.ExitCode())
	default:
		out.Err = fmt.Errorf("task %s: %w: %v", task.ID, domain.ErrTaskCrash, err)
	}
	return out
}
