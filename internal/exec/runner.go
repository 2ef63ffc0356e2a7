// Package exec runs subprocesses with a bounded lifetime and reports
// their outcome as data.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"sort"
	"time"
)

// Runner runs a step to completion
type Runner interface {
	Run(ctx context.Context, step Step) *Result
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, step Step) *Result

// Run implements Runner
func (f RunnerFunc) Run(ctx context.Context, step Step) *Result {
	return f(ctx, step)
}

// LocalRunner runs commands on the host
type LocalRunner struct{}

// NewLocalRunner creates a host runner
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes step and waits for it. The process is killed when the
// step timeout or ctx expires.
func (r *LocalRunner) Run(ctx context.Context, step Step) *Result {
	startTime := time.Now()

	if len(step.Cmd) == 0 {
		return &Result{ExitCode: -1, Error: fmt.Errorf("step %q has no command", step.ID)}
	}

	if step.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	cmd := osexec.CommandContext(ctx, step.Cmd[0], step.Cmd[1:]...)
	cmd.Dir = step.Workdir
	if len(step.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(step.Env)...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(startTime),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		result.TimedOut = errors.Is(ctxErr, context.DeadlineExceeded)
		result.Error = fmt.Errorf("%s: %w", step.Cmd[0], ctxErr)
		return result
	}

	if err != nil {
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result
		}
		// Command failed to start
		result.ExitCode = -1
		result.Error = fmt.Errorf("failed to execute %s: %w", step.Cmd[0], err)
	}
	return result
}

// LookPath reports whether an executable is on PATH
func LookPath(name string) (string, error) {
	return osexec.LookPath(name)
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
