package exec

import "time"

// Step represents a single command to run
type Step struct {
	ID      string
	Cmd     []string // Command and arguments
	Workdir string   // Working directory path
	Env     map[string]string
	Timeout time.Duration // zero means no limit beyond the caller's context
}

// Result represents the outcome of an execution step. A non-zero exit is
// reported through ExitCode, not Error; Error is set when the command
// could not be started or was killed.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
	TimedOut bool
}

// Succeeded reports whether the command ran and exited zero
func (r *Result) Succeeded() bool {
	return r != nil && r.Error == nil && r.ExitCode == 0
}

// Output returns stdout followed by stderr
func (r *Result) Output() string {
	if r == nil {
		return ""
	}
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}
