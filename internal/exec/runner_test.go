package exec

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell")
	}
}

func TestLocalRunner_Success(t *testing.T) {
	skipOnWindows(t)

	result := NewLocalRunner().Run(context.Background(), Step{
		ID:  "echo",
		Cmd: []string{"sh", "-c", "echo hello; echo oops >&2"},
	})

	if !result.Succeeded() {
		t.Fatalf("expected success, got %+v", result)
	}
	if strings.TrimSpace(result.Stdout) != "hello" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
	if strings.TrimSpace(result.Stderr) != "oops" {
		t.Errorf("Stderr = %q", result.Stderr)
	}
	if !strings.Contains(result.Output(), "hello") || !strings.Contains(result.Output(), "oops") {
		t.Errorf("Output() = %q", result.Output())
	}
}

func TestLocalRunner_NonZeroExitIsData(t *testing.T) {
	skipOnWindows(t)

	result := NewLocalRunner().Run(context.Background(), Step{Cmd: []string{"sh", "-c", "exit 3"}})

	if result.Error != nil {
		t.Errorf("non-zero exit should not be an error: %v", result.Error)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if result.Succeeded() {
		t.Error("Succeeded() should be false")
	}
}

func TestLocalRunner_Timeout(t *testing.T) {
	skipOnWindows(t)

	result := NewLocalRunner().Run(context.Background(), Step{
		Cmd:     []string{"sleep", "5"},
		Timeout: 50 * time.Millisecond,
	})

	if !result.TimedOut {
		t.Fatalf("expected timeout, got %+v", result)
	}
	if result.Error == nil {
		t.Error("timed out step should carry an error")
	}
	if result.Duration > 4*time.Second {
		t.Errorf("process was not killed promptly: %v", result.Duration)
	}
}

func TestLocalRunner_MissingExecutable(t *testing.T) {
	result := NewLocalRunner().Run(context.Background(), Step{Cmd: []string{"buildmon-no-such-binary"}})

	if result.Error == nil {
		t.Fatal("expected start error")
	}
	if result.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", result.ExitCode)
	}
}

func TestLocalRunner_EmptyCommand(t *testing.T) {
	if result := NewLocalRunner().Run(context.Background(), Step{ID: "empty"}); result.Error == nil {
		t.Error("expected error for empty command")
	}
}

func TestLocalRunner_EnvAndWorkdir(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	result := NewLocalRunner().Run(context.Background(), Step{
		Cmd:     []string{"sh", "-c", "echo $BUILDMON_TEST; pwd"},
		Workdir: dir,
		Env:     map[string]string{"BUILDMON_TEST": "on"},
	})

	lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
	if len(lines) != 2 || lines[0] != "on" {
		t.Fatalf("Stdout = %q", result.Stdout)
	}
	if !strings.HasSuffix(lines[1], strings.TrimPrefix(dir, "/private")) {
		t.Errorf("pwd = %q, want %q", lines[1], dir)
	}
}

func TestRunnerFunc(t *testing.T) {
	var got Step
	r := RunnerFunc(func(_ context.Context, step Step) *Result {
		got = step
		return &Result{ExitCode: 0}
	})

	r.Run(context.Background(), Step{ID: "fake"})
	if got.ID != "fake" {
		t.Errorf("step not passed through: %+v", got)
	}
}
