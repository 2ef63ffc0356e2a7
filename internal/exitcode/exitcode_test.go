package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/botifyai2-sketch/buildmon/internal/drift"
	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"UsageError", UsageError, 2},
		{"ConfigError", ConfigError, 3},
		{"DriftDetected", DriftDetected, 4},
		{"ToolchainError", ToolchainError, 5},
		{"Interrupted", Interrupted, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("Exit code %s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			expected: Success,
		},
		{
			name:     "drift sentinel",
			err:      drift.ErrDriftDetected,
			expected: DriftDetected,
		},
		{
			name:     "wrapped drift sentinel",
			err:      fmt.Errorf("monitor drift: %w", drift.ErrDriftDetected),
			expected: DriftDetected,
		},
		{
			name:     "validation failure",
			err:      bmerrors.NewValidationFailedError(2),
			expected: GeneralError,
		},
		{
			name:     "missing scripts",
			err:      bmerrors.NewScriptsMissingError([]string{"build"}),
			expected: GeneralError,
		},
		{
			name:     "invalid config",
			err:      bmerrors.New(bmerrors.ErrCodeConfigInvalid, "bad"),
			expected: ConfigError,
		},
		{
			name:     "invalid argument",
			err:      bmerrors.NewInvalidArgumentError("success", "maybe", "true or false"),
			expected: UsageError,
		},
		{
			name:     "wrapped exec timeout",
			err:      fmt.Errorf("typecheck: %w", bmerrors.NewExecTimeoutError("npx tsc", "5m0s")),
			expected: ToolchainError,
		},
		{
			name:     "history error",
			err:      bmerrors.New(bmerrors.ErrCodeHistorySave, "disk full"),
			expected: GeneralError,
		},
		{
			name:     "drift detected message",
			err:      errors.New("drift detected in package.json"),
			expected: DriftDetected,
		},
		{
			name:     "usage error - unknown command",
			err:      errors.New(`unknown command "foo" for "buildmon"`),
			expected: UsageError,
		},
		{
			name:     "usage error - unknown flag",
			err:      errors.New("unknown flag: --bar"),
			expected: UsageError,
		},
		{
			name:     "usage error - required flag",
			err:      errors.New(`required flag(s) "dir" not set`),
			expected: UsageError,
		},
		{
			name:     "usage error - arg count",
			err:      errors.New("accepts 3 arg(s), received 1"),
			expected: UsageError,
		},
		{
			name:     "generic error",
			err:      errors.New("something went wrong"),
			expected: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := DetermineExitCode(tt.err)
			if code != tt.expected {
				t.Errorf("DetermineExitCode(%v) = %d, want %d", tt.err, code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCode_CaseInsensitive(t *testing.T) {
	if code := DetermineExitCode(errors.New("DRIFT DETECTED")); code != DriftDetected {
		t.Errorf("DetermineExitCode() = %d, want %d", code, DriftDetected)
	}
	if code := DetermineExitCode(errors.New("Unknown Command")); code != UsageError {
		t.Errorf("DetermineExitCode() = %d, want %d", code, UsageError)
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{UsageError, "Usage error (invalid flags or arguments)"},
		{ConfigError, "Configuration error"},
		{DriftDetected, "Configuration drift detected"},
		{ToolchainError, "Toolchain error"},
		{Interrupted, "Interrupted"},
		{99, "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := GetExitCodeDescription(tt.code)
			if result != tt.expected {
				t.Errorf("GetExitCodeDescription(%d) = %s, want %s", tt.code, result, tt.expected)
			}
		})
	}
}
