// Package exitcode maps errors to process exit codes.
package exitcode

import (
	"errors"
	"os"
	"strings"

	"github.com/botifyai2-sketch/buildmon/internal/drift"
	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a failed validation or other error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates an unreadable or invalid configuration
	ConfigError = 3

	// DriftDetected indicates configuration drift was found
	DriftDetected = 4

	// ToolchainError indicates a required executable is missing or timed out
	ToolchainError = 5

	// Interrupted indicates the run was cancelled by SIGINT or SIGTERM
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// Coded errors map by category; other errors fall back to message matching.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if errors.Is(err, drift.ErrDriftDetected) {
		return DriftDetected
	}

	var be *bmerrors.BuildmonError
	if errors.As(err, &be) {
		switch be.Category() {
		case "CONFIG":
			return ConfigError
		case "USAGE":
			return UsageError
		case "EXEC":
			return ToolchainError
		default:
			return GeneralError
		}
	}

	errMsg := strings.ToLower(err.Error())

	// Drift detection
	if strings.Contains(errMsg, "drift detected") {
		return DriftDetected
	}

	// Usage errors (cobra)
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown shorthand flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}
	if strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg(s)") {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ConfigError:
		return "Configuration error"
	case DriftDetected:
		return "Configuration drift detected"
	case ToolchainError:
		return "Toolchain error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
