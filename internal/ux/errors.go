package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/botifyai2-sketch/buildmon/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError analyzes an error and adds contextual suggestions.
// Coded errors already carry their suggestions and are returned as-is.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var bmErr *errors.BuildmonError
	if stderrors.As(err, &bmErr) {
		return err
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "no such file or directory") {
		if strings.Contains(errMsg, "package.json") {
			return NewErrorWithSuggestion(err,
				"Run buildmon from the project root or pass --dir <project>")
		}
		if strings.Contains(errMsg, "tsconfig") {
			return NewErrorWithSuggestion(err,
				"Create the TypeScript config or run 'buildmon validate --auto-fix'")
		}
		if strings.Contains(errMsg, "baseline-config.json") {
			return NewErrorWithSuggestion(err,
				"Save a baseline with 'buildmon baseline save'")
		}
	}

	if strings.Contains(errMsg, "executable file not found") {
		return NewErrorWithSuggestion(err,
			"Install Node.js and run 'npm install' so npx and tsc are on PATH")
	}

	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check permissions on the project and .monitoring directories")
	}

	if strings.Contains(errMsg, "context deadline exceeded") {
		return NewErrorWithSuggestion(err,
			"Raise validation.typecheck_timeout or probes.timeout in .monitoring/config.yaml")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
