package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-001"
	ErrCodeConfigNotFound ErrorCode = "CONFIG-002"

	// History and alert store errors (HIST-001 to HIST-099)
	ErrCodeHistoryLoad     ErrorCode = "HIST-001"
	ErrCodeHistorySave     ErrorCode = "HIST-002"
	ErrCodeAlertsSave      ErrorCode = "HIST-003"
	ErrCodeAlertNotFound   ErrorCode = "HIST-004"
	ErrCodeBaselineMissing ErrorCode = "HIST-005"

	// Validation errors (VALID-001 to VALID-099)
	ErrCodePackageManifestMissing ErrorCode = "VALID-001"
	ErrCodePackageManifestInvalid ErrorCode = "VALID-002"
	ErrCodeScriptsMissing         ErrorCode = "VALID-003"
	ErrCodeValidationFailed       ErrorCode = "VALID-004"
	ErrCodeTypeCheckFailed        ErrorCode = "VALID-005"

	// Execution errors (EXEC-001 to EXEC-099)
	ErrCodeExecNotFound ErrorCode = "EXEC-001"
	ErrCodeExecTimeout  ErrorCode = "EXEC-002"
	ErrCodeExecFailed   ErrorCode = "EXEC-003"

	// Usage errors (USAGE-001 to USAGE-099)
	ErrCodeInvalidArgument ErrorCode = "USAGE-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// BuildmonError is an error with a code, recovery suggestions and an
// optional documentation link
type BuildmonError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *BuildmonError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *BuildmonError) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err carries a BuildmonError with the given code
func IsCode(err error, code ErrorCode) bool {
	var be *BuildmonError
	return stderrors.As(err, &be) && be.Code == code
}

// New creates a new BuildmonError
func New(code ErrorCode, message string) *BuildmonError {
	return &BuildmonError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new BuildmonError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *BuildmonError {
	return &BuildmonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *BuildmonError) WithSuggestion(suggestion string) *BuildmonError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *BuildmonError) WithSuggestions(suggestions ...string) *BuildmonError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *BuildmonError) WithDocs(url string) *BuildmonError {
	e.DocsURL = url
	return e
}

// Category returns the code prefix, e.g. "VALID" for "VALID-003"
func (e *BuildmonError) Category() string {
	code := string(e.Code)
	if i := strings.IndexByte(code, '-'); i > 0 {
		return code[:i]
	}
	return code
}

// Common error constructors

// NewPackageManifestMissingError creates a missing package.json error
func NewPackageManifestMissingError(path string) *BuildmonError {
	return New(ErrCodePackageManifestMissing, fmt.Sprintf("package manifest not found: %s", path)).
		WithSuggestion("Run buildmon from the project root or pass --dir").
		WithSuggestion("Check that package.json is committed")
}

// NewPackageManifestInvalidError creates a package.json parse error
func NewPackageManifestInvalidError(path string, cause error) *BuildmonError {
	return Wrap(ErrCodePackageManifestInvalid, fmt.Sprintf("package manifest is not valid JSON: %s", path), cause).
		WithSuggestion("Run 'npm pkg get name' to locate the syntax error").
		WithSuggestion("Check for trailing commas or comments in package.json")
}

// NewScriptsMissingError creates an error for missing package scripts
func NewScriptsMissingError(missing []string) *BuildmonError {
	return New(ErrCodeScriptsMissing, fmt.Sprintf("package.json is missing required scripts: %s", strings.Join(missing, ", "))).
		WithSuggestion(fmt.Sprintf("Add the missing scripts to the \"scripts\" section: %s", strings.Join(missing, ", "))).
		WithSuggestion("Override the required list with validation.required_scripts in .monitoring/config.yaml")
}

// NewValidationFailedError creates an error summarising failed validation
func NewValidationFailedError(errorCount int) *BuildmonError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("build validation failed with %d error(s)", errorCount)).
		WithSuggestion("Fix the errors listed above and re-run 'buildmon validate'").
		WithSuggestion("Run 'buildmon validate --auto-fix' to repair tsconfig.build.json")
}

// NewTypeCheckFailedError creates a type check failure error
func NewTypeCheckFailedError(diagnostics int) *BuildmonError {
	return New(ErrCodeTypeCheckFailed, fmt.Sprintf("type check reported %d diagnostic(s)", diagnostics)).
		WithSuggestion("Run 'npx tsc --noEmit -p tsconfig.build.json' locally to see full output").
		WithSuggestion("Make sure test files are excluded from tsconfig.build.json")
}

// NewExecTimeoutError creates a subprocess timeout error
func NewExecTimeoutError(command string, timeout string) *BuildmonError {
	return New(ErrCodeExecTimeout, fmt.Sprintf("command timed out after %s: %s", timeout, command)).
		WithSuggestion("Increase validation.typecheck_timeout").
		WithSuggestion("Use --skip-typecheck to skip the type check step")
}

// NewAlertNotFoundError creates an unknown alert id error
func NewAlertNotFoundError(id string) *BuildmonError {
	return New(ErrCodeAlertNotFound, fmt.Sprintf("no active alert with id: %s", id)).
		WithSuggestion("Run 'buildmon alerts list' to see active alert ids")
}

// NewBaselineMissingError creates a missing baseline error
func NewBaselineMissingError(path string) *BuildmonError {
	return New(ErrCodeBaselineMissing, fmt.Sprintf("baseline not found: %s", path)).
		WithSuggestion("Run 'buildmon baseline save' to record the current configuration")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *BuildmonError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *BuildmonError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

// NewInvalidArgumentError creates a usage error for a bad argument
func NewInvalidArgumentError(name, value, expected string) *BuildmonError {
	return New(ErrCodeInvalidArgument, fmt.Sprintf("invalid argument %s=%q", name, value)).
		WithSuggestion(fmt.Sprintf("Expected: %s", expected))
}
