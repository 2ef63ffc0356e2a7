package validate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/botifyai2-sketch/buildmon/internal/exec"
)

// DefaultTypeCheckTimeout bounds a tsc run when none is configured
const DefaultTypeCheckTimeout = 5 * time.Minute

// maxUnstructuredOutput caps the message kept when tsc output has no
// recognizable diagnostics
const maxUnstructuredOutput = 4000

var diagnosticLine = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): error (TS\d+): (.*)$`)

// Diagnostic is one compiler error
type Diagnostic struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// String formats the diagnostic the way tsc prints it
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s(%d,%d): error %s: %s", d.File, d.Line, d.Column, d.Code, d.Message)
}

// ParseDiagnostics extracts structured diagnostics from tsc output.
// Continuation lines and summaries are ignored.
func ParseDiagnostics(output string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		m := diagnosticLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		ln, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		diags = append(diags, Diagnostic{
			File:    m[1],
			Line:    ln,
			Column:  col,
			Code:    m[4],
			Message: m[5],
		})
	}
	return diags
}

// TypeCheckResult is the outcome of one tsc run
type TypeCheckResult struct {
	Command     []string      `json:"command"`
	ExitCode    int           `json:"exitCode"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"durationMs"`
	TimedOut    bool          `json:"timedOut,omitempty"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
	// Unstructured holds the raw output when tsc failed without printing
	// diagnostics in the standard format
	Unstructured string `json:"unstructured,omitempty"`
	Err          error  `json:"-"`
}

// Passed reports a clean exit with no diagnostics
func (r *TypeCheckResult) Passed() bool {
	return r.Err == nil && !r.TimedOut && r.ExitCode == 0 && len(r.Diagnostics) == 0
}

// Messages returns one line per diagnostic, or the unstructured output
func (r *TypeCheckResult) Messages() []string {
	if len(r.Diagnostics) > 0 {
		out := make([]string, 0, len(r.Diagnostics))
		for _, d := range r.Diagnostics {
			out = append(out, d.String())
		}
		return out
	}
	if r.Unstructured != "" {
		return []string{r.Unstructured}
	}
	return nil
}

// TypeChecker runs tsc against the production tsconfig
type TypeChecker struct {
	Runner  exec.Runner
	Project string
	Timeout time.Duration
}

// Command is the argv the checker runs
func (t *TypeChecker) Command() []string {
	project := t.Project
	if project == "" {
		project = "tsconfig.build.json"
	}
	return []string{"npx", "tsc", "--noEmit", "-p", project}
}

// Run executes tsc in dir. A non-zero exit is reported in the result,
// never as an error.
func (t *TypeChecker) Run(ctx context.Context, dir string) *TypeCheckResult {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTypeCheckTimeout
	}

	cmd := t.Command()
	res := t.Runner.Run(ctx, exec.Step{
		ID:      "typecheck",
		Cmd:     cmd,
		Workdir: dir,
		Timeout: timeout,
	})

	out := &TypeCheckResult{
		Command:     cmd,
		ExitCode:    res.ExitCode,
		Duration:    res.Duration,
		DurationMS:  res.Duration.Milliseconds(),
		TimedOut:    res.TimedOut,
		Diagnostics: []Diagnostic{},
		Err:         res.Error,
	}
	if res.TimedOut || res.Error != nil || res.ExitCode == 0 {
		return out
	}

	output := res.Output()
	if diags := ParseDiagnostics(output); len(diags) > 0 {
		out.Diagnostics = diags
		return out
	}

	text := strings.TrimSpace(output)
	if text == "" {
		text = fmt.Sprintf("tsc exited with code %d", res.ExitCode)
	}
	out.Unstructured = truncateOutput(text, maxUnstructuredOutput)
	return out
}

// truncateOutput cuts text to at most limit bytes on a rune boundary and
// marks the cut with an ellipsis
func truncateOutput(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
