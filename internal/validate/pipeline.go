// Package validate runs the pre-build validation pipeline: package
// scripts, tsconfig checks with optional repair, and a tsc type check.
package validate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/config"
	"github.com/botifyai2-sketch/buildmon/internal/detect"
	"github.com/botifyai2-sketch/buildmon/internal/domain"
	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/exec"
	"github.com/botifyai2-sketch/buildmon/internal/log"
	"github.com/botifyai2-sketch/buildmon/internal/monitor"
	"github.com/botifyai2-sketch/buildmon/internal/tsconfig"
)

// Troubleshooting is printed after a failed run
var Troubleshooting = []string{
	"Check that tsconfig.build.json extends tsconfig.json and excludes test files",
	"Run 'npx tsc --noEmit -p tsconfig.build.json' to reproduce type errors",
	"Verify the NEXT_PUBLIC_ENABLE_* flags match the intended deployment phase",
	"Run 'buildmon monitor drift' to see configuration changes since the last good build",
	"Re-run with --auto-fix to repair tsconfig.build.json automatically",
}

// Recorder stores a finished validation run as a build attempt
type Recorder interface {
	RecordBuildAttempt(ctx context.Context, attempt domain.BuildAttempt) (*monitor.RecordResult, error)
}

// Pipeline validates one project directory
type Pipeline struct {
	Dir      string
	Runner   exec.Runner
	Config   *config.Config
	Monitor  Recorder // nil disables recording
	Phase    func() domain.Phase
	Logger   *log.Logger
	Now      func() time.Time
	TSConfig tsconfig.Options
}

// Outcome is everything one pipeline run produced
type Outcome struct {
	Valid            bool                    `json:"valid"`
	Phase            domain.Phase            `json:"phase"`
	DurationMS       int64                   `json:"durationMs"`
	Fixes            []string                `json:"fixes"`
	Validation       domain.ValidationResult `json:"validation"`
	TypeCheck        *TypeCheckResult        `json:"typeCheck,omitempty"`
	SkippedTypeCheck string                  `json:"skippedTypeCheck,omitempty"` // why tsc did not run
	Record           *monitor.RecordResult   `json:"record,omitempty"`
}

// Run executes the pipeline:
// 1. Check package.json scripts
// 2. Repair (when auto-fix is on) and validate tsconfig files
// 3. Type check with tsc
// 4. Infer the deployment phase
// 5. Record the attempt when a monitor is attached
//
// Failed validation returns the outcome together with a coded error.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	p.setDefaults()
	logger := p.Logger.WithComponent("validate")
	start := p.Now()

	out := &Outcome{
		Fixes:      []string{},
		Validation: *domain.NewValidationResult(),
	}

	// Step 1: package scripts
	if err := CheckPackageScripts(p.Dir, p.Config.Validation.RequiredScripts); err != nil {
		out.Validation.AddError(message(err))
		p.finish(ctx, out, start)
		return out, err
	}

	// Step 2: tsconfig
	if p.Config.Validation.AutoFix {
		fixes, err := tsconfig.Fix(p.Dir, p.TSConfig)
		if err != nil {
			logger.WithError(err).Warn("auto-fix failed")
			out.Validation.AddWarning("Auto-fix failed: " + err.Error())
		}
		for _, f := range fixes {
			logger.Info("applied fix", "fix", f)
		}
		out.Fixes = append(out.Fixes, fixes...)
	}
	tsResult := tsconfig.Validate(p.Dir, p.TSConfig)
	out.Validation.Merge(&tsResult)

	// Step 3: type check
	var runErr error
	switch {
	case p.Config.Validation.SkipTypecheck:
		out.SkippedTypeCheck = "disabled"
	case !out.Validation.IsValid:
		out.SkippedTypeCheck = "tsconfig validation failed"
	default:
		runErr = p.typeCheck(ctx, out)
	}

	// Steps 4 and 5: phase and record
	p.finish(ctx, out, start)

	if runErr != nil {
		return out, runErr
	}
	if tc := out.TypeCheck; tc != nil && !tc.Passed() {
		return out, bmerrors.NewTypeCheckFailedError(len(tc.Messages()))
	}
	if !out.Valid {
		return out, bmerrors.NewValidationFailedError(len(out.Validation.Errors))
	}
	return out, nil
}

func (p *Pipeline) typeCheck(ctx context.Context, out *Outcome) error {
	timeout := p.Config.Validation.TypecheckTimeout
	if timeout <= 0 {
		timeout = DefaultTypeCheckTimeout
	}
	checker := &TypeChecker{
		Runner:  p.Runner,
		Project: p.TSConfig.ProductionFile,
		Timeout: timeout,
	}
	res := checker.Run(ctx, p.Dir)
	out.TypeCheck = res

	command := strings.Join(res.Command, " ")
	switch {
	case res.TimedOut:
		err := bmerrors.NewExecTimeoutError(command, timeout.String())
		out.Validation.AddError(message(err))
		return err
	case res.Err != nil:
		err := bmerrors.Wrap(bmerrors.ErrCodeExecFailed, "type check could not run: "+command, res.Err).
			WithSuggestion("Install dependencies with 'npm ci' so npx can find tsc")
		out.Validation.AddError(message(err))
		return err
	}

	for _, msg := range res.Messages() {
		out.Validation.AddError(msg)
	}
	return nil
}

func (p *Pipeline) finish(ctx context.Context, out *Outcome, start time.Time) {
	elapsed := p.Now().Sub(start)
	out.Valid = out.Validation.IsValid
	out.Phase = p.Phase()
	out.DurationMS = elapsed.Milliseconds()

	if p.Monitor == nil {
		return
	}

	attempt := domain.BuildAttempt{
		Success:  out.Valid,
		Duration: elapsed,
		Phase:    out.Phase,
		Errors:   out.Validation.Errors,
		Warnings: out.Validation.Warnings,
		Metrics:  map[string]float64{},
	}
	if tc := out.TypeCheck; tc != nil {
		attempt.Metrics[monitor.MetricTypeCheckSeconds] = tc.Duration.Seconds()
		attempt.Metrics[monitor.MetricDiagnostics] = float64(len(tc.Diagnostics))
	}

	rec, err := p.Monitor.RecordBuildAttempt(ctx, attempt)
	if err != nil {
		p.Logger.WithError(err).Warn("failed to record validation run")
	}
	out.Record = rec
}

// message drops codes and suggestions so recorded errors stay one line
func message(err error) string {
	var be *bmerrors.BuildmonError
	if errors.As(err, &be) {
		if be.Cause != nil {
			return be.Message + ": " + be.Cause.Error()
		}
		return be.Message
	}
	return err.Error()
}

func (p *Pipeline) setDefaults() {
	if p.Config == nil {
		p.Config = config.Default()
	}
	if p.Logger == nil {
		p.Logger = log.DefaultLogger()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Runner == nil {
		p.Runner = exec.NewLocalRunner()
	}
	if p.Phase == nil {
		p.Phase = detect.NewDetector().Phase
	}
	if p.TSConfig.ProductionFile == "" {
		p.TSConfig = tsconfig.DefaultOptions()
	}
}
