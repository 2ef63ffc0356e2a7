package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/botifyai2-sketch/buildmon/internal/detect"
	"github.com/botifyai2-sketch/buildmon/internal/domain"
	"github.com/botifyai2-sketch/buildmon/internal/health"
	"github.com/botifyai2-sketch/buildmon/internal/monitor"
	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the project layout, environment and toolchain",
	Long: `Run diagnostics before relying on buildmon in CI.

Checks include:
  - package.json, tsconfig.json and tsconfig.build.json are present
  - the monitoring directory exists
  - node, npm, git and tsc are installed at supported versions
  - the CI provider and the deployment phase implied by the feature flags

Examples:
  buildmon doctor --format text
  buildmon doctor --format json
`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

// DoctorReport is the outcome of every doctor check
type DoctorReport struct {
	Project     []DoctorCheck      `json:"project"`
	Environment domain.Environment `json:"environment"`
	CI          detect.CIInfo      `json:"ci"`
	Phase       domain.Phase       `json:"phase"`
	Flags       map[string]bool    `json:"flags"`
	Probes      []health.Probe     `json:"probes"`
	Issues      []string           `json:"issues"`
	Warnings    []string           `json:"warnings"`
	NextSteps   []string           `json:"nextSteps"`
	Healthy     bool               `json:"healthy"`
}

// DoctorCheck is one file or directory check
type DoctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // ok, warning, missing
	Message string `json:"message"`
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	report := buildDoctorReport(cmd.Context(), cc.Monitor())
	if err := cc.Output(report); err != nil {
		return err
	}
	if !report.Healthy {
		return fmt.Errorf("doctor found %d issue(s)", len(report.Issues))
	}
	return nil
}

func buildDoctorReport(ctx context.Context, mon *monitor.Monitor) *DoctorReport {
	paths := mon.Paths
	report := &DoctorReport{
		Environment: mon.Env.Environment(),
		CI:          mon.Env.CI(),
		Phase:       mon.Env.Phase(),
		Flags:       mon.Env.Flags(),
		Issues:      []string{},
		Warnings:    []string{},
		NextSteps:   []string{},
	}

	required := []struct {
		name string
		path string
	}{
		{"package.json", paths.PackageJSON()},
		{"tsconfig.json", filepath.Join(paths.ProjectDir, "tsconfig.json")},
		{"tsconfig.build.json", filepath.Join(paths.ProjectDir, "tsconfig.build.json")},
	}
	for _, r := range required {
		check := fileCheck(r.name, r.path)
		if check.Status != "ok" {
			report.Issues = append(report.Issues, check.Message)
		}
		report.Project = append(report.Project, check)
	}

	monitoring := fileCheck("monitoring directory", paths.MonitoringDir)
	if monitoring.Status != "ok" {
		monitoring.Status = "warning"
		report.Warnings = append(report.Warnings, "No builds recorded yet")
	}
	report.Project = append(report.Project, monitoring)

	if report.Phase == domain.PhaseUnknown {
		report.Warnings = append(report.Warnings, "No NEXT_PUBLIC_ENABLE_* flags set; the deployment phase is unknown")
	}

	report.Probes = mon.Probes(ctx)
	for _, p := range report.Probes {
		switch p.Status {
		case health.StatusUnhealthy:
			report.Issues = append(report.Issues, fmt.Sprintf("%s: %s", p.Name, p.Message))
		case health.StatusDegraded:
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", p.Name, p.Message))
		}
	}

	report.NextSteps = append(report.NextSteps, paths.SuggestNextSteps())
	report.Healthy = len(report.Issues) == 0
	return report
}

func fileCheck(name, path string) DoctorCheck {
	if _, err := os.Stat(path); err != nil {
		return DoctorCheck{Name: name, Status: "missing", Message: fmt.Sprintf("%s not found at %s", name, path)}
	}
	return DoctorCheck{Name: name, Status: "ok", Message: path}
}

// RenderText writes the doctor report
func (r *DoctorReport) RenderText(w io.Writer, st *ux.Styles) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", st.Title.Render("buildmon doctor"))

	fmt.Fprintf(&b, "%s\n", st.Header.Render("Project:"))
	for _, c := range r.Project {
		fmt.Fprintf(&b, "  %s %s: %s\n", checkIcon(c.Status, st), c.Name, c.Message)
	}

	fmt.Fprintf(&b, "\n%s\n", st.Header.Render("Environment:"))
	fmt.Fprintf(&b, "  %s %s\n", st.Label.Render("Platform:"), r.Environment.Platform)
	if r.CI.Detected {
		fmt.Fprintf(&b, "  %s %s\n", st.Label.Render("CI:"), r.CI.Name)
	}
	fmt.Fprintf(&b, "  %s %s\n", st.Label.Render("Phase:"), r.Phase)

	fmt.Fprintf(&b, "\n%s\n", st.Header.Render("Toolchain:"))
	for _, p := range r.Probes {
		fmt.Fprintf(&b, "  %s %s: %s\n", st.Status(string(p.Status)), p.Name, p.Message)
	}

	writeBullets(&b, st, "Issues:", r.Issues)
	writeBullets(&b, st, "Warnings:", r.Warnings)

	if len(r.NextSteps) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.Header.Render("Next steps:"))
		for i, step := range r.NextSteps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
		}
	}

	verdict := st.Success.Render("Project is ready")
	if !r.Healthy {
		verdict = st.Failure.Render("Project has issues that need attention")
	}
	fmt.Fprintf(&b, "\n%s\n", verdict)

	_, err := io.WriteString(w, b.String())
	return err
}

func checkIcon(status string, st *ux.Styles) string {
	switch status {
	case "ok":
		return st.Success.Render("✓")
	case "warning":
		return st.Status("warning")
	default:
		return st.Failure.Render("✗")
	}
}

func writeBullets(b *strings.Builder, st *ux.Styles, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", st.Header.Render(title))
	for _, item := range items {
		fmt.Fprintf(b, "  • %s\n", item)
	}
}
