package ux

import (
	"os"
	"path/filepath"
)

// DefaultMonitoringDir is the state directory created next to the project
const DefaultMonitoringDir = ".monitoring"

// PathDefaults resolves the files buildmon reads and writes
type PathDefaults struct {
	ProjectDir    string
	MonitoringDir string
}

// NewPathDefaults creates defaults rooted at projectDir. A relative
// monitoringDir is resolved against projectDir; empty means .monitoring.
func NewPathDefaults(projectDir, monitoringDir string) *PathDefaults {
	if projectDir == "" {
		projectDir = "."
	}
	if monitoringDir == "" {
		monitoringDir = DefaultMonitoringDir
	}
	if !filepath.IsAbs(monitoringDir) {
		monitoringDir = filepath.Join(projectDir, monitoringDir)
	}
	return &PathDefaults{
		ProjectDir:    projectDir,
		MonitoringDir: monitoringDir,
	}
}

// HistoryFile returns the path to build-history.json
func (pd *PathDefaults) HistoryFile() string {
	return filepath.Join(pd.MonitoringDir, "build-history.json")
}

// AlertsFile returns the path to alerts.json
func (pd *PathDefaults) AlertsFile() string {
	return filepath.Join(pd.MonitoringDir, "alerts.json")
}

// BaselineFile returns the path to baseline-config.json
func (pd *PathDefaults) BaselineFile() string {
	return filepath.Join(pd.MonitoringDir, "baseline-config.json")
}

// PatternsFile returns the path to the pattern ledger
func (pd *PathDefaults) PatternsFile() string {
	return filepath.Join(pd.MonitoringDir, "patterns.json")
}

// MetricsFile returns the path to the Prometheus textfile
func (pd *PathDefaults) MetricsFile() string {
	return filepath.Join(pd.MonitoringDir, "metrics.prom")
}

// ConfigFile returns the path to the optional config.yaml
func (pd *PathDefaults) ConfigFile() string {
	return filepath.Join(pd.MonitoringDir, "config.yaml")
}

// PackageJSON returns the path to the project's package.json
func (pd *PathDefaults) PackageJSON() string {
	return filepath.Join(pd.ProjectDir, "package.json")
}

// SuggestNextSteps provides contextual next steps based on what exists
func (pd *PathDefaults) SuggestNextSteps() string {
	if _, err := os.Stat(pd.PackageJSON()); os.IsNotExist(err) {
		return "Run buildmon from a directory containing package.json, or pass --dir"
	}

	if _, err := os.Stat(pd.HistoryFile()); os.IsNotExist(err) {
		return "Record a build with 'buildmon validate --monitor' or 'buildmon monitor record'"
	}

	if _, err := os.Stat(pd.BaselineFile()); os.IsNotExist(err) {
		return "Save a baseline after a good build with 'buildmon baseline save'"
	}

	return "Review build health with 'buildmon monitor report'"
}
