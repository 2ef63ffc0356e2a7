package drift

import (
	"github.com/botifyai2-sketch/buildmon/internal/domain"
)

// tracked lists the snapshot fields in comparison order with the
// severity a change to each carries
var tracked = []struct {
	file     string
	severity domain.Severity
	message  string
	hash     func(domain.ConfigSnapshot) *string
}{
	{
		file:     "package.json",
		severity: domain.SeverityHigh,
		message:  "Package manifest changed since the last successful build",
		hash:     func(s domain.ConfigSnapshot) *string { return s.PackageJSONHash },
	},
	{
		file:     "tsconfig.json",
		severity: domain.SeverityMedium,
		message:  "Base TypeScript configuration changed since the last successful build",
		hash:     func(s domain.ConfigSnapshot) *string { return s.TSConfigHash },
	},
	{
		file:     "tsconfig.build.json",
		severity: domain.SeverityHigh,
		message:  "Production TypeScript configuration changed since the last successful build",
		hash:     func(s domain.ConfigSnapshot) *string { return s.TSConfigBuildHash },
	},
	{
		file:     "next.config",
		severity: domain.SeverityMedium,
		message:  "Framework configuration changed since the last successful build",
		hash:     func(s domain.ConfigSnapshot) *string { return s.FrameworkConfigHash },
	},
	{
		file:     "dependencies",
		severity: domain.SeverityMedium,
		message:  "Dependencies changed since the last successful build",
		hash:     func(s domain.ConfigSnapshot) *string { return s.DependenciesHash },
	},
	{
		file:     "environment variables",
		severity: domain.SeverityLow,
		message:  "Environment variables changed since the last successful build",
		hash:     func(s domain.ConfigSnapshot) *string { return s.EnvVarsHash },
	},
}

// Detector finds drift against the newest successful build
type Detector struct{}

// NewDetector creates a detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect compares current against the newest successful build in builds
func (d *Detector) Detect(builds []domain.BuildRecord, current domain.ConfigSnapshot) Report {
	return Detect(builds, current)
}

// Detect compares current against the configuration of the most recent
// successful build. Without one there is no drift.
func Detect(builds []domain.BuildRecord, current domain.ConfigSnapshot) Report {
	for i := len(builds) - 1; i >= 0; i-- {
		if builds[i].Success {
			return CompareSnapshots(builds[i].Configuration, current)
		}
	}
	return Report{
		HasDrift: false,
		Changes:  []Change{},
		Reason:   NoBaselineReason,
	}
}

// CompareSnapshots reports every tracked field that differs between
// baseline and current. The aggregate severity is the highest change.
func CompareSnapshots(baseline, current domain.ConfigSnapshot) Report {
	report := Report{Changes: []Change{}}
	if !baseline.Timestamp.IsZero() {
		ts := baseline.Timestamp
		report.BaselineTimestamp = &ts
	}

	for _, f := range tracked {
		if sameHash(f.hash(baseline), f.hash(current)) {
			continue
		}
		report.Changes = append(report.Changes, Change{
			File:     f.file,
			Severity: f.severity,
			Message:  f.message,
		})
		report.Severity = report.Severity.Max(f.severity)
	}

	report.HasDrift = len(report.Changes) > 0
	return report
}

func sameHash(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
