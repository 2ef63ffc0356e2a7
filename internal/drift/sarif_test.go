package drift

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
)

func TestToSARIF(t *testing.T) {
	tests := []struct {
		name            string
		report          *Report
		wantResultCount int
	}{
		{
			name:            "empty report",
			report:          &Report{Changes: []Change{}},
			wantResultCount: 0,
		},
		{
			name: "single file change",
			report: &Report{
				HasDrift: true,
				Changes: []Change{
					{File: "tsconfig.build.json", Severity: domain.SeverityHigh, Message: "changed"},
				},
				Severity: domain.SeverityHigh,
			},
			wantResultCount: 1,
		},
		{
			name: "mixed changes",
			report: &Report{
				HasDrift: true,
				Changes: []Change{
					{File: "package.json", Severity: domain.SeverityHigh, Message: "a"},
					{File: "dependencies", Severity: domain.SeverityMedium, Message: "b"},
					{File: "environment variables", Severity: domain.SeverityLow, Message: "c"},
				},
				Severity: domain.SeverityHigh,
			},
			wantResultCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sarif := tt.report.ToSARIF("1.0.0")

			if sarif.Version != "2.1.0" {
				t.Errorf("Version = %v, want 2.1.0", sarif.Version)
			}
			if len(sarif.Runs) != 1 {
				t.Fatalf("Runs count = %d, want 1", len(sarif.Runs))
			}
			run := sarif.Runs[0]
			if run.Tool.Driver.Name != "buildmon" {
				t.Errorf("Driver name = %v, want buildmon", run.Tool.Driver.Name)
			}
			if run.Tool.Driver.SemanticVersion != "1.0.0" {
				t.Errorf("SemanticVersion = %v", run.Tool.Driver.SemanticVersion)
			}
			if len(run.Results) != tt.wantResultCount {
				t.Errorf("Results count = %d, want %d", len(run.Results), tt.wantResultCount)
			}
		})
	}
}

func TestToSARIF_LevelsAndLocations(t *testing.T) {
	report := &Report{
		Changes: []Change{
			{File: "package.json", Severity: domain.SeverityHigh, Message: "a"},
			{File: "next.config", Severity: domain.SeverityMedium, Message: "b"},
			{File: "environment variables", Severity: domain.SeverityLow, Message: "c"},
		},
	}

	results := report.ToSARIF("").Runs[0].Results

	wantLevels := []string{"error", "warning", "note"}
	for i, want := range wantLevels {
		if results[i].Level != want {
			t.Errorf("result %d level = %q, want %q", i, results[i].Level, want)
		}
	}

	if results[0].RuleID != "config-drift/package-json" {
		t.Errorf("RuleID = %q", results[0].RuleID)
	}
	if results[2].RuleID != "config-drift/environment-variables" {
		t.Errorf("RuleID = %q", results[2].RuleID)
	}
	if len(results[0].Locations) != 1 || results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI != "package.json" {
		t.Errorf("package.json change should carry its location: %+v", results[0].Locations)
	}
	if len(results[1].Locations) != 0 || len(results[2].Locations) != 0 {
		t.Error("non-file changes should carry no location")
	}
}

func TestSaveSARIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drift.sarif")
	report := &Report{Changes: []Change{{File: "package.json", Severity: domain.SeverityHigh, Message: "m"}}}

	if err := SaveSARIF(report.ToSARIF("dev"), path); err != nil {
		t.Fatalf("SaveSARIF() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded SARIF
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Runs[0].Results) != 1 {
		t.Errorf("decoded results = %d", len(decoded.Runs[0].Results))
	}
}

func TestSaveSARIF_InvalidPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "drift.sarif")
	if err := SaveSARIF((&Report{}).ToSARIF("dev"), path); err == nil {
		t.Error("expected error for unwritable path")
	}
}
