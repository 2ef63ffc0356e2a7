package ux

import (
	"testing"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
)

func TestRenderSeverityNoColor(t *testing.T) {
	styles := NewStyles(true)

	tests := []struct {
		severity domain.Severity
		want     string
	}{
		{domain.SeverityHigh, "🚨 [HIGH]"},
		{domain.SeverityMedium, "⚠️ [MEDIUM]"},
		{domain.SeverityLow, "ℹ️ [LOW]"},
	}

	for _, tt := range tests {
		t.Run(tt.severity.String(), func(t *testing.T) {
			if got := styles.RenderSeverity(tt.severity); got != tt.want {
				t.Errorf("RenderSeverity() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusNoColor(t *testing.T) {
	styles := NewStyles(true)
	for _, status := range []string{"healthy", "warning", "critical"} {
		if got := styles.Status(status); got != status {
			t.Errorf("Status(%q) = %q", status, got)
		}
	}
}
