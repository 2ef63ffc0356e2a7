package drift

import (
	"fmt"
	"io"
	"strings"

	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

// RenderText writes the drift report for a terminal
func (r *Report) RenderText(w io.Writer, s *ux.Styles) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", s.Title.Render("Configuration Drift"))
	if r.BaselineTimestamp != nil {
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Baseline:"), r.BaselineTimestamp.Format("2006-01-02 15:04:05 MST"))
	}

	if !r.HasDrift {
		msg := "No drift detected"
		if r.Reason != "" {
			msg += " (" + r.Reason + ")"
		}
		fmt.Fprintf(&b, "%s\n", s.Success.Render(msg))
		_, err := io.WriteString(w, b.String())
		return err
	}

	sum := r.Summary()
	fmt.Fprintf(&b, "%s %s  %d change(s): %d high, %d medium, %d low\n",
		s.Label.Render("Severity:"), s.RenderSeverity(r.Severity), sum.TotalChanges, sum.High, sum.Medium, sum.Low)
	for _, c := range r.Changes {
		fmt.Fprintf(&b, "  %s %s: %s\n", s.RenderSeverity(c.Severity), c.File, c.Message)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
