package monitor

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
	"github.com/botifyai2-sketch/buildmon/internal/history"
	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

// RenderText writes the status summary
func (s *Status) RenderText(w io.Writer, st *ux.Styles) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", st.Title.Render("Build Monitor Status"))
	writeStatistics(&b, s.Statistics, st)

	if s.LastBuild != nil {
		fmt.Fprintf(&b, "%s %s\n", st.Label.Render("Last build:"), describeBuild(*s.LastBuild, st))
		for _, e := range s.LastBuild.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	fmt.Fprintf(&b, "%s %d\n", st.Label.Render("Active alerts:"), s.ActiveAlerts)

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderText writes the recorded build and any raised alerts
func (r *RecordResult) RenderText(w io.Writer, st *ux.Styles) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", st.Label.Render("Recorded:"), describeBuild(r.Record, st))
	fmt.Fprintf(&b, "%s %d builds, %.1f%% successful\n",
		st.Label.Render("History:"), r.Statistics.TotalBuilds, r.Statistics.SuccessRate*100)
	for _, a := range r.Alerts {
		fmt.Fprintf(&b, "%s %s\n", st.RenderSeverity(a.Severity), a.Message)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderText lists patterns by frequency
func (p *PatternReport) RenderText(w io.Writer, st *ux.Styles) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", st.Title.Render(fmt.Sprintf("Error patterns (%d, %d new)", len(p.Patterns), p.NewCount)))
	if len(p.Patterns) == 0 {
		fmt.Fprintf(&b, "  %s\n", st.Muted.Render("no errors recorded"))
	}
	for _, pat := range p.Patterns {
		marker := ""
		if pat.IsNew {
			marker = " " + st.Failure.Render("[NEW]")
		}
		fmt.Fprintf(&b, "\n  %s %s%s\n", st.Header.Render(fmt.Sprintf("%dx", pat.Count)), pat.Pattern, marker)
		fmt.Fprintf(&b, "    %s %s  %s %s\n",
			st.Label.Render("id:"), pat.ID,
			st.Label.Render("first seen:"), pat.FirstSeen.Format(time.RFC3339))
		for _, ex := range pat.Examples {
			fmt.Fprintf(&b, "    %s %s\n", st.Muted.Render("e.g."), ex)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeStatistics(b *strings.Builder, s history.Statistics, st *ux.Styles) {
	fmt.Fprintf(b, "%s %d total, %d successful, %d failed\n",
		st.Label.Render("Builds:"), s.TotalBuilds, s.SuccessfulBuilds, s.FailedBuilds)
	fmt.Fprintf(b, "%s %.1f%%\n", st.Label.Render("Success rate:"), s.SuccessRate*100)
	if s.AverageDuration > 0 {
		avg := time.Duration(s.AverageDuration) * time.Millisecond
		fmt.Fprintf(b, "%s %s\n", st.Label.Render("Average duration:"), avg.Round(100*time.Millisecond))
	}
	if s.LastSuccessfulBuild != nil {
		fmt.Fprintf(b, "%s %s\n", st.Label.Render("Last success:"), s.LastSuccessfulBuild.Format(time.RFC3339))
	}
	if s.LastFailedBuild != nil {
		fmt.Fprintf(b, "%s %s\n", st.Label.Render("Last failure:"), s.LastFailedBuild.Format(time.RFC3339))
	}
}

func describeBuild(r domain.BuildRecord, st *ux.Styles) string {
	outcome := st.Success.Render("success")
	if !r.Success {
		outcome = st.Failure.Render("failure")
	}
	return fmt.Sprintf("%s in %s (%s phase) at %s",
		outcome, r.DurationValue().Round(100*time.Millisecond), r.Phase, r.Timestamp.Format(time.RFC3339))
}
