package validate

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

// RenderText writes the validation summary
func (o *Outcome) RenderText(w io.Writer, st *ux.Styles) error {
	var b strings.Builder

	verdict := st.Success.Render("passed")
	if !o.Valid {
		verdict = st.Failure.Render("failed")
	}
	fmt.Fprintf(&b, "%s %s (%s phase, %s)\n", st.Title.Render("Build validation"), verdict,
		o.Phase, (time.Duration(o.DurationMS) * time.Millisecond).Round(100*time.Millisecond))

	writeList(&b, st, "Fixes applied:", o.Fixes)
	writeList(&b, st, "Errors:", o.Validation.Errors)
	writeList(&b, st, "Warnings:", o.Validation.Warnings)
	writeList(&b, st, "Suggestions:", o.Validation.Suggestions)

	switch {
	case o.SkippedTypeCheck != "":
		fmt.Fprintf(&b, "%s skipped (%s)\n", st.Label.Render("Type check:"), o.SkippedTypeCheck)
	case o.TypeCheck != nil:
		fmt.Fprintf(&b, "%s %d diagnostic(s) in %s\n", st.Label.Render("Type check:"),
			len(o.TypeCheck.Diagnostics), o.TypeCheck.Duration.Round(100*time.Millisecond))
	}

	if o.Record != nil {
		fmt.Fprintf(&b, "%s %d builds, %.1f%% successful\n",
			st.Label.Render("Recorded:"), o.Record.Statistics.TotalBuilds, o.Record.Statistics.SuccessRate*100)
		for _, a := range o.Record.Alerts {
			fmt.Fprintf(&b, "%s %s\n", st.RenderSeverity(a.Severity), a.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTroubleshooting writes the remediation block shown after a failure
func WriteTroubleshooting(w io.Writer, st *ux.Styles) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", st.Header.Render("Troubleshooting:"))
	for i, step := range Troubleshooting {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, st *ux.Styles, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n", st.Label.Render(label))
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
