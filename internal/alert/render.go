package alert

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

// RenderText lists active alerts, newest first, then resolved ones
func (s *State) RenderText(w io.Writer, st *ux.Styles) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", st.Title.Render(fmt.Sprintf("Active alerts (%d)", len(s.Active))))
	if len(s.Active) == 0 {
		fmt.Fprintf(&b, "  %s\n", st.Muted.Render("none"))
	}
	for i := len(s.Active) - 1; i >= 0; i-- {
		writeAlert(&b, s.Active[i], st)
	}

	if len(s.Resolved) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.Header.Render(fmt.Sprintf("Resolved (%d)", len(s.Resolved))))
		for i := len(s.Resolved) - 1; i >= 0; i-- {
			a := s.Resolved[i]
			resolved := ""
			if a.ResolvedAt != nil {
				resolved = " resolved " + a.ResolvedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(&b, "  %s %s%s\n", st.Muted.Render(a.ID), a.Message, st.Muted.Render(resolved))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeAlert(b *strings.Builder, a Alert, st *ux.Styles) {
	fmt.Fprintf(b, "  %s %s\n", st.RenderSeverity(a.Severity), a.Message)
	fmt.Fprintf(b, "    %s %s  %s %s  %s %s\n",
		st.Label.Render("id:"), a.ID,
		st.Label.Render("type:"), a.Kind,
		st.Label.Render("at:"), a.Timestamp.Format(time.RFC3339))
}
