package alert

import (
	"fmt"
	"io"
	"os"

	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

// Notifier is told about every newly raised alert
type Notifier interface {
	Notify(a Alert)
}

// ConsoleNotifier prints alerts with a severity-coded marker
type ConsoleNotifier struct {
	Out    io.Writer
	Styles *ux.Styles
}

// NewConsoleNotifier writes to stderr
func NewConsoleNotifier(noColor bool) *ConsoleNotifier {
	return &ConsoleNotifier{Out: os.Stderr, Styles: ux.NewStyles(noColor)}
}

// Notify implements Notifier
func (n *ConsoleNotifier) Notify(a Alert) {
	styles := n.Styles
	if styles == nil {
		styles = ux.NewStyles(true)
	}
	fmt.Fprintf(n.Out, "%s %s\n", styles.RenderSeverity(a.Severity), a.Message)
}

// NopNotifier discards notifications
type NopNotifier struct{}

// Notify implements Notifier
func (NopNotifier) Notify(Alert) {}
