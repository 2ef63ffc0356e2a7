package hooks

import (
	"context"

	"github.com/botifyai2-sketch/buildmon/internal/alert"
)

// AlertNotifier forwards raised alerts to Next and then to every
// alert_raised hook
type AlertNotifier struct {
	Ctx      context.Context
	Next     alert.Notifier
	Registry *Registry
	Project  string
}

// Notify implements alert.Notifier
func (n *AlertNotifier) Notify(a alert.Alert) {
	if n.Next != nil {
		n.Next.Notify(a)
	}
	if n.Registry == nil || !n.Registry.HasHooksFor(EventAlertRaised) {
		return
	}

	ctx := n.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	n.Registry.Trigger(ctx, NewEvent(EventAlertRaised, n.Project, map[string]any{
		"id":       a.ID,
		"type":     string(a.Kind),
		"severity": a.Severity.String(),
		"message":  a.Message,
		"alert":    a,
	}))
}
