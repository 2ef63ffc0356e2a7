package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/botifyai2-sketch/buildmon/internal/exec"
)

// ScriptHook runs a shell script with the event in its environment.
// BUILDMON_EVENT holds the full event as JSON and every string value in
// the event data is exported as BUILDMON_<KEY>.
type ScriptHook struct {
	name   string
	events []EventType
	script string
	args   []string
	shell  string
	runner exec.Runner
}

// NewScriptHook reads config.script, config.args and config.shell
func NewScriptHook(cfg *Config) (Hook, error) {
	script := cfg.stringOption("script")
	if script == "" {
		return nil, fmt.Errorf("hook %s: config.script is required", cfg.Name)
	}

	h := &ScriptHook{
		name:   cfg.Name,
		events: cfg.Events,
		script: script,
		shell:  "/bin/sh",
		runner: exec.NewLocalRunner(),
	}
	if args, ok := cfg.Config["args"].([]any); ok {
		for _, a := range args {
			if s, ok := a.(string); ok {
				h.args = append(h.args, s)
			}
		}
	}
	if shell := cfg.stringOption("shell"); shell != "" {
		h.shell = shell
	}
	return h, nil
}

func (h *ScriptHook) Name() string            { return h.name }
func (h *ScriptHook) EventTypes() []EventType { return h.events }

func (h *ScriptHook) Execute(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	env := map[string]string{
		"BUILDMON_EVENT":      string(payload),
		"BUILDMON_EVENT_TYPE": string(event.Type),
		"BUILDMON_PROJECT":    event.Project,
	}
	for key, value := range event.Data {
		if s, ok := value.(string); ok {
			env["BUILDMON_"+strings.ToUpper(key)] = s
		}
	}

	res := h.runner.Run(ctx, exec.Step{
		ID:  "hook-" + h.name,
		Cmd: append([]string{h.shell, h.script}, h.args...),
		Env: env,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("script exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// WebhookHook POSTs the event as JSON
type WebhookHook struct {
	name    string
	events  []EventType
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhookHook reads config.url and config.headers
func NewWebhookHook(cfg *Config) (Hook, error) {
	url := cfg.stringOption("url")
	if url == "" {
		return nil, fmt.Errorf("hook %s: config.url is required", cfg.Name)
	}

	h := &WebhookHook{
		name:    cfg.Name,
		events:  cfg.Events,
		url:     url,
		headers: map[string]string{},
		client:  &http.Client{},
	}
	if headers, ok := cfg.Config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				h.headers[k] = s
			}
		}
	}
	return h, nil
}

func (h *WebhookHook) Name() string            { return h.name }
func (h *WebhookHook) EventTypes() []EventType { return h.events }

func (h *WebhookHook) Execute(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return post(ctx, h.client, h.url, payload, h.headers)
}

// SlackHook posts a one-line summary to an incoming webhook
type SlackHook struct {
	name       string
	events     []EventType
	webhookURL string
	channel    string
	username   string
	client     *http.Client
}

// NewSlackHook reads config.webhook_url, config.channel and config.username
func NewSlackHook(cfg *Config) (Hook, error) {
	url := cfg.stringOption("webhook_url")
	if url == "" {
		return nil, fmt.Errorf("hook %s: config.webhook_url is required", cfg.Name)
	}

	h := &SlackHook{
		name:       cfg.Name,
		events:     cfg.Events,
		webhookURL: url,
		channel:    cfg.stringOption("channel"),
		username:   "buildmon",
		client:     &http.Client{},
	}
	if u := cfg.stringOption("username"); u != "" {
		h.username = u
	}
	return h, nil
}

func (h *SlackHook) Name() string            { return h.name }
func (h *SlackHook) EventTypes() []EventType { return h.events }

func (h *SlackHook) Execute(ctx context.Context, event *Event) error {
	msg := map[string]any{
		"text":     SlackMessage(event),
		"username": h.username,
	}
	if h.channel != "" {
		msg["channel"] = h.channel
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}
	return post(ctx, h.client, h.webhookURL, payload, nil)
}

// SlackMessage formats an event for a chat channel
func SlackMessage(event *Event) string {
	switch event.Type {
	case EventAlertRaised:
		return fmt.Sprintf(":rotating_light: [%s] %s (%s)",
			strings.ToUpper(event.GetString("severity")), event.GetString("message"), event.Project)
	case EventBuildFailed:
		return fmt.Sprintf(":x: Build failed in %s phase with %d error(s) (%s)",
			event.GetString("phase"), event.GetInt("errors"), event.Project)
	case EventDriftDetected:
		return fmt.Sprintf(":warning: Configuration drift: %d change(s) since baseline (%s)",
			event.GetInt("changes"), event.Project)
	case EventValidationFailed:
		return fmt.Sprintf(":no_entry: Pre-build validation failed with %d error(s) (%s)",
			event.GetInt("errors"), event.Project)
	default:
		return fmt.Sprintf("Event %s (%s)", event.Type, event.Project)
	}
}

func post(ctx context.Context, client *http.Client, url string, payload []byte, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// RegisterBuiltins registers the script, webhook and slack factories
func RegisterBuiltins(r *Registry) {
	r.RegisterFactory("script", NewScriptHook)
	r.RegisterFactory("webhook", NewWebhookHook)
	r.RegisterFactory("slack", NewSlackHook)
}
