// Package hooks delivers build monitor events to user-configured scripts,
// webhooks and Slack channels.
package hooks

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// EventType names a monitor event hooks can subscribe to
type EventType string

const (
	EventAlertRaised      EventType = "alert_raised"
	EventBuildFailed      EventType = "build_failed"
	EventDriftDetected    EventType = "drift_detected"
	EventValidationFailed EventType = "validation_failed"
)

// ValidEventTypes lists every event a hook may name
var ValidEventTypes = []EventType{
	EventAlertRaised,
	EventBuildFailed,
	EventDriftDetected,
	EventValidationFailed,
}

// Event is the payload handed to a hook
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Project   string         `json:"project"`
	Data      map[string]any `json:"data"`
}

// NewEvent stamps an event with the current time
func NewEvent(eventType EventType, project string, data map[string]any) *Event {
	if data == nil {
		data = map[string]any{}
	}
	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Project:   project,
		Data:      data,
	}
}

// GetString returns a string value from the event data
func (e *Event) GetString(key string) string {
	if s, ok := e.Data[key].(string); ok {
		return s
	}
	return ""
}

// GetInt returns an integer value from the event data
func (e *Event) GetInt(key string) int {
	switch v := e.Data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Hook receives events of the types it subscribes to
type Hook interface {
	Name() string
	EventTypes() []EventType
	Execute(ctx context.Context, event *Event) error
}

// Config declares one hook in the buildmon config file:
//
//	hooks:
//	  - name: notify-team
//	    type: slack
//	    events: [alert_raised, drift_detected]
//	    timeout: 10s
//	    config:
//	      webhook_url: https://hooks.slack.com/services/...
type Config struct {
	Name    string         `mapstructure:"name" yaml:"name" json:"name"`
	Type    string         `mapstructure:"type" yaml:"type" json:"type"`
	Events  []EventType    `mapstructure:"events" yaml:"events" json:"events"`
	Enabled *bool          `mapstructure:"enabled" yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Timeout time.Duration  `mapstructure:"timeout" yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Config  map[string]any `mapstructure:"config" yaml:"config,omitempty" json:"config,omitempty"`
}

// IsEnabled treats an unset flag as enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Validate checks the name, event list and timeout
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("hook name is required")
	}
	if c.Type == "" {
		return fmt.Errorf("hook %s: type is required", c.Name)
	}
	if len(c.Events) == 0 {
		return fmt.Errorf("hook %s: at least one event is required", c.Name)
	}
	for _, e := range c.Events {
		if !slices.Contains(ValidEventTypes, e) {
			return fmt.Errorf("hook %s: unknown event %q", c.Name, e)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("hook %s: timeout must not be negative", c.Name)
	}
	return nil
}

func (c *Config) stringOption(key string) string {
	s, _ := c.Config[key].(string)
	return s
}

// ExecutionResult is the outcome of one hook run
type ExecutionResult struct {
	HookName  string        `json:"hookName"`
	EventType EventType     `json:"eventType"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Factory builds a hook from its configuration
type Factory func(cfg *Config) (Hook, error)

// DefaultTimeout bounds a hook run when its config sets none
const DefaultTimeout = 30 * time.Second
