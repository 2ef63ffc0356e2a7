package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Environment describes where a build ran
type Environment struct {
	Platform string `json:"platform"`
	CI       bool   `json:"ci"`
	Vercel   bool   `json:"vercel"`
}

// ConfigSnapshot fingerprints the configuration a build ran with.
// A nil hash means the file was absent.
type ConfigSnapshot struct {
	Timestamp           time.Time `json:"timestamp"`
	PackageJSONHash     *string   `json:"packageJsonHash"`
	TSConfigHash        *string   `json:"tsConfigHash"`
	TSConfigBuildHash   *string   `json:"tsConfigBuildHash"`
	FrameworkConfigHash *string   `json:"frameworkConfigHash"`
	EnvVarsHash         *string   `json:"envVarsHash"`
	DependenciesHash    *string   `json:"dependenciesHash"`
}

// BuildRecord is one entry of the build history. Records are never
// mutated after they are appended.
//
// Metrics holds free-form values; records written by other tools may
// carry nested objects there, which are kept as decoded.
type BuildRecord struct {
	Timestamp     time.Time      `json:"timestamp"`
	Success       bool           `json:"success"`
	Duration      int64          `json:"duration"` // milliseconds
	Phase         Phase          `json:"phase"`
	Errors        Messages       `json:"errors"`
	Warnings      Messages       `json:"warnings"`
	Environment   Environment    `json:"environment"`
	Configuration ConfigSnapshot `json:"configuration"`
	Metrics       map[string]any `json:"metrics,omitempty"`
}

// UnmarshalJSON accepts fractional durations, rounding them to the
// nearest millisecond
func (r *BuildRecord) UnmarshalJSON(data []byte) error {
	type plain BuildRecord
	aux := struct {
		*plain
		Duration *float64 `json:"duration"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Duration = 0
	if aux.Duration != nil {
		r.Duration = int64(math.Round(*aux.Duration))
	}
	return nil
}

// DurationValue returns the build duration as a time.Duration
func (r BuildRecord) DurationValue() time.Duration {
	return time.Duration(r.Duration) * time.Millisecond
}

// Metric returns the numeric metric stored under key
func (r BuildRecord) Metric(key string) (float64, bool) {
	switch v := r.Metrics[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// MetricValues converts numeric metrics for storage in a BuildRecord
func MetricValues(m map[string]float64) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Messages is a list of error or warning strings. When decoding, entries
// persisted as objects are unwrapped once through their "message" field.
type Messages []string

// UnmarshalJSON implements json.Unmarshaler
func (m *Messages) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*m = nil
		return nil
	}

	out := make(Messages, 0, len(raw))
	for _, item := range raw {
		out = append(out, messageText(item))
	}
	*m = out
	return nil
}

func messageText(item json.RawMessage) string {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return s
	}

	var obj struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(item, &obj); err == nil && len(obj.Message) > 0 {
		if err := json.Unmarshal(obj.Message, &s); err == nil {
			return s
		}
		return string(obj.Message)
	}

	return string(item)
}

// BuildAttempt is the outcome of a build or validation run before it is
// stamped with environment and configuration and stored.
type BuildAttempt struct {
	Success  bool
	Duration time.Duration
	Phase    Phase
	Errors   []string
	Warnings []string
	Metrics  map[string]float64
}
