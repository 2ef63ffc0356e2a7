package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/botifyai2-sketch/buildmon/internal/errors"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.Format = format
	cfg.Output = &buf
	return New(cfg), &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelWarn},
		{"verbose", LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"console", FormatText},
		{"", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings("debug", "json", "1.2.3")
	if cfg.Level != LevelDebug {
		t.Errorf("Level = %v", cfg.Level)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("Format = %v", cfg.Format)
	}
	if cfg.ServiceVersion != "1.2.3" {
		t.Errorf("ServiceVersion = %q", cfg.ServiceVersion)
	}
	if cfg.ServiceName != "buildmon" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if !cfg.AddSource {
		t.Error("debug settings should add source locations")
	}
	if FromSettings("warn", "text", "").AddSource {
		t.Error("AddSource should be off below debug")
	}
}

func TestLogLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatText)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn should be filtered: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("warn and error should be logged: %s", out)
	}
}

func TestJSONFormatOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.Info("recorded build", "success", true, "duration_ms", 1200)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "recorded build" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["service"] != "buildmon" {
		t.Errorf("service = %v", entry["service"])
	}
	if entry["success"] != true {
		t.Errorf("success = %v", entry["success"])
	}
}

func TestWithComponent(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)

	logger.WithComponent("history").Info("loaded")

	if !strings.Contains(buf.String(), "component=history") {
		t.Errorf("expected component attribute, got: %s", buf.String())
	}
}

func TestWithError(t *testing.T) {
	t.Run("coded error", func(t *testing.T) {
		logger, buf := newBufferLogger(LevelInfo, FormatJSON)

		err := errors.NewScriptsMissingError([]string{"build"})
		logger.WithError(fmt.Errorf("pipeline: %w", err)).Error("validation aborted")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if entry["error_code"] != string(errors.ErrCodeScriptsMissing) {
			t.Errorf("error_code = %v", entry["error_code"])
		}
		if _, ok := entry["suggestions"]; !ok {
			t.Error("expected suggestions attribute")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		logger, buf := newBufferLogger(LevelInfo, FormatText)

		logger.WithError(fmt.Errorf("disk full")).Warn("save failed")

		if !strings.Contains(buf.String(), "disk full") {
			t.Errorf("expected error text, got: %s", buf.String())
		}
	})

	t.Run("nil error", func(t *testing.T) {
		logger, _ := newBufferLogger(LevelInfo, FormatText)
		if logger.WithError(nil) != logger {
			t.Error("WithError(nil) should return the same logger")
		}
	})
}

func TestLogError(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.LogError(context.Background(), "operation failed", nil)
	if buf.Len() != 0 {
		t.Errorf("nil error should not log, got: %s", buf.String())
	}

	cause := fmt.Errorf("permission denied")
	logger.LogError(context.Background(), "operation failed", errors.Wrap(errors.ErrCodeHistorySave, "saving history", cause))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["cause"] != "permission denied" {
		t.Errorf("cause = %v", entry["cause"])
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestEnabled(t *testing.T) {
	logger, _ := newBufferLogger(LevelInfo, FormatText)
	ctx := context.Background()

	if logger.Enabled(ctx, LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	if !logger.Enabled(ctx, LevelError) {
		t.Error("error should be enabled at info level")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("goes nowhere")
	if logger.Config().Output == nil {
		t.Error("discard logger should have a writer")
	}
}

func TestDefaultLogger(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	defaultLogger = nil
	if DefaultLogger() == nil {
		t.Fatal("DefaultLogger should lazily create a logger")
	}

	custom := Discard()
	SetDefaultLogger(custom)
	if DefaultLogger() != custom {
		t.Error("DefaultLogger should return the configured logger")
	}
	if OrDefault(nil) != custom {
		t.Error("OrDefault(nil) should return the default logger")
	}
	other := Discard()
	if OrDefault(other) != other {
		t.Error("OrDefault should prefer the given logger")
	}
}
