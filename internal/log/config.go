package log

import (
	"io"
	"os"
	"strings"
)

// Format represents the output format for logs
type Format int

const (
	// FormatText outputs logs in human-readable key=value form
	FormatText Format = iota
	// FormatJSON outputs logs as JSON lines
	FormatJSON
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	default:
		return "text"
	}
}

// ParseFormat parses a string into a Format. Unknown values map to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// Config holds configuration for the logger
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Format is the output format (JSON or Text)
	Format Format

	// Output is where logs are written. Defaults to stderr so command
	// output on stdout stays machine readable.
	Output io.Writer

	// AddSource includes source file and line number in logs
	AddSource bool

	// ServiceName is attached to every record
	ServiceName string

	// ServiceVersion is attached to every record
	ServiceVersion string
}

// DefaultConfig logs warnings and above as text to stderr
func DefaultConfig() Config {
	return Config{
		Level:          LevelWarn,
		Format:         FormatText,
		Output:         os.Stderr,
		ServiceName:    "buildmon",
		ServiceVersion: "dev",
	}
}

// FromSettings builds a config from the string settings of the
// configuration file or command-line flags. Debug logging adds source
// locations.
func FromSettings(level, format, version string) Config {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	cfg.AddSource = cfg.Level == LevelDebug
	cfg.Format = ParseFormat(format)
	if version != "" {
		cfg.ServiceVersion = version
	}
	return cfg
}
