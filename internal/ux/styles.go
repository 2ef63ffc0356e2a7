package ux

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
)

// Styles holds the lipgloss styles used for terminal output
type Styles struct {
	NoColor bool

	Title   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Muted   lipgloss.Style

	high   lipgloss.Style
	medium lipgloss.Style
	low    lipgloss.Style
}

// NewStyles returns the palette; with noColor every style renders plain text
func NewStyles(noColor bool) *Styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return &Styles{
			NoColor: true,
			Title:   plain,
			Header:  plain,
			Label:   plain,
			Success: plain,
			Failure: plain,
			Muted:   plain,
			high:    plain,
			medium:  plain,
			low:     plain,
		}
	}

	return &Styles{
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		high:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		medium:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		low:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// Severity returns the style for a severity level
func (s *Styles) Severity(sev domain.Severity) lipgloss.Style {
	switch sev {
	case domain.SeverityHigh:
		return s.high
	case domain.SeverityMedium:
		return s.medium
	default:
		return s.low
	}
}

// SeverityMarker returns the console marker for a severity level
func SeverityMarker(sev domain.Severity) string {
	switch sev {
	case domain.SeverityHigh:
		return "🚨"
	case domain.SeverityMedium:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// RenderSeverity renders "<marker> [LEVEL]" in the severity's style
func (s *Styles) RenderSeverity(sev domain.Severity) string {
	label := "[" + upper(sev.String()) + "]"
	return SeverityMarker(sev) + " " + s.Severity(sev).Render(label)
}

// Status renders a health status word
func (s *Styles) Status(status string) string {
	switch status {
	case "healthy":
		return s.Success.Render(status)
	case "warning", "degraded":
		return s.medium.Render(status)
	default:
		return s.Failure.Render(status)
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
