package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/wellsgz/reach/internal/stats"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorDanger    = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorBg        = lipgloss.Color("#1F2937") // Dark background
	ColorBgLight   = lipgloss.Color("#374151") // Lighter background
	ColorText      = lipgloss.Color("#F9FAFB") // Light text
)

// Base styles
var (
	// Title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorPrimary).
			Padding(0, 1)

	// Subtitle style
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	// Section header style
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	// Muted label style for the info rows
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Status styles
	MonitoringStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	PausedStyle     = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)

	// Latency tier styles
	LatencyGoodStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	LatencyWarnStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	LatencyBadStyle  = lipgloss.NewStyle().Foreground(ColorDanger)
	LossStyle        = lipgloss.NewStyle().Foreground(ColorDanger)
	SuccessStyle     = lipgloss.NewStyle().Foreground(ColorSuccess)

	// Alert line style
	AlertStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	// Help style
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Help key style
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	// Error style
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)
)

// StatusStyle returns the style for the monitoring state
func StatusStyle(monitoring bool) lipgloss.Style {
	if monitoring {
		return MonitoringStyle
	}
	return PausedStyle
}

// LatencyStyle returns the appropriate style based on latency value
func LatencyStyle(ms float64) lipgloss.Style {
	switch {
	case ms < 0:
		return LossStyle
	case ms < 50:
		return LatencyGoodStyle
	case ms < 200:
		return LatencyWarnStyle
	default:
		return LatencyBadStyle
	}
}

// LossPercentStyle returns the appropriate style based on loss percentage
func LossPercentStyle(pct float64) lipgloss.Style {
	switch {
	case pct == 0:
		return SuccessStyle
	case pct < 5:
		return LatencyWarnStyle
	default:
		return LossStyle
	}
}

// QualityStyle returns the style for a quality tier
func QualityStyle(q stats.Quality) lipgloss.Style {
	switch q {
	case stats.QualityExcellent:
		return lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	case stats.QualityGood:
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	case stats.QualityFair:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case stats.QualityPoor:
		return lipgloss.NewStyle().Foreground(ColorDanger).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(ColorMuted)
	}
}
