package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters from lowest to highest
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Colors for sparklines
var (
	sparkNormalColor = lipgloss.Color("#06B6D4") // Cyan
	sparkOkColor     = lipgloss.Color("#10B981") // Green
	sparkWarnColor   = lipgloss.Color("#F59E0B") // Yellow
	sparkLossColor   = lipgloss.Color("#EF4444") // Red
)

// Sparkline generates a sparkline string from latency values.
// Values below zero are lost probes and render as × markers.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	// Take last 'width' values
	if len(values) > width {
		values = values[len(values)-width:]
	}

	// Scale against the replied values only
	lo, hi := -1.0, -1.0
	for _, v := range values {
		if v >= 0 {
			if lo < 0 || v < lo {
				lo = v
			}
			if hi < 0 || v > hi {
				hi = v
			}
		}
	}

	lossStyle := lipgloss.NewStyle().Foreground(sparkLossColor)

	// Nothing but losses: a row of markers
	if lo < 0 {
		return lossStyle.Render(strings.Repeat("×", len(values))) + strings.Repeat(" ", width-len(values))
	}

	// Ensure we have a range to scale
	if hi == lo {
		hi = lo + 1
	}

	normalStyle := lipgloss.NewStyle().Foreground(sparkNormalColor)

	var result strings.Builder
	for _, v := range values {
		if v < 0 {
			result.WriteString(lossStyle.Render("×"))
			continue
		}
		idx := int((v - lo) / (hi - lo) * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		result.WriteString(normalStyle.Render(string(sparkBlocks[idx])))
	}

	if padding := width - len(values); padding > 0 {
		result.WriteString(strings.Repeat(" ", padding))
	}
	return result.String()
}

// LossSparkline renders loss percentages on a fixed 0 to 100 scale.
// Columns at or above 10% loss go red, 2% and up yellow, the rest
// green, mirroring the quality and alert thresholds.
func LossSparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	okStyle := lipgloss.NewStyle().Foreground(sparkOkColor)
	warnStyle := lipgloss.NewStyle().Foreground(sparkWarnColor)
	badStyle := lipgloss.NewStyle().Foreground(sparkLossColor)

	var result strings.Builder
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		idx := int(v / 100 * 7)
		if idx > 7 {
			idx = 7
		}

		style := okStyle
		switch {
		case v >= 10:
			style = badStyle
		case v >= 2:
			style = warnStyle
		}
		result.WriteString(style.Render(string(sparkBlocks[idx])))
	}

	if padding := width - len(values); padding > 0 {
		result.WriteString(strings.Repeat(" ", padding))
	}
	return result.String()
}
