package components

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// GraphConfig configures graph rendering
type GraphConfig struct {
	Width      int // Total width including Y-axis labels
	Height     int // Plot height in rows, excluding the loss and axis rows
	YAxisWidth int // Width of Y-axis label area
}

// DefaultGraphConfig returns sensible defaults
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		Width:      60,
		Height:     8,
		YAxisWidth: 8,
	}
}

// Graph colors
var (
	graphAxisStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	graphLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	graphLossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// graphColumn is one plotted bucket of consecutive samples
type graphColumn struct {
	lo, hi  float64 // RTT span of the replies, -1 when the bucket has none
	hasLoss bool
}

// Graph plots latency values left to right, one column per bucket of
// consecutive samples. Each column spans its bucket's min to max RTT;
// buckets holding lost probes get a marker row under the plot. Values
// below zero are losses.
func Graph(values []float64, config GraphConfig) string {
	if config.Height < 2 {
		config.Height = 2
	}
	if config.YAxisWidth < 4 {
		config.YAxisWidth = 4
	}
	graphWidth := config.Width - config.YAxisWidth
	if graphWidth < 10 {
		graphWidth = 10
	}

	cols := bucketize(values, graphWidth)
	if len(cols) == 0 {
		return renderEmptyGraph(config, graphWidth)
	}

	maxY, ticks := yRange(cols, config.Height)

	// Half-block canvas doubles the vertical resolution
	canvasHeight := config.Height * 2
	scale := func(v float64) int {
		ratio := v / maxY
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}
		return canvasHeight - 1 - int(ratio*float64(canvasHeight-1))
	}

	anyLoss := false
	for _, col := range cols {
		if col.hasLoss {
			anyLoss = true
			break
		}
	}

	var result strings.Builder

	for row := 0; row < config.Height; row++ {
		result.WriteString(graphAxisStyle.Render(formatYLabel(ticks, row, config.Height, config.YAxisWidth)))

		upper := row * 2
		lower := row*2 + 1
		for _, col := range cols {
			if col.lo < 0 {
				result.WriteRune(' ')
				continue
			}
			top := scale(col.hi)
			bottom := scale(col.lo)
			inUpper := upper >= top && upper <= bottom
			inLower := lower >= top && lower <= bottom
			switch {
			case inUpper && inLower:
				result.WriteString(graphLineStyle.Render("█"))
			case inUpper:
				result.WriteString(graphLineStyle.Render("▀"))
			case inLower:
				result.WriteString(graphLineStyle.Render("▄"))
			default:
				result.WriteRune(' ')
			}
		}
		if pad := graphWidth - len(cols); pad > 0 {
			result.WriteString(strings.Repeat(" ", pad))
		}
		result.WriteString("\n")
	}

	// Loss markers under the columns that dropped probes
	if anyLoss {
		result.WriteString(strings.Repeat(" ", config.YAxisWidth))
		for _, col := range cols {
			if col.hasLoss {
				result.WriteString(graphLossStyle.Render("×"))
			} else {
				result.WriteRune(' ')
			}
		}
		result.WriteString("\n")
	}

	result.WriteString(renderXAxis(len(values), graphWidth, config.YAxisWidth))
	return result.String()
}

// bucketize folds values into at most width columns
func bucketize(values []float64, width int) []graphColumn {
	if len(values) == 0 || width <= 0 {
		return nil
	}

	size := (len(values) + width - 1) / width
	cols := make([]graphColumn, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}

		col := graphColumn{lo: -1, hi: -1}
		for _, v := range values[start:end] {
			if v < 0 {
				col.hasLoss = true
				continue
			}
			if col.lo < 0 || v < col.lo {
				col.lo = v
			}
			if v > col.hi {
				col.hi = v
			}
		}
		cols = append(cols, col)
	}
	return cols
}

// yRange determines the plot ceiling and nice tick values. The floor
// is always zero for latency.
func yRange(cols []graphColumn, numTicks int) (maxY float64, ticks []float64) {
	dataMax := -1.0
	for _, col := range cols {
		if col.hi > dataMax {
			dataMax = col.hi
		}
	}
	if dataMax < 0 {
		return 100, []float64{0, 50, 100}
	}

	// Add 10% headroom
	padding := dataMax * 0.1
	if padding < 1 {
		padding = 1
	}
	maxY = dataMax + padding

	tickSpacing := niceNum(maxY / float64(numTicks-1))
	maxY = math.Ceil(maxY/tickSpacing) * tickSpacing

	for tick := 0.0; tick <= maxY+tickSpacing*0.5; tick += tickSpacing {
		ticks = append(ticks, tick)
	}
	return maxY, ticks
}

// niceNum rounds x up or down to 1, 2 or 5 times a power of ten
func niceNum(x float64) float64 {
	if x <= 0 {
		return 1
	}
	exp := math.Floor(math.Log10(x))
	f := x / math.Pow(10, exp)
	var nf float64
	switch {
	case f < 1.5:
		nf = 1
	case f < 3:
		nf = 2
	case f < 7:
		nf = 5
	default:
		nf = 10
	}
	return nf * math.Pow(10, exp)
}

// formatYLabel renders the Y-axis gutter for one row
func formatYLabel(ticks []float64, row, height, width int) string {
	if len(ticks) < 2 {
		return strings.Repeat(" ", width-1) + "│"
	}

	maxTick := ticks[len(ticks)-1]
	minTick := ticks[0]
	for _, tick := range ticks {
		tickRow := int((maxTick - tick) / (maxTick - minTick) * float64(height-1))
		if tickRow == row {
			label := formatLatencyShort(tick)
			if len(label) >= width {
				label = label[:width-1]
			}
			return strings.Repeat(" ", width-len(label)-1) + label + "┤"
		}
	}
	return strings.Repeat(" ", width-1) + "│"
}

// formatLatencyShort formats a tick value for the Y-axis
func formatLatencyShort(ms float64) string {
	switch {
	case ms >= 1000:
		return strings.TrimSuffix(strconv.FormatFloat(ms/1000, 'f', 1, 64), ".0") + "s"
	case ms >= 1:
		return strconv.Itoa(int(ms)) + "ms"
	case ms > 0:
		return "<1ms"
	default:
		return "0"
	}
}

// renderXAxis draws the axis line and the sample-count labels
func renderXAxis(samples, width, yAxisWidth int) string {
	var result strings.Builder

	result.WriteString(strings.Repeat(" ", yAxisWidth-1))
	result.WriteString("└")
	result.WriteString(strings.Repeat("─", width))
	result.WriteString("\n")
	result.WriteString(strings.Repeat(" ", yAxisWidth))

	left := "-" + strconv.Itoa(samples) + " checks"
	right := "now"
	padding := width - len(left) - len(right)
	if padding < 1 {
		padding = 1
	}
	result.WriteString(graphAxisStyle.Render(left))
	result.WriteString(strings.Repeat(" ", padding))
	result.WriteString(graphAxisStyle.Render(right))

	return result.String()
}

// renderEmptyGraph renders the placeholder before any samples arrive
func renderEmptyGraph(config GraphConfig, graphWidth int) string {
	var result strings.Builder

	for row := 0; row < config.Height; row++ {
		result.WriteString(strings.Repeat(" ", config.YAxisWidth-1))
		result.WriteString("│")
		if row == config.Height/2 {
			msg := "No data"
			padding := (graphWidth - len(msg)) / 2
			if padding < 0 {
				padding = 0
			}
			result.WriteString(strings.Repeat(" ", padding))
			result.WriteString(graphAxisStyle.Render(msg))
			if rest := graphWidth - padding - len(msg); rest > 0 {
				result.WriteString(strings.Repeat(" ", rest))
			}
		} else {
			result.WriteString(strings.Repeat(" ", graphWidth))
		}
		result.WriteString("\n")
	}

	result.WriteString(strings.Repeat(" ", config.YAxisWidth-1))
	result.WriteString("└")
	result.WriteString(strings.Repeat("─", graphWidth))
	return result.String()
}
