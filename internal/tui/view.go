package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wellsgz/reach/internal/stats"
	"github.com/wellsgz/reach/internal/traceparse"
	"github.com/wellsgz/reach/internal/tui/components"
)

// View renders the dashboard
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderControls())
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	b.WriteString(m.renderMetrics())

	if extras := m.renderExtras(); extras != "" {
		b.WriteString("\n")
		b.WriteString(extras)
	}

	b.WriteString("\n")
	b.WriteString(m.renderSparkline())

	if m.showGraph {
		b.WriteString("\n")
		b.WriteString(m.renderGraph())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.renderError())
		b.WriteString("\n")
	}

	b.WriteString("\n")

	// The trace table fills whatever rows remain on screen
	budget := m.height - strings.Count(b.String(), "\n")
	b.WriteString(m.renderTrace(budget))

	return b.String()
}

// renderHeader renders the application header
func (m Model) renderHeader() string {
	title := TitleStyle.Render(" reach ")
	subtitle := SubtitleStyle.Render("Network Reachability Monitor")
	left := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", subtitle)

	if m.apiAddr == "" {
		return left
	}

	apiInfo := LabelStyle.Render(fmt.Sprintf("API: %s", m.apiAddr))
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(apiInfo) - 2
	if spacing < 1 {
		spacing = 1
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		left,
		strings.Repeat(" ", spacing),
		apiInfo,
	)
}

// renderControls renders the key guide, or the hint that opens it
func (m Model) renderControls() string {
	var b strings.Builder

	if m.snap.ShowControls {
		table := components.NewTable([]components.Column{
			{Title: "Key", Width: 8, Align: lipgloss.Left},
			{Title: m.catalog.T("KEYS_ACTION_HEADER"), Width: 44, Align: lipgloss.Left},
		})
		table.Gap = ""

		b.WriteString(table.RenderHeader())
		b.WriteString("\n")
		rows := [][2]string{
			{"P", m.catalog.T("KEY_ACTION_P")},
			{"R", m.catalog.T("KEY_ACTION_R")},
			{"T", m.catalog.T("KEY_ACTION_T")},
			{"F", m.catalog.T("KEY_ACTION_F")},
			{"L", m.catalog.T("KEY_ACTION_L")},
			{"H", m.catalog.T("KEY_ACTION_H")},
			{"K", m.catalog.T("KEY_ACTION_K")},
			{"G", m.catalog.T("KEY_ACTION_G")},
			{"+/-", m.catalog.T("KEY_ACTION_WINDOW")},
			{"↑/↓", m.catalog.T("KEY_ACTION_SCROLL")},
			{"Q", m.catalog.T("KEY_ACTION_Q")},
		}
		for _, row := range rows {
			b.WriteString(table.RenderRow([]string{HelpKeyStyle.Render(row[0]), row[1]}))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(HelpStyle.Render(m.catalog.T("CONTROLS_HINT")))
		b.WriteString("\n")
	}

	if m.admin {
		b.WriteString(LabelStyle.Render(m.catalog.T("ADMIN_CONTROLS")))
		b.WriteString("\n")
	}

	return b.String()
}

// renderStatus renders the status, ping now, quality and window rows
func (m Model) renderStatus() string {
	var b strings.Builder

	statusKey := "STATUS_MONITORING"
	if !m.snap.Monitoring {
		statusKey = "STATUS_PAUSED"
	}
	statusText := fmt.Sprintf("%s (%s)", m.catalog.T(statusKey), m.snap.Target)
	b.WriteString(topRow(m.catalog.T("STATUS_LABEL"), StatusStyle(m.snap.Monitoring).Render(statusText)))

	var pingNow string
	if m.snap.LastLatencyMs >= 0 {
		pingNow = LatencyStyle(m.snap.LastLatencyMs).Render(stats.FormatMs(m.snap.LastLatencyMs) + " ms")
	} else {
		pingNow = LossStyle.Render(m.catalog.T("PING_NOW_VALUE_TIMEOUT"))
	}
	b.WriteString(topRow(m.catalog.T("PING_NOW_LABEL"), pingNow))

	win := stats.Window(m.snap.LatencyHistory, m.snap.WindowSize)
	quality := stats.Classify(win, m.snap.WindowSize)
	b.WriteString(topRow(m.catalog.T("QUALITY_LABEL"),
		QualityStyle(quality).Render(m.catalog.T(qualityKey(quality)))))

	b.WriteString(topRow(m.catalog.T("WINDOW_LABEL"), m.catalog.T("WINDOW_VALUE", m.snap.WindowSize)))

	if m.snap.ShowHelp {
		b.WriteString("  - ")
		b.WriteString(LabelStyle.Render(m.catalog.T(qualityReasonKey(quality))))
		b.WriteString("\n")
	}

	return b.String()
}

// renderMetrics renders the window versus session table
func (m Model) renderMetrics() string {
	win := stats.Window(m.snap.LatencyHistory, m.snap.WindowSize)
	life := m.snap.Lifetime

	valueWidth := (m.width - 14) / 2
	if valueWidth > 36 {
		valueWidth = 36
	}
	if valueWidth < 20 {
		valueWidth = 20
	}

	table := components.NewTable([]components.Column{
		{Title: "Metric", Width: 8, Align: lipgloss.Left},
		{Title: "Window", Width: valueWidth, Align: lipgloss.Left},
		{Title: "Session", Width: valueWidth, Align: lipgloss.Left},
	})
	table.Gap = " │ "

	lossWin := m.catalog.T("LOSS_WIN_VALUE_WAIT")
	if win.Count > 0 {
		lossWin = LossPercentStyle(win.LossPct).
			Render(m.catalog.T("LOSS_WIN_VALUE", win.LossPct, win.Lost, win.Count))
	}
	lossAll := m.catalog.T("LOSS_ALL_VALUE_WAIT")
	if m.snap.TotalSent > 0 {
		lost := m.snap.TotalSent - m.snap.TotalReceived
		pct := float64(lost) / float64(m.snap.TotalSent) * 100
		lossAll = LossPercentStyle(pct).
			Render(m.catalog.T("LOSS_ALL_VALUE", pct, lost, m.snap.TotalSent))
	}

	pingWin := m.catalog.T("PING_WIN_VALUE_WAIT")
	if win.Received > 0 {
		pingWin = m.catalog.T("PING_WIN_VALUE",
			stats.FormatMs(win.MinMs), stats.FormatMs(win.AvgMs), stats.FormatMs(win.MaxMs))
	}
	pingAll := m.catalog.T("PING_ALL_VALUE_WAIT")
	if life.SuccessCount > 0 {
		pingAll = m.catalog.T("PING_ALL_VALUE",
			stats.FormatMs(life.MinMs), stats.FormatMs(life.AvgMs), stats.FormatMs(life.MaxMs))
	}

	jitterWin := m.catalog.T("JITTER_WIN_VALUE_WAIT")
	if win.JitterMs >= 0 {
		jitterWin = m.catalog.T("JITTER_WIN_VALUE", win.JitterMs)
	}
	jitterAll := m.catalog.T("JITTER_ALL_VALUE_WAIT")
	if life.JitterMs >= 0 {
		jitterAll = m.catalog.T("JITTER_ALL_VALUE", life.JitterMs)
	}

	var b strings.Builder
	b.WriteString(table.RenderHeader())
	b.WriteString("\n")
	b.WriteString(table.RenderRow([]string{m.catalog.T("METRIC_LOSS_LABEL"), lossWin, lossAll}))
	b.WriteString("\n")
	b.WriteString(table.RenderRow([]string{m.catalog.T("METRIC_PING_LABEL"), pingWin, pingAll}))
	b.WriteString("\n")
	b.WriteString(table.RenderRow([]string{m.catalog.T("METRIC_JITTER_LABEL"), jitterWin, jitterAll}))
	b.WriteString("\n")
	return b.String()
}

// renderExtras renders the admin loss rows and the alert line
func (m Model) renderExtras() string {
	var b strings.Builder

	short := stats.Window(m.snap.LatencyHistory, m.shortWindow)

	if m.admin {
		if short.Count > 0 {
			b.WriteString(m.catalog.T("SHORT_LOSS_VALUE",
				m.shortWindow, short.LossPct, short.Lost, short.Count))
		} else {
			b.WriteString(m.catalog.T("SHORT_LOSS_WAIT"))
		}
		b.WriteString("\n")

		long := stats.Window(m.snap.LatencyHistory, m.longWindow)
		if long.Count > 0 {
			span := long.Count
			if span > m.longWindow {
				span = m.longWindow
			}
			b.WriteString(m.catalog.T("LONG_LOSS_VALUE",
				span, long.LossPct, long.Lost, long.Count))
		} else {
			b.WriteString(m.catalog.T("LONG_LOSS_WAIT"))
		}
		b.WriteString("\n")

		b.WriteString(topRow(m.catalog.T("METRIC_LOSS_LABEL"),
			components.LossSparkline(m.snap.LossHistory, m.sparkWidth())))
	}

	switch stats.DetectAlert(short, m.shortWindow) {
	case stats.AlertDelaySpike:
		b.WriteString(AlertStyle.Render(m.catalog.T("ALERT_DELAY_SPIKE")))
		b.WriteString("\n")
	case stats.AlertHighLoss:
		b.WriteString(AlertStyle.Render(m.catalog.T("ALERT_HIGH_LOSS")))
		b.WriteString("\n")
	}

	return b.String()
}

// renderSparkline renders the latency row over the current window
func (m Model) renderSparkline() string {
	hist := m.snap.LatencyHistory
	if len(hist) > m.snap.WindowSize {
		hist = hist[len(hist)-m.snap.WindowSize:]
	}
	return topRow(m.catalog.T("METRIC_PING_LABEL"), components.Sparkline(hist, m.sparkWidth()))
}

func (m Model) sparkWidth() int {
	width := m.width - 14
	if width > 60 {
		width = 60
	}
	if width < 10 {
		width = 10
	}
	return width
}

// renderGraph renders the bucketed latency graph over the window
func (m Model) renderGraph() string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render(m.catalog.T("GRAPH_LABEL")))
	b.WriteString("\n")

	width := m.width - 4
	if width > 80 {
		width = 80
	}

	hist := m.snap.LatencyHistory
	if len(hist) > m.snap.WindowSize {
		hist = hist[len(hist)-m.snap.WindowSize:]
	}

	b.WriteString(components.Graph(hist, components.GraphConfig{
		Width:      width,
		Height:     8,
		YAxisWidth: 8,
	}))
	b.WriteString("\n")
	return b.String()
}

// renderError renders an error message
func (m Model) renderError() string {
	errorBox := lipgloss.NewStyle().
		Foreground(ColorDanger).
		Background(lipgloss.Color("#3F1F1F")).
		Padding(0, 1).
		Width(m.width - 2).
		Render("Error: " + m.err.Error())
	return errorBox
}

// renderTrace renders the trace section into at most budget rows.
// Collapsed mode keeps the first and last hops around a hint line;
// the scroll offset applies only to an overflowing full view.
func (m Model) renderTrace(budget int) string {
	if budget <= 0 {
		return ""
	}

	var b strings.Builder
	t := m.snap.Trace

	var header string
	switch {
	case t.Running:
		header = m.catalog.T("TRACE_RUNNING", m.snap.Target)
	case t.Err != "":
		header = m.catalog.T("TRACE_FAILED", m.snap.Target)
	case m.snap.ShowFullTrace:
		header = m.catalog.T("TRACE_FULL", m.snap.Target)
	default:
		header = m.catalog.T("TRACE_SUMMARY", m.snap.Target)
	}
	if !t.StartedAt.IsZero() {
		stamp := t.StartedAt.Local().Format("15:04")
		header += "  (" + m.catalog.T("TRACE_LAST_RUN_SHORT", stamp) + ")"
	}
	b.WriteString(SectionStyle.Render(truncate(header, m.width)))
	b.WriteString("\n")
	budget--

	if !t.Running && t.Summary != "" && budget > 0 {
		b.WriteString(truncate(t.Summary, m.width))
		b.WriteString("\n")
		budget--
	}

	if budget <= 0 {
		return b.String()
	}

	tableLines := traceparse.BuildTable(t.Lines)

	var base []string
	if len(tableLines) > 0 {
		if m.snap.ShowFullTrace || len(tableLines) <= 8 {
			base = tableLines
		} else {
			// Keep the header row, then first and last hops
			base = append(base, tableLines[0])
			body := tableLines[1:]
			if len(body) <= 6 {
				base = append(base, body...)
			} else {
				base = append(base, body[:3]...)
				base = append(base, m.catalog.T("TRACE_SUMMARY_HINT"))
				base = append(base, body[len(body)-3:]...)
			}
		}
	}

	offset := 0
	if m.snap.ShowFullTrace && len(base) > budget {
		maxOffset := len(base) - budget
		offset = m.snap.TraceScroll
		if offset > maxOffset {
			offset = maxOffset
		}
		if offset < 0 {
			offset = 0
		}
	}

	visible := base[offset:]
	if len(visible) > budget {
		visible = visible[:budget]
	}
	for _, line := range visible {
		b.WriteString(truncate(line, m.width))
		b.WriteString("\n")
	}

	if t.Err != "" && budget > len(visible) {
		b.WriteString(ErrorStyle.Render(truncate(m.catalog.T("TRACE_ERROR_PREFIX", t.Err), m.width)))
		b.WriteString("\n")
	}

	return b.String()
}

// topRow lays out one labelled info line
func topRow(label, value string) string {
	return fmt.Sprintf("%-12s %s\n", label, value)
}

// qualityKey maps a quality tier to its catalog key
func qualityKey(q stats.Quality) string {
	switch q {
	case stats.QualityExcellent:
		return "QUALITY_EXCELLENT"
	case stats.QualityGood:
		return "QUALITY_GOOD"
	case stats.QualityFair:
		return "QUALITY_FAIR"
	case stats.QualityPoor:
		return "QUALITY_POOR"
	default:
		return "QUALITY_UNKNOWN"
	}
}

func qualityReasonKey(q stats.Quality) string {
	return qualityKey(q) + "_REASON"
}

// truncate cuts s to at most width cells, leaving styled strings alone
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	if strings.ContainsRune(s, '\x1b') {
		return s
	}
	runes := []rune(s)
	if len(runes) > width {
		runes = runes[:width]
	}
	return string(runes)
}
