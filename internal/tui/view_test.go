package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/wellsgz/reach/internal/i18n"
	"github.com/wellsgz/reach/internal/monitor"
	"github.com/wellsgz/reach/internal/stats"
)

func testModel(snap monitor.Snapshot) Model {
	return Model{
		snap:        snap,
		catalog:     i18n.Load("en"),
		shortWindow: 10,
		longWindow:  600,
		width:       100,
		height:      40,
		ready:       true,
	}
}

func testSnapshot() monitor.Snapshot {
	history := make([]float64, 60)
	for i := range history {
		history[i] = 20 + float64(i%5)
	}
	return monitor.Snapshot{
		Target:         "example.org",
		Monitoring:     true,
		TotalSent:      60,
		TotalReceived:  60,
		LastLatencyMs:  22,
		LatencyHistory: history,
		LossHistory:    []float64{0, 0, 0},
		WindowSize:     60,
		Lifetime: monitor.LifetimeStats{
			SuccessCount: 60,
			MinMs:        20,
			MaxMs:        24,
			AvgMs:        22,
			JitterMs:     1.2,
		},
	}
}

func TestViewBeforeFirstResize(t *testing.T) {
	m := testModel(testSnapshot())
	m.ready = false
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before resize = %q", got)
	}
}

func TestViewShowsStatus(t *testing.T) {
	m := testModel(testSnapshot())
	out := m.View()

	for _, want := range []string{"example.org", "MONITORING", "22.0 ms", "last 60 checks"} {
		if !strings.Contains(out, want) {
			t.Errorf("View missing %q:\n%s", want, out)
		}
	}
}

func TestViewPaused(t *testing.T) {
	snap := testSnapshot()
	snap.Monitoring = false
	out := testModel(snap).View()

	if !strings.Contains(out, "PAUSED") {
		t.Errorf("View missing paused status:\n%s", out)
	}
}

func TestViewTimeout(t *testing.T) {
	snap := testSnapshot()
	snap.LastLatencyMs = -1
	out := testModel(snap).View()

	if !strings.Contains(out, "timeout") {
		t.Errorf("View missing timeout marker:\n%s", out)
	}
}

func TestViewControlsToggle(t *testing.T) {
	snap := testSnapshot()
	out := testModel(snap).View()
	if !strings.Contains(out, "Press K to show controls") {
		t.Errorf("collapsed view missing controls hint:\n%s", out)
	}

	snap.ShowControls = true
	out = testModel(snap).View()
	for _, want := range []string{"Pause monitoring", "Run traceroute again", "Cycle language"} {
		if !strings.Contains(out, want) {
			t.Errorf("key guide missing %q:\n%s", want, out)
		}
	}
}

func TestViewQualityReason(t *testing.T) {
	snap := testSnapshot()
	snap.ShowHelp = true
	out := testModel(snap).View()

	// 60 clean samples around 22 ms classify as excellent
	if !strings.Contains(out, "EXCELLENT") {
		t.Errorf("View missing quality tier:\n%s", out)
	}
	if !strings.Contains(out, "loss < 1%") {
		t.Errorf("View missing quality reason:\n%s", out)
	}
}

func TestViewAdminRows(t *testing.T) {
	m := testModel(testSnapshot())
	m.admin = true
	out := m.View()

	if !strings.Contains(out, "Short loss (last 10)") {
		t.Errorf("admin view missing short loss row:\n%s", out)
	}
	if !strings.Contains(out, "Long loss (last 60)") {
		t.Errorf("admin view missing long loss row:\n%s", out)
	}
}

func TestViewAlertLine(t *testing.T) {
	snap := testSnapshot()
	// Half the short window lost trips the high loss alert
	n := len(snap.LatencyHistory)
	for i := n - 5; i < n; i++ {
		snap.LatencyHistory[i] = -1
	}
	out := testModel(snap).View()

	if !strings.Contains(out, "high packet loss") {
		t.Errorf("View missing loss alert:\n%s", out)
	}
}

func TestViewTraceSections(t *testing.T) {
	snap := testSnapshot()
	snap.Trace = monitor.TraceStatus{
		Running:   true,
		StartedAt: time.Now(),
	}
	out := testModel(snap).View()
	if !strings.Contains(out, "running...") {
		t.Errorf("View missing running trace header:\n%s", out)
	}

	snap.Trace = monitor.TraceStatus{
		Lines: []string{
			"traceroute to example.org (93.184.216.34), 30 hops max",
			" 1  gw (10.0.0.1)  1.0 ms  1.2 ms  1.1 ms",
			" 2  core (10.0.1.1)  2.0 ms  2.2 ms  2.1 ms",
		},
		Summary:     "2 hops, max RTT 2.2 ms, no timeouts",
		StartedAt:   time.Now().Add(-time.Minute),
		CompletedAt: time.Now(),
	}
	out = testModel(snap).View()
	if !strings.Contains(out, "(summary)") {
		t.Errorf("View missing trace summary header:\n%s", out)
	}
	if !strings.Contains(out, "2 hops, max RTT 2.2 ms, no timeouts") {
		t.Errorf("View missing trace summary line:\n%s", out)
	}
	if !strings.Contains(out, "10.0.0.1") {
		t.Errorf("View missing trace hop rows:\n%s", out)
	}
	if !strings.Contains(out, "last run") {
		t.Errorf("View missing trace timestamp:\n%s", out)
	}
}

func TestViewTraceCollapse(t *testing.T) {
	lines := []string{"traceroute to example.org (93.184.216.34), 30 hops max"}
	for i := 1; i <= 15; i++ {
		lines = append(lines, fmt.Sprintf("%2d  hop%d.example.net (10.0.%d.1)  1.0 ms  1.2 ms  1.1 ms", i, i, i))
	}

	snap := testSnapshot()
	snap.Trace = monitor.TraceStatus{
		Lines:     lines,
		StartedAt: time.Now(),
	}
	out := testModel(snap).View()

	if !strings.Contains(out, "press F for full view") {
		t.Errorf("collapsed trace missing hint:\n%s", out)
	}
	if !strings.Contains(out, "hop1.example.net") || !strings.Contains(out, "hop15.example.net") {
		t.Errorf("collapsed trace should keep first and last hops:\n%s", out)
	}
	if strings.Contains(out, "hop8.example.net") {
		t.Errorf("collapsed trace should drop the middle hops:\n%s", out)
	}

	snap.ShowFullTrace = true
	out = testModel(snap).View()
	if strings.Contains(out, "press F for full view") {
		t.Errorf("full trace should not show the collapse hint:\n%s", out)
	}
	if !strings.Contains(out, "hop8.example.net") {
		t.Errorf("full trace missing middle hops:\n%s", out)
	}
}

func TestQualityKeys(t *testing.T) {
	tests := []struct {
		q    stats.Quality
		want string
	}{
		{stats.QualityExcellent, "QUALITY_EXCELLENT"},
		{stats.QualityGood, "QUALITY_GOOD"},
		{stats.QualityFair, "QUALITY_FAIR"},
		{stats.QualityPoor, "QUALITY_POOR"},
		{stats.QualityUnknown, "QUALITY_UNKNOWN"},
	}
	for _, tt := range tests {
		if got := qualityKey(tt.q); got != tt.want {
			t.Errorf("qualityKey(%v) = %q, want %q", tt.q, got, tt.want)
		}
		if got := qualityReasonKey(tt.q); got != tt.want+"_REASON" {
			t.Errorf("qualityReasonKey(%v) = %q", tt.q, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Errorf("truncate = %q, want %q", got, "abcd")
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("truncate should leave short strings alone, got %q", got)
	}
	styled := "\x1b[31mabcdef\x1b[0m"
	if got := truncate(styled, 3); got != styled {
		t.Errorf("truncate should leave styled strings alone, got %q", got)
	}
}
