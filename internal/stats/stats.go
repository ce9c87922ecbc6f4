package stats

import (
	"fmt"
	"math"
)

// WindowStats aggregates the most recent slice of a latency history.
// Latency fields hold -1 when the window has no usable value.
type WindowStats struct {
	Count    int     `json:"count"`
	Lost     int     `json:"lost"`
	Received int     `json:"received"`
	LossPct  float64 `json:"loss_pct"`
	AvgMs    float64 `json:"avg_ms"`
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`
	JitterMs float64 `json:"jitter_ms"`
}

// Window computes loss and latency figures over the last windowSize
// entries of history. Negative history values mark lost probes. Jitter
// is the mean absolute delta between consecutive replies, skipping
// losses in between; it needs at least two replies in the window.
func Window(history []float64, windowSize int) WindowStats {
	ws := WindowStats{AvgMs: -1, MinMs: -1, MaxMs: -1, JitterMs: -1}
	if windowSize <= 0 || len(history) == 0 {
		return ws
	}

	start := len(history) - windowSize
	if start < 0 {
		start = 0
	}
	recent := history[start:]
	ws.Count = len(recent)

	var sum, prev, jitterSum float64
	jitterPairs := 0
	for _, v := range recent {
		if v < 0 {
			ws.Lost++
			continue
		}
		if ws.Received == 0 {
			ws.MinMs, ws.MaxMs = v, v
		} else {
			if v < ws.MinMs {
				ws.MinMs = v
			}
			if v > ws.MaxMs {
				ws.MaxMs = v
			}
			jitterSum += math.Abs(v - prev)
			jitterPairs++
		}
		sum += v
		prev = v
		ws.Received++
	}

	ws.LossPct = float64(ws.Lost) / float64(ws.Count) * 100
	if ws.Received > 0 {
		ws.AvgMs = sum / float64(ws.Received)
	}
	if jitterPairs > 0 {
		ws.JitterMs = jitterSum / float64(jitterPairs)
	}
	return ws
}

// Quality grades a window of samples into coarse connection tiers
type Quality int

const (
	QualityUnknown Quality = iota
	QualityPoor
	QualityFair
	QualityGood
	QualityExcellent
)

func (q Quality) String() string {
	switch q {
	case QualityExcellent:
		return "excellent"
	case QualityGood:
		return "good"
	case QualityFair:
		return "fair"
	case QualityPoor:
		return "poor"
	default:
		return "unknown"
	}
}

// Classify grades a window of samples. The window must hold at least
// max(20, windowSize/2) samples and at least one reply; otherwise the
// grade is unknown.
func Classify(ws WindowStats, windowSize int) Quality {
	needed := 20
	if windowSize/2 > needed {
		needed = windowSize / 2
	}
	if ws.Count < needed || ws.Received == 0 {
		return QualityUnknown
	}

	switch {
	// An absent jitter (-1) never blocks the excellent tier
	case ws.LossPct < 1.0 && ws.AvgMs < 40 && ws.JitterMs < 5:
		return QualityExcellent
	case ws.LossPct < 2.0 && ws.AvgMs < 80:
		return QualityGood
	case ws.LossPct < 5.0 && ws.AvgMs < 150:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Alert flags short-window anomalies worth surfacing immediately
type Alert int

const (
	AlertNone Alert = iota
	AlertDelaySpike
	AlertHighLoss
)

func (a Alert) String() string {
	switch a {
	case AlertDelaySpike:
		return "delay_spike"
	case AlertHighLoss:
		return "high_loss"
	default:
		return "none"
	}
}

// DetectAlert checks a short window for a latency spike or heavy loss.
// The window must hold at least max(5, shortWindow/2) samples. A spike
// (max above triple the average and more than 100ms over it) takes
// precedence over high loss (10% or more).
func DetectAlert(short WindowStats, shortWindow int) Alert {
	needed := 5
	if shortWindow/2 > needed {
		needed = shortWindow / 2
	}
	if short.Count < needed {
		return AlertNone
	}

	if short.Received > 0 && short.MaxMs > 3*short.AvgMs && short.MaxMs-short.AvgMs > 100 {
		return AlertDelaySpike
	}
	if short.LossPct >= 10 {
		return AlertHighLoss
	}
	return AlertNone
}

// FormatMs renders a millisecond value for display: "-" when absent,
// ">999" above the three-digit range, otherwise one decimal
func FormatMs(ms float64) string {
	if ms < 0 {
		return "-"
	}
	if ms > 999.0 {
		return ">999"
	}
	return fmt.Sprintf("%.1f", ms)
}
