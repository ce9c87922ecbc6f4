package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wellsgz/reach/internal/config"
	"github.com/wellsgz/reach/internal/monitor"
	"github.com/wellsgz/reach/internal/stats"
	"github.com/wellsgz/reach/internal/traceparse"
)

// Version reported by the status endpoint
const Version = "0.1.0"

// Handler holds dependencies for API handlers
type Handler struct {
	monitor   *monitor.Monitor
	config    *config.Config
	startTime time.Time
}

// NewHandler creates a new Handler for the given monitor
func NewHandler(mon *monitor.Monitor, cfg *config.Config) *Handler {
	return &Handler{
		monitor:   mon,
		config:    cfg,
		startTime: time.Now(),
	}
}

// StatusResponse represents the response for the status endpoint
type StatusResponse struct {
	Status     string  `json:"status"`
	Uptime     string  `json:"uptime"`
	UptimeSecs float64 `json:"uptime_secs"`
	Target     string  `json:"target"`
	Monitoring bool    `json:"monitoring"`
	Version    string  `json:"version"`
}

// GetStatus returns the current system status
func (h *Handler) GetStatus(c *gin.Context) {
	uptime := time.Since(h.startTime)
	snap := h.monitor.Snapshot()

	response := StatusResponse{
		Status:     "ok",
		Uptime:     uptime.Round(time.Second).String(),
		UptimeSecs: uptime.Seconds(),
		Target:     snap.Target,
		Monitoring: snap.Monitoring,
		Version:    Version,
	}

	c.JSON(http.StatusOK, response)
}

// GetSnapshot returns the full monitor state
func (h *Handler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Snapshot())
}

// StatsResponse carries windowed statistics. Latency aggregates are
// null until the window holds at least one reply.
type StatsResponse struct {
	Target   string   `json:"target"`
	Window   int      `json:"window"`
	Count    int      `json:"count"`
	Lost     int      `json:"lost"`
	Received int      `json:"received"`
	LossPct  float64  `json:"loss_pct"`
	MinMs    *float64 `json:"min_ms"`
	AvgMs    *float64 `json:"avg_ms"`
	MaxMs    *float64 `json:"max_ms"`
	JitterMs *float64 `json:"jitter_ms"`
	Quality  string   `json:"quality"`
	Alert    string   `json:"alert"`
}

// GetStats returns statistics over the requested window. The window
// query parameter defaults to the monitor's current window size.
func (h *Handler) GetStats(c *gin.Context) {
	snap := h.monitor.Snapshot()

	window := snap.WindowSize
	if raw := c.Query("window"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "Invalid window parameter: " + raw,
			})
			return
		}
		window = parsed
	}

	ws := stats.Window(snap.LatencyHistory, window)
	short := stats.Window(snap.LatencyHistory, h.config.Alerts.ShortWindow)

	response := StatsResponse{
		Target:   snap.Target,
		Window:   window,
		Count:    ws.Count,
		Lost:     ws.Lost,
		Received: ws.Received,
		LossPct:  ws.LossPct,
		MinMs:    msPtr(ws.MinMs),
		AvgMs:    msPtr(ws.AvgMs),
		MaxMs:    msPtr(ws.MaxMs),
		JitterMs: msPtr(ws.JitterMs),
		Quality:  stats.Classify(ws, window).String(),
		Alert:    stats.DetectAlert(short, h.config.Alerts.ShortWindow).String(),
	}

	c.JSON(http.StatusOK, response)
}

// HistoryPoint is a single probe result in history
type HistoryPoint struct {
	LatencyMs *float64 `json:"latency_ms"` // null for lost probes
	Lost      bool     `json:"lost"`
}

// HistoryResponse contains the retained probe history, oldest first
type HistoryResponse struct {
	Target string         `json:"target"`
	Count  int            `json:"count"`
	Points []HistoryPoint `json:"points"`
}

// GetHistory returns the retained probe history
func (h *Handler) GetHistory(c *gin.Context) {
	snap := h.monitor.Snapshot()

	points := make([]HistoryPoint, len(snap.LatencyHistory))
	for i, v := range snap.LatencyHistory {
		points[i] = HistoryPoint{
			LatencyMs: msPtr(v),
			Lost:      v < 0,
		}
	}

	c.JSON(http.StatusOK, HistoryResponse{
		Target: snap.Target,
		Count:  len(points),
		Points: points,
	})
}

// TraceResponse represents the most recent path trace
type TraceResponse struct {
	Target      string                 `json:"target"`
	Running     bool                   `json:"running"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt time.Time              `json:"completed_at"`
	Error       string                 `json:"error,omitempty"`
	Summary     string                 `json:"summary,omitempty"`
	Hops        []traceparse.HopRecord `json:"hops"`
}

// GetTrace returns the most recent path trace with parsed hops
func (h *Handler) GetTrace(c *gin.Context) {
	snap := h.monitor.Snapshot()
	t := snap.Trace

	c.JSON(http.StatusOK, TraceResponse{
		Target:      snap.Target,
		Running:     t.Running,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
		Error:       t.Err,
		Summary:     t.Summary,
		Hops:        traceparse.ParseHops(t.Lines),
	})
}

// GetConfig returns the current configuration (read-only)
func (h *Handler) GetConfig(c *gin.Context) {
	response := gin.H{
		"target": gin.H{
			"host":  h.config.Target.Host,
			"probe": h.config.Target.Probe,
			"port":  h.config.Target.Port,
		},
		"monitor": gin.H{
			"interval":   h.config.Monitor.Interval.String(),
			"timeout":    h.config.Monitor.Timeout.String(),
			"history":    h.config.Monitor.History,
			"window":     h.config.Monitor.Window,
			"min_window": h.config.Monitor.MinWindow,
		},
		"trace": gin.H{
			"timeout":  h.config.Trace.Timeout.String(),
			"wait":     h.config.Trace.Wait.String(),
			"on_start": h.config.Trace.OnStart,
		},
		"alerts": gin.H{
			"short_window": h.config.Alerts.ShortWindow,
			"long_window":  h.config.Alerts.LongWindow,
		},
	}

	c.JSON(http.StatusOK, response)
}

// PostPause pauses probing
func (h *Handler) PostPause(c *gin.Context) {
	h.monitor.Pause()
	c.JSON(http.StatusOK, gin.H{"monitoring": false})
}

// PostResume resumes probing
func (h *Handler) PostResume(c *gin.Context) {
	h.monitor.Resume()
	c.JSON(http.StatusOK, gin.H{"monitoring": true})
}

// PostTrace starts a new path trace unless one is already running
func (h *Handler) PostTrace(c *gin.Context) {
	started := h.monitor.RequestTrace()
	c.JSON(http.StatusOK, gin.H{"started": started})
}

// WindowRequest adjusts the stats window by a signed step
type WindowRequest struct {
	Delta int `json:"delta"`
}

// PostWindow grows or shrinks the stats window
func (h *Handler) PostWindow(c *gin.Context) {
	var req WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	size := h.monitor.AdjustWindow(req.Delta)
	c.JSON(http.StatusOK, gin.H{"window_size": size})
}

// msPtr converts the -1 absent sentinel into a JSON null
func msPtr(v float64) *float64 {
	if v < 0 {
		return nil
	}
	return &v
}
