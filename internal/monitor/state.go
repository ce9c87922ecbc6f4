package monitor

import "time"

// state is the single source of truth for everything measured so far.
// All access goes through Monitor.mu.
type state struct {
	running    bool
	monitoring bool

	totalSent     int
	totalReceived int

	// -1 when the last probe produced no numeric RTT
	lastLatencyMs float64

	latency *history // RTT per probe, -1 marks losses
	loss    *history // lifetime loss percentage after each probe

	windowSize int

	// Lifetime aggregates over probes that reported an RTT. The jitter
	// sum pairs consecutive reported RTTs even across losses in
	// between, so lastSuccessMs survives failed probes.
	successCount  int
	rttSum        float64
	minMs         float64
	maxMs         float64
	lastSuccessMs float64
	jitterSum     float64
	jitterCount   int

	trace traceSession

	// Display state shared by every frontend
	showFullTrace bool
	traceScroll   int
	showHelp      bool
	showControls  bool
}

// traceSession is the current or most recent path trace
type traceSession struct {
	running     bool
	lines       []string
	err         string
	summary     string
	startedAt   time.Time
	completedAt time.Time
}

// Snapshot is a deep, consistent copy of the monitor state. Mutating a
// snapshot never affects the monitor.
type Snapshot struct {
	Target        string  `json:"target"`
	Monitoring    bool    `json:"monitoring"`
	TotalSent     int     `json:"total_sent"`
	TotalReceived int     `json:"total_received"`
	LastLatencyMs float64 `json:"last_latency_ms"` // -1 when absent

	LatencyHistory []float64 `json:"latency_history"` // -1 marks losses
	LossHistory    []float64 `json:"loss_history"`
	WindowSize     int       `json:"window_size"`

	Lifetime LifetimeStats `json:"lifetime"`
	Trace    TraceStatus   `json:"trace"`

	ShowFullTrace bool `json:"show_full_trace"`
	TraceScroll   int  `json:"trace_scroll"`
	ShowHelp      bool `json:"show_help"`
	ShowControls  bool `json:"show_controls"`
}

// LifetimeStats aggregates every probe since startup. Latency fields
// hold -1 until enough probes reported an RTT.
type LifetimeStats struct {
	SuccessCount int     `json:"success_count"`
	MinMs        float64 `json:"min_ms"`
	MaxMs        float64 `json:"max_ms"`
	AvgMs        float64 `json:"avg_ms"`
	JitterMs     float64 `json:"jitter_ms"`
}

// TraceStatus is the consumer view of the trace session
type TraceStatus struct {
	Running     bool      `json:"running"`
	Lines       []string  `json:"lines,omitempty"`
	Err         string    `json:"error,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Sample is one probe result as broadcast to subscribers
type Sample struct {
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
	Seq       int       `json:"seq"`
	Received  bool      `json:"received"`
	LatencyMs float64   `json:"latency_ms"` // -1 when no numeric RTT
}
