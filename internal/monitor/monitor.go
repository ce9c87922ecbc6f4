package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/wellsgz/reach/internal/probe"
)

// Defaults for Config fields left at zero
const (
	DefaultInterval     = time.Second
	DefaultTraceTimeout = 5 * time.Minute
	DefaultTraceWait    = 5 * time.Second
	DefaultHistorySize  = 300
	DefaultWindowSize   = 60
	DefaultMinWindow    = 10
	DefaultPausePoll    = 100 * time.Millisecond
)

// WindowStep is how far one window adjustment moves
const WindowStep = 10

// Config holds the engine knobs
type Config struct {
	Target       string
	Interval     time.Duration
	TraceTimeout time.Duration
	TraceWait    time.Duration
	HistorySize  int
	WindowSize   int
	MinWindow    int
	PausePoll    time.Duration
	TraceOnStart bool
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.TraceTimeout <= 0 {
		c.TraceTimeout = DefaultTraceTimeout
	}
	if c.TraceWait <= 0 {
		c.TraceWait = DefaultTraceWait
	}
	if c.HistorySize <= 0 {
		c.HistorySize = DefaultHistorySize
	}
	if c.MinWindow <= 0 {
		c.MinWindow = DefaultMinWindow
	}
	if c.WindowSize <= 0 {
		c.WindowSize = DefaultWindowSize
	}
	if c.WindowSize < c.MinWindow {
		c.WindowSize = c.MinWindow
	}
	if c.WindowSize > c.HistorySize {
		c.WindowSize = c.HistorySize
	}
}

// Monitor owns the measurement state and both samplers for one target
type Monitor struct {
	cfg    Config
	pinger probe.Pinger
	tracer probe.Tracer

	mu sync.Mutex
	st state

	// Event broadcasting
	subscribers map[chan Sample]struct{}
	subMu       sync.RWMutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a monitor for one target. Probing starts with Start.
func New(cfg Config, pinger probe.Pinger, tracer probe.Tracer) *Monitor {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	m := &Monitor{
		cfg:         cfg,
		pinger:      pinger,
		tracer:      tracer,
		subscribers: make(map[chan Sample]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
	m.st = state{
		running:       true,
		monitoring:    true,
		lastLatencyMs: -1,
		latency:       newHistory(cfg.HistorySize),
		loss:          newHistory(cfg.HistorySize),
		windowSize:    cfg.WindowSize,
		minMs:         -1,
		maxMs:         -1,
		lastSuccessMs: -1,
	}
	return m
}

// Start launches the ping sampler and, when configured, a first trace
func (m *Monitor) Start() {
	log.Printf("[Monitor] Starting monitor for %s with interval %s", m.cfg.Target, m.cfg.Interval)

	m.wg.Add(1)
	go m.pingLoop()

	if m.cfg.TraceOnStart {
		m.RequestTrace()
	}
}

// Stop shuts down both samplers and waits for them to finish
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.st.running = false
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()

	m.subMu.Lock()
	for ch := range m.subscribers {
		close(ch)
		delete(m.subscribers, ch)
	}
	m.subMu.Unlock()

	log.Println("[Monitor] Stopped")
}

// Target returns the monitored host
func (m *Monitor) Target() string {
	return m.cfg.Target
}

// Pause suspends probing; counters and history keep their values
func (m *Monitor) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.monitoring = false
}

// Resume restarts probing after a pause
func (m *Monitor) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.monitoring = true
}

// AdjustWindow moves the statistics window by delta samples, clamped
// into [MinWindow, HistorySize]. Returns the resulting size.
func (m *Monitor) AdjustWindow(delta int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := m.st.windowSize + delta
	if size < m.cfg.MinWindow {
		size = m.cfg.MinWindow
	}
	if size > m.cfg.HistorySize {
		size = m.cfg.HistorySize
	}
	m.st.windowSize = size
	return size
}

// ToggleFullTrace switches between the condensed and full hop views
// and resets the scroll position
func (m *Monitor) ToggleFullTrace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.showFullTrace = !m.st.showFullTrace
	m.st.traceScroll = 0
}

// ScrollTrace moves the full-view scroll offset, never below zero.
// Renderers clamp the upper bound against their viewport.
func (m *Monitor) ScrollTrace(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.traceScroll += delta
	if m.st.traceScroll < 0 {
		m.st.traceScroll = 0
	}
}

// ToggleHelp flips the quality-explanation rows
func (m *Monitor) ToggleHelp() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.showHelp = !m.st.showHelp
}

// ToggleControls flips the key guide
func (m *Monitor) ToggleControls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.showControls = !m.st.showControls
}

// Snapshot returns a deep, consistent copy of the measurement state
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Target:         m.cfg.Target,
		Monitoring:     m.st.monitoring,
		TotalSent:      m.st.totalSent,
		TotalReceived:  m.st.totalReceived,
		LastLatencyMs:  m.st.lastLatencyMs,
		LatencyHistory: m.st.latency.values(),
		LossHistory:    m.st.loss.values(),
		WindowSize:     m.st.windowSize,
		Lifetime: LifetimeStats{
			SuccessCount: m.st.successCount,
			MinMs:        m.st.minMs,
			MaxMs:        m.st.maxMs,
			AvgMs:        -1,
			JitterMs:     -1,
		},
		Trace: TraceStatus{
			Running:     m.st.trace.running,
			Lines:       append([]string(nil), m.st.trace.lines...),
			Err:         m.st.trace.err,
			Summary:     m.st.trace.summary,
			StartedAt:   m.st.trace.startedAt,
			CompletedAt: m.st.trace.completedAt,
		},
		ShowFullTrace: m.st.showFullTrace,
		TraceScroll:   m.st.traceScroll,
		ShowHelp:      m.st.showHelp,
		ShowControls:  m.st.showControls,
	}
	if m.st.successCount > 0 {
		snap.Lifetime.AvgMs = m.st.rttSum / float64(m.st.successCount)
	}
	if m.st.jitterCount > 0 {
		snap.Lifetime.JitterMs = m.st.jitterSum / float64(m.st.jitterCount)
	}
	return snap
}

// Subscribe returns a channel that receives one Sample per probe
func (m *Monitor) Subscribe() <-chan Sample {
	ch := make(chan Sample, 100) // Buffered to prevent blocking

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscriber and closes its channel
func (m *Monitor) Unsubscribe(ch <-chan Sample) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			close(subCh)
			delete(m.subscribers, subCh)
			return
		}
	}
}

// broadcast sends a sample to all subscribers without blocking
func (m *Monitor) broadcast(s Sample) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- s:
		default:
			// Channel buffer full, skip to prevent blocking
		}
	}
}
