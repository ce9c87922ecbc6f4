package monitor

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/wellsgz/reach/internal/probe"
)

// fakePinger replays scripted outcomes, repeating the last one forever
type fakePinger struct {
	host     string
	mu       sync.Mutex
	outcomes []probe.Outcome
	idx      int
}

func (p *fakePinger) Host() string { return p.host }

func (p *fakePinger) Ping(ctx context.Context) probe.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.outcomes) == 0 {
		return probe.Outcome{Received: true, LatencyMs: 1}
	}
	out := p.outcomes[p.idx]
	if p.idx < len(p.outcomes)-1 {
		p.idx++
	}
	return out
}

// fakeTracer hands out runs built by start; the default is an
// immediately completed run with no output
type fakeTracer struct {
	host  string
	start func() (probe.TraceRun, error)

	mu    sync.Mutex
	calls int
}

func (t *fakeTracer) Host() string { return t.host }

func (t *fakeTracer) Start(ctx context.Context) (probe.TraceRun, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	if t.start == nil {
		return newScriptedRun(nil, 0), nil
	}
	return t.start()
}

func (t *fakeTracer) startCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// scriptedRun is a trace process that already finished: its output is
// buffered and its exit status is ready
type scriptedRun struct {
	lines    chan string
	exitCode int
}

func newScriptedRun(lines []string, exitCode int) *scriptedRun {
	r := &scriptedRun{lines: make(chan string, len(lines)+1), exitCode: exitCode}
	for _, line := range lines {
		r.lines <- line
	}
	close(r.lines)
	return r
}

func (r *scriptedRun) Lines() <-chan string { return r.lines }

func (r *scriptedRun) Wait(grace time.Duration) (int, error) { return r.exitCode, nil }

func (r *scriptedRun) Kill() {}

// hangingRun produces nothing until killed, like a trace stuck on a
// silent hop
type hangingRun struct {
	lines  chan string
	killed chan struct{}
	once   sync.Once
}

func newHangingRun() *hangingRun {
	r := &hangingRun{lines: make(chan string), killed: make(chan struct{})}
	go func() {
		<-r.killed
		close(r.lines)
	}()
	return r
}

func (r *hangingRun) Lines() <-chan string { return r.lines }

func (r *hangingRun) Wait(grace time.Duration) (int, error) {
	select {
	case <-r.killed:
		return -1, nil
	case <-time.After(grace):
		return 0, errors.New("no exit status")
	}
}

func (r *hangingRun) Kill() { r.once.Do(func() { close(r.killed) }) }

// lingeringRun emits its lines but never reports an exit status
type lingeringRun struct {
	lines chan string
}

func newLingeringRun(lines []string) *lingeringRun {
	r := &lingeringRun{lines: make(chan string, len(lines)+1)}
	for _, line := range lines {
		r.lines <- line
	}
	close(r.lines)
	return r
}

func (r *lingeringRun) Lines() <-chan string { return r.lines }

func (r *lingeringRun) Wait(grace time.Duration) (int, error) {
	return 0, errors.New("trace still running after " + grace.String())
}

func (r *lingeringRun) Kill() {}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNewSnapshotDefaults(t *testing.T) {
	m := New(Config{Target: "host.test"}, nil, nil)

	snap := m.Snapshot()
	if snap.Target != "host.test" {
		t.Errorf("Target = %q, want %q", snap.Target, "host.test")
	}
	if !snap.Monitoring {
		t.Error("Monitoring = false, want true")
	}
	if snap.TotalSent != 0 || snap.TotalReceived != 0 {
		t.Errorf("counters = %d/%d, want 0/0", snap.TotalSent, snap.TotalReceived)
	}
	if snap.LastLatencyMs != -1 {
		t.Errorf("LastLatencyMs = %v, want -1", snap.LastLatencyMs)
	}
	if len(snap.LatencyHistory) != 0 || len(snap.LossHistory) != 0 {
		t.Errorf("histories not empty: %v, %v", snap.LatencyHistory, snap.LossHistory)
	}
	if snap.WindowSize != DefaultWindowSize {
		t.Errorf("WindowSize = %d, want %d", snap.WindowSize, DefaultWindowSize)
	}
	lt := snap.Lifetime
	if lt.SuccessCount != 0 || lt.MinMs != -1 || lt.MaxMs != -1 || lt.AvgMs != -1 || lt.JitterMs != -1 {
		t.Errorf("Lifetime = %+v, want all latency fields -1", lt)
	}
	if snap.Trace.Running {
		t.Error("Trace.Running = true before any trace")
	}
}

func TestRecordOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		outcomes     []probe.Outcome
		wantSent     int
		wantReceived int
		wantLast     float64
		wantLatency  []float64
		wantLossPct  float64
	}{
		{
			name: "all replies",
			outcomes: []probe.Outcome{
				{Received: true, LatencyMs: 20},
				{Received: true, LatencyMs: 30},
			},
			wantSent:     2,
			wantReceived: 2,
			wantLast:     30,
			wantLatency:  []float64{20, 30},
			wantLossPct:  0,
		},
		{
			name: "loss resets last latency",
			outcomes: []probe.Outcome{
				{Received: true, LatencyMs: 20},
				{Received: false, LatencyMs: -1},
			},
			wantSent:     2,
			wantReceived: 1,
			wantLast:     -1,
			wantLatency:  []float64{20, -1},
			wantLossPct:  50,
		},
		{
			name: "reply without rtt keeps last latency",
			outcomes: []probe.Outcome{
				{Received: true, LatencyMs: 20},
				{Received: true, LatencyMs: -1},
			},
			wantSent:     2,
			wantReceived: 2,
			wantLast:     20,
			wantLatency:  []float64{20, -1},
			wantLossPct:  0,
		},
		{
			name: "all lost",
			outcomes: []probe.Outcome{
				{Received: false, LatencyMs: -1},
				{Received: false, LatencyMs: -1},
			},
			wantSent:     2,
			wantReceived: 0,
			wantLast:     -1,
			wantLatency:  []float64{-1, -1},
			wantLossPct:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Config{Target: "host.test"}, nil, nil)
			for _, out := range tt.outcomes {
				m.record(out)
			}

			snap := m.Snapshot()
			if snap.TotalSent != tt.wantSent {
				t.Errorf("TotalSent = %d, want %d", snap.TotalSent, tt.wantSent)
			}
			if snap.TotalReceived != tt.wantReceived {
				t.Errorf("TotalReceived = %d, want %d", snap.TotalReceived, tt.wantReceived)
			}
			if snap.LastLatencyMs != tt.wantLast {
				t.Errorf("LastLatencyMs = %v, want %v", snap.LastLatencyMs, tt.wantLast)
			}
			if !reflect.DeepEqual(snap.LatencyHistory, tt.wantLatency) {
				t.Errorf("LatencyHistory = %v, want %v", snap.LatencyHistory, tt.wantLatency)
			}
			if len(snap.LossHistory) != tt.wantSent {
				t.Fatalf("LossHistory has %d entries, want %d", len(snap.LossHistory), tt.wantSent)
			}
			if got := snap.LossHistory[len(snap.LossHistory)-1]; got != tt.wantLossPct {
				t.Errorf("final loss pct = %v, want %v", got, tt.wantLossPct)
			}
		})
	}
}

func TestRecordLifetimeAggregates(t *testing.T) {
	m := New(Config{Target: "host.test"}, nil, nil)
	outcomes := []probe.Outcome{
		{Received: true, LatencyMs: 20},
		{Received: false, LatencyMs: -1},
		{Received: true, LatencyMs: 30},
		{Received: true, LatencyMs: -1}, // reply without an RTT
		{Received: true, LatencyMs: 25},
	}
	for _, out := range outcomes {
		m.record(out)
	}

	lt := m.Snapshot().Lifetime
	if lt.SuccessCount != 3 {
		t.Errorf("SuccessCount = %d, want 3", lt.SuccessCount)
	}
	if lt.MinMs != 20 {
		t.Errorf("MinMs = %v, want 20", lt.MinMs)
	}
	if lt.MaxMs != 30 {
		t.Errorf("MaxMs = %v, want 30", lt.MaxMs)
	}
	if lt.AvgMs != 25 {
		t.Errorf("AvgMs = %v, want 25", lt.AvgMs)
	}
	// Pairs |30-20| and |25-30|: the loss and the bare reply in
	// between do not break the pairing
	if lt.JitterMs != 7.5 {
		t.Errorf("JitterMs = %v, want 7.5", lt.JitterMs)
	}
}

func TestRecordSampleValues(t *testing.T) {
	m := New(Config{Target: "host.test"}, nil, nil)

	s := m.record(probe.Outcome{Received: true, LatencyMs: 12.5})
	if s.Target != "host.test" || s.Seq != 1 || !s.Received || s.LatencyMs != 12.5 {
		t.Errorf("sample = %+v, want seq 1 received 12.5ms", s)
	}

	s = m.record(probe.Outcome{Received: true, LatencyMs: -1})
	if s.Seq != 2 || !s.Received || s.LatencyMs != -1 {
		t.Errorf("sample = %+v, want seq 2 received without RTT", s)
	}

	s = m.record(probe.Outcome{Received: false, LatencyMs: -1})
	if s.Seq != 3 || s.Received || s.LatencyMs != -1 {
		t.Errorf("sample = %+v, want seq 3 lost", s)
	}
}

func TestRecordHistoryBounded(t *testing.T) {
	m := New(Config{Target: "host.test", HistorySize: 5, WindowSize: 5, MinWindow: 1}, nil, nil)
	for i := 0; i < 8; i++ {
		m.record(probe.Outcome{Received: true, LatencyMs: float64(10 + i)})
	}

	snap := m.Snapshot()
	want := []float64{13, 14, 15, 16, 17}
	if !reflect.DeepEqual(snap.LatencyHistory, want) {
		t.Errorf("LatencyHistory = %v, want %v", snap.LatencyHistory, want)
	}
	if len(snap.LossHistory) != 5 {
		t.Errorf("LossHistory has %d entries, want 5", len(snap.LossHistory))
	}
	if snap.TotalSent != 8 {
		t.Errorf("TotalSent = %d, want 8", snap.TotalSent)
	}
}

func TestAdjustWindowClamps(t *testing.T) {
	m := New(Config{Target: "host.test", HistorySize: 100, WindowSize: 50, MinWindow: 10}, nil, nil)

	tests := []struct {
		delta int
		want  int
	}{
		{10, 60},
		{1000, 100},
		{10, 100},
		{-1000, 10},
		{-10, 10},
		{20, 30},
	}
	for _, tt := range tests {
		if got := m.AdjustWindow(tt.delta); got != tt.want {
			t.Errorf("AdjustWindow(%d) = %d, want %d", tt.delta, got, tt.want)
		}
	}
	if got := m.Snapshot().WindowSize; got != 30 {
		t.Errorf("WindowSize = %d after adjustments, want 30", got)
	}
}

func TestViewToggles(t *testing.T) {
	m := New(Config{Target: "host.test"}, nil, nil)

	m.ToggleFullTrace()
	m.ScrollTrace(3)
	snap := m.Snapshot()
	if !snap.ShowFullTrace || snap.TraceScroll != 3 {
		t.Errorf("full=%v scroll=%d, want full view scrolled to 3", snap.ShowFullTrace, snap.TraceScroll)
	}

	m.ScrollTrace(-10)
	if got := m.Snapshot().TraceScroll; got != 0 {
		t.Errorf("TraceScroll = %d after scrolling past the top, want 0", got)
	}

	m.ScrollTrace(2)
	m.ToggleFullTrace()
	snap = m.Snapshot()
	if snap.ShowFullTrace || snap.TraceScroll != 0 {
		t.Errorf("full=%v scroll=%d after leaving full view, want collapsed at 0", snap.ShowFullTrace, snap.TraceScroll)
	}

	m.ToggleHelp()
	m.ToggleControls()
	snap = m.Snapshot()
	if !snap.ShowHelp || !snap.ShowControls {
		t.Errorf("help=%v controls=%v, want both on", snap.ShowHelp, snap.ShowControls)
	}
	m.ToggleHelp()
	if m.Snapshot().ShowHelp {
		t.Error("ShowHelp = true after second toggle")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	tracer := &fakeTracer{host: "host.test", start: func() (probe.TraceRun, error) {
		return newScriptedRun([]string{" 1  gw (10.0.0.1)  1.0 ms"}, 0), nil
	}}
	m := New(Config{Target: "host.test"}, nil, tracer)
	m.record(probe.Outcome{Received: true, LatencyMs: 20})
	m.RequestTrace()
	waitFor(t, 2*time.Second, func() bool { return !m.Snapshot().Trace.Running })

	snap := m.Snapshot()
	snap.LatencyHistory[0] = 999
	snap.LossHistory[0] = 999
	snap.Trace.Lines[0] = "tampered"

	fresh := m.Snapshot()
	if fresh.LatencyHistory[0] != 20 {
		t.Errorf("LatencyHistory[0] = %v after mutating a snapshot, want 20", fresh.LatencyHistory[0])
	}
	if fresh.LossHistory[0] != 0 {
		t.Errorf("LossHistory[0] = %v after mutating a snapshot, want 0", fresh.LossHistory[0])
	}
	if fresh.Trace.Lines[0] != " 1  gw (10.0.0.1)  1.0 ms" {
		t.Errorf("Trace.Lines[0] = %q after mutating a snapshot", fresh.Trace.Lines[0])
	}
}

func TestRequestTraceSingleFlight(t *testing.T) {
	run := newHangingRun()
	tracer := &fakeTracer{host: "host.test", start: func() (probe.TraceRun, error) { return run, nil }}
	m := New(Config{Target: "host.test"}, nil, tracer)

	if !m.RequestTrace() {
		t.Fatal("first RequestTrace() = false, want true")
	}
	if m.RequestTrace() {
		t.Error("RequestTrace() = true while a trace is running")
	}
	if got := tracer.startCount(); got != 1 {
		t.Errorf("tracer started %d times, want 1", got)
	}

	run.Kill()
	waitFor(t, 2*time.Second, func() bool { return !m.Snapshot().Trace.Running })

	if !m.RequestTrace() {
		t.Error("RequestTrace() = false after the previous trace finished")
	}
	waitFor(t, 2*time.Second, func() bool { return !m.Snapshot().Trace.Running })
}

func TestTraceCompletion(t *testing.T) {
	lines := []string{
		"traceroute to example.net (93.184.216.34), 30 hops max, 60 byte packets",
		" 1  gw (192.168.1.1)  1.0 ms  1.2 ms",
		" 2  * * *",
		" 3  example.net (93.184.216.34)  12.0 ms",
	}
	tracer := &fakeTracer{host: "example.net", start: func() (probe.TraceRun, error) {
		return newScriptedRun(lines, 0), nil
	}}
	m := New(Config{Target: "example.net"}, nil, tracer)

	if !m.RequestTrace() {
		t.Fatal("RequestTrace() = false, want true")
	}
	waitFor(t, 2*time.Second, func() bool { return !m.Snapshot().Trace.Running })

	tr := m.Snapshot().Trace
	if !reflect.DeepEqual(tr.Lines, lines) {
		t.Errorf("Trace.Lines = %v, want %v", tr.Lines, lines)
	}
	if tr.Err != "" {
		t.Errorf("Trace.Err = %q, want empty", tr.Err)
	}
	if want := "3 hops, max RTT 12.0 ms, timeouts at 2"; tr.Summary != want {
		t.Errorf("Trace.Summary = %q, want %q", tr.Summary, want)
	}
	if tr.StartedAt.IsZero() || tr.CompletedAt.IsZero() {
		t.Error("trace timestamps not set")
	}
	if tr.CompletedAt.Before(tr.StartedAt) {
		t.Errorf("CompletedAt %v before StartedAt %v", tr.CompletedAt, tr.StartedAt)
	}
}

func TestTraceAbnormalExit(t *testing.T) {
	tracer := &fakeTracer{host: "nosuch.test", start: func() (probe.TraceRun, error) {
		return newScriptedRun([]string{"nosuch.test: Name or service not known"}, 2), nil
	}}
	m := New(Config{Target: "nosuch.test"}, nil, tracer)

	m.RequestTrace()
	waitFor(t, 2*time.Second, func() bool { return !m.Snapshot().Trace.Running })

	tr := m.Snapshot().Trace
	if want := "trace exited with code 2"; tr.Err != want {
		t.Errorf("Trace.Err = %q, want %q", tr.Err, want)
	}
	if len(tr.Lines) != 1 {
		t.Errorf("trace kept %d lines, want 1", len(tr.Lines))
	}
	if tr.Summary != "" {
		t.Errorf("Trace.Summary = %q, want empty", tr.Summary)
	}
}

func TestTraceStartFailure(t *testing.T) {
	tracer := &fakeTracer{host: "host.test", start: func() (probe.TraceRun, error) {
		return nil, errors.New("executable file not found in $PATH")
	}}
	m := New(Config{Target: "host.test"}, nil, tracer)

	if !m.RequestTrace() {
		t.Fatal("RequestTrace() = false, want true")
	}
	waitFor(t, 2*time.Second, func() bool { return !m.Snapshot().Trace.Running })

	tr := m.Snapshot().Trace
	if tr.Err == "" {
		t.Error("Trace.Err empty after a failed start")
	}
	if tr.CompletedAt.IsZero() {
		t.Error("CompletedAt not set after a failed start")
	}
}

func TestTraceTimeout(t *testing.T) {
	tracer := &fakeTracer{host: "host.test", start: func() (probe.TraceRun, error) {
		return newHangingRun(), nil
	}}
	m := New(Config{Target: "host.test", TraceTimeout: 50 * time.Millisecond}, nil, tracer)

	m.RequestTrace()
	waitFor(t, 2*time.Second, func() bool { return !m.Snapshot().Trace.Running })

	tr := m.Snapshot().Trace
	if want := "trace timed out after 50ms"; tr.Err != want {
		t.Errorf("Trace.Err = %q, want %q", tr.Err, want)
	}
	if tr.Summary != "" {
		t.Errorf("Trace.Summary = %q, want empty", tr.Summary)
	}
}

func TestTraceMissingExitStatus(t *testing.T) {
	tracer := &fakeTracer{host: "host.test", start: func() (probe.TraceRun, error) {
		return newLingeringRun([]string{" 1  gw (10.0.0.1)  1.0 ms  2.0 ms  3.0 ms"}), nil
	}}
	m := New(Config{Target: "host.test", TraceWait: 20 * time.Millisecond}, nil, tracer)

	m.RequestTrace()
	waitFor(t, 2*time.Second, func() bool { return !m.Snapshot().Trace.Running })

	// A missing exit status is not a failure: the output stands
	tr := m.Snapshot().Trace
	if tr.Err != "" {
		t.Errorf("Trace.Err = %q, want empty", tr.Err)
	}
	if want := "1 hops, max RTT 3.0 ms, no timeouts"; tr.Summary != want {
		t.Errorf("Trace.Summary = %q, want %q", tr.Summary, want)
	}
}

func TestStopKillsRunningTrace(t *testing.T) {
	tracer := &fakeTracer{host: "host.test", start: func() (probe.TraceRun, error) {
		return newHangingRun(), nil
	}}
	m := New(Config{Target: "host.test"}, nil, tracer)
	m.RequestTrace()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return while a trace was running")
	}

	if m.Snapshot().Trace.Running {
		t.Error("trace still marked running after Stop()")
	}
	if m.RequestTrace() {
		t.Error("RequestTrace() = true after Stop()")
	}
}

func TestStartDeliversSamples(t *testing.T) {
	pinger := &fakePinger{host: "host.test", outcomes: []probe.Outcome{{Received: true, LatencyMs: 8}}}
	m := New(Config{Target: "host.test", Interval: 10 * time.Millisecond}, pinger, &fakeTracer{host: "host.test"})
	ch := m.Subscribe()
	m.Start()

	select {
	case s, ok := <-ch:
		if !ok {
			t.Fatal("sample channel closed before any sample")
		}
		if s.Target != "host.test" || !s.Received || s.LatencyMs != 8 {
			t.Errorf("sample = %+v, want received 8ms from host.test", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no sample before timeout")
	}

	m.Stop()
	for range ch {
		// Drain until Stop closes the channel
	}

	snap := m.Snapshot()
	if snap.TotalSent == 0 {
		t.Error("no probes recorded")
	}
	if snap.TotalReceived > snap.TotalSent {
		t.Errorf("received %d > sent %d", snap.TotalReceived, snap.TotalSent)
	}
}

func TestPauseSuspendsProbing(t *testing.T) {
	pinger := &fakePinger{host: "host.test"}
	m := New(Config{Target: "host.test", Interval: 5 * time.Millisecond, PausePoll: time.Millisecond}, pinger, &fakeTracer{host: "host.test"})
	m.Start()
	defer m.Stop()

	waitFor(t, 2*time.Second, func() bool { return m.Snapshot().TotalSent > 0 })

	m.Pause()
	time.Sleep(50 * time.Millisecond) // let an in-flight probe land
	sent := m.Snapshot().TotalSent
	time.Sleep(50 * time.Millisecond)
	if got := m.Snapshot().TotalSent; got != sent {
		t.Errorf("TotalSent moved from %d to %d while paused", sent, got)
	}
	if m.Snapshot().Monitoring {
		t.Error("Monitoring = true while paused")
	}

	m.Resume()
	waitFor(t, 2*time.Second, func() bool { return m.Snapshot().TotalSent > sent })
}

func TestTraceOnStart(t *testing.T) {
	tracer := &fakeTracer{host: "host.test"}
	m := New(Config{Target: "host.test", Interval: 10 * time.Millisecond, TraceOnStart: true},
		&fakePinger{host: "host.test"}, tracer)
	m.Start()
	defer m.Stop()

	waitFor(t, 2*time.Second, func() bool { return tracer.startCount() == 1 })
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	m := New(Config{Target: "host.test"}, nil, nil)
	ch := m.Subscribe()
	m.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}

	ch2 := m.Subscribe()
	m.broadcast(Sample{Target: "host.test", Seq: 1, Received: true, LatencyMs: 5})
	select {
	case s := <-ch2:
		if s.LatencyMs != 5 {
			t.Errorf("sample latency = %v, want 5", s.LatencyMs)
		}
	default:
		t.Error("no sample delivered to remaining subscriber")
	}
}
