package monitor

import (
	"fmt"
	"log"
	"time"

	"github.com/wellsgz/reach/internal/logging"
	"github.com/wellsgz/reach/internal/traceparse"
)

// RequestTrace starts a path trace unless one is already running or
// the monitor is shutting down. Reports whether a trace was started.
func (m *Monitor) RequestTrace() bool {
	m.mu.Lock()
	if m.st.trace.running || !m.st.running {
		m.mu.Unlock()
		return false
	}
	m.st.trace = traceSession{running: true, startedAt: time.Now()}
	m.mu.Unlock()

	m.wg.Add(1)
	go m.runTrace()
	return true
}

// runTrace drives one trace to completion: stream lines into state as
// they arrive, kill the run at the hard ceiling, then settle the exit
// status, error and summary in one final commit
func (m *Monitor) runTrace() {
	defer m.wg.Done()

	run, err := m.tracer.Start(m.ctx)
	if err != nil {
		m.mu.Lock()
		m.st.trace.running = false
		m.st.trace.err = err.Error()
		m.st.trace.completedAt = time.Now()
		m.mu.Unlock()
		logging.Error("Trace", "failed to start trace", err)
		return
	}

	timer := time.AfterFunc(m.cfg.TraceTimeout, run.Kill)
	ctxDone := m.ctx.Done()

	var lines []string
stream:
	for {
		select {
		case line, ok := <-run.Lines():
			if !ok {
				break stream
			}
			lines = append(lines, line)
			m.mu.Lock()
			m.st.trace.lines = append(m.st.trace.lines, line)
			m.mu.Unlock()
		case <-ctxDone:
			run.Kill()
			ctxDone = nil // keep draining until the stream closes
		}
	}

	// Stop reports false when the ceiling already fired and killed the run
	timedOut := !timer.Stop()

	code, waitErr := run.Wait(m.cfg.TraceWait)

	errMsg := ""
	switch {
	case timedOut:
		errMsg = fmt.Sprintf("trace timed out after %s", m.cfg.TraceTimeout)
	case waitErr != nil:
		// Exit status never arrived; the run is winding down, not failed
	case code != 0:
		errMsg = fmt.Sprintf("trace exited with code %d", code)
	}

	summary := ""
	if errMsg == "" {
		if s, ok := traceparse.BuildSummary(lines); ok {
			summary = s
		}
	}

	m.mu.Lock()
	m.st.trace.lines = lines
	m.st.trace.err = errMsg
	m.st.trace.summary = summary
	m.st.trace.running = false
	m.st.trace.completedAt = time.Now()
	m.mu.Unlock()

	if errMsg != "" {
		log.Printf("[Trace] %s: %s", m.cfg.Target, errMsg)
	} else {
		log.Printf("[Trace] %s: completed with %d lines", m.cfg.Target, len(lines))
	}
}
