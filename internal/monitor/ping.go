package monitor

import (
	"math"
	"time"

	"github.com/wellsgz/reach/internal/logging"
	"github.com/wellsgz/reach/internal/probe"
)

// pingLoop is the long-running latency sampler: one probe per interval
// while monitoring, a short poll while paused
func (m *Monitor) pingLoop() {
	defer m.wg.Done()

	for {
		m.mu.Lock()
		running := m.st.running
		active := m.st.monitoring
		m.mu.Unlock()

		if !running {
			return
		}

		if !active {
			select {
			case <-m.ctx.Done():
				return
			case <-time.After(m.cfg.PausePoll):
			}
			continue
		}

		start := time.Now()
		out := m.pinger.Ping(m.ctx)

		select {
		case <-m.ctx.Done():
			// Shutdown interrupted the probe; drop the result
			return
		default:
		}

		sample := m.record(out)
		m.broadcast(sample)
		logging.Sample(m.cfg.Target, sample.LatencyMs, sample.Received)

		// Hold the cadence: sleep whatever is left of the interval
		if wait := m.cfg.Interval - time.Since(start); wait > 0 {
			select {
			case <-m.ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}
}

// record commits one probe outcome: counter bumps, aggregate updates
// and history appends land in a single critical section, so snapshots
// never see a half-applied probe
func (m *Monitor) record(out probe.Outcome) Sample {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := &m.st
	st.totalSent++

	switch {
	case out.Received && out.LatencyMs >= 0:
		rtt := out.LatencyMs
		st.totalReceived++
		st.lastLatencyMs = rtt
		if st.successCount == 0 || rtt < st.minMs {
			st.minMs = rtt
		}
		if st.successCount == 0 || rtt > st.maxMs {
			st.maxMs = rtt
		}
		if st.lastSuccessMs >= 0 {
			st.jitterSum += math.Abs(rtt - st.lastSuccessMs)
			st.jitterCount++
		}
		st.lastSuccessMs = rtt
		st.rttSum += rtt
		st.successCount++
		st.latency.push(rtt)
	case out.Received:
		// A reply without a usable RTT counts as received but leaves
		// the last latency alone and contributes no latency sample
		st.totalReceived++
		st.latency.push(-1)
	default:
		st.lastLatencyMs = -1
		st.latency.push(-1)
	}

	st.loss.push(float64(st.totalSent-st.totalReceived) / float64(st.totalSent) * 100)

	latency := -1.0
	if out.Received && out.LatencyMs >= 0 {
		latency = out.LatencyMs
	}
	return Sample{
		Target:    m.cfg.Target,
		Timestamp: time.Now(),
		Seq:       st.totalSent,
		Received:  out.Received,
		LatencyMs: latency,
	}
}
