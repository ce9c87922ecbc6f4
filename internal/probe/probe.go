package probe

import (
	"context"
	"time"
)

// Outcome is the result of a single latency probe. Received reports
// whether the target answered at all; LatencyMs is -1 when no numeric
// RTT was measured, which covers both lost probes and replies the
// runner could not time.
type Outcome struct {
	Received  bool    `json:"received"`
	LatencyMs float64 `json:"latency_ms"`
}

// lost marks a probe with no measurable reply
func lost() Outcome {
	return Outcome{LatencyMs: -1}
}

// Pinger runs one latency probe per call
type Pinger interface {
	// Host returns the probed host
	Host() string

	// Ping issues a single probe and classifies its outcome. Failures
	// are data, not errors: an unreachable host is a lost Outcome.
	Ping(ctx context.Context) Outcome
}

// Tracer starts path traces toward a host
type Tracer interface {
	// Host returns the traced host
	Host() string

	// Start launches one trace and returns a handle on its output
	Start(ctx context.Context) (TraceRun, error)
}

// TraceRun is a single in-flight path trace
type TraceRun interface {
	// Lines streams output lines as they arrive; the channel closes
	// when the output ends
	Lines() <-chan string

	// Wait blocks up to grace for the exit status. The error is non-nil
	// when the status could not be collected in time.
	Wait(grace time.Duration) (int, error)

	// Kill aborts the trace; output collected so far stays valid
	Kill()
}
