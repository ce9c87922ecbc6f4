package probe

import (
	"context"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// ICMPPinger sends a single native ICMP echo per call via pro-bing.
// Faster than shelling out, but raw sockets need CAP_NET_RAW, so an
// unprivileged UDP fallback is kept ready.
type ICMPPinger struct {
	host       string
	timeout    time.Duration
	privileged bool
}

// NewICMPPinger creates a native ICMP pinger for the given host
func NewICMPPinger(host string, timeout time.Duration) *ICMPPinger {
	return &ICMPPinger{
		host:       host,
		timeout:    timeout,
		privileged: true, // Try privileged mode first
	}
}

// Host returns the probed host
func (p *ICMPPinger) Host() string {
	return p.host
}

// Ping sends one echo request and reports the measured RTT
func (p *ICMPPinger) Ping(ctx context.Context) Outcome {
	pinger, err := probing.NewPinger(p.host)
	if err != nil {
		return lost()
	}

	pinger.Count = 1
	pinger.Timeout = p.timeout
	pinger.SetPrivileged(p.privileged)

	err = pinger.RunWithContext(ctx)
	if err != nil && p.privileged {
		// If privileged mode fails, try unprivileged mode
		p.privileged = false
		pinger.SetPrivileged(false)
		err = pinger.RunWithContext(ctx)
	}
	if err != nil {
		return lost()
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return lost()
	}
	return Outcome{Received: true, LatencyMs: float64(stats.AvgRtt.Microseconds()) / 1000.0}
}
