package probe

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// SystemPinger shells out to the system ping binary, one echo request
// per call. Needs no raw-socket privileges and reports exactly what an
// interactive `ping -c 1` would.
type SystemPinger struct {
	host    string
	timeout time.Duration
}

// NewSystemPinger creates a subprocess pinger for the given host
func NewSystemPinger(host string, timeout time.Duration) *SystemPinger {
	return &SystemPinger{host: host, timeout: timeout}
}

// Host returns the probed host
func (p *SystemPinger) Host() string {
	return p.host
}

// Ping runs `ping -n -c 1 host` and scans stdout for the reported RTT.
// A non-zero exit (or timeout) is a loss; a zero exit without a
// parsable time token still counts as received.
func (p *SystemPinger) Ping(ctx context.Context) Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ping", "-n", "-c", "1", p.host).Output()
	if err != nil {
		return lost()
	}
	if rtt, ok := extractRTT(string(out)); ok {
		return Outcome{Received: true, LatencyMs: rtt}
	}
	return Outcome{Received: true, LatencyMs: -1}
}

// extractRTT scans ping output for the first "time=<value> ms" or
// "time<<value> ms" token and returns the value in milliseconds
func extractRTT(output string) (float64, bool) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "time")
		for idx >= 0 {
			rest := line[idx+len("time"):]
			if len(rest) > 0 && (rest[0] == '=' || rest[0] == '<') {
				if ms, ok := parseMsValue(rest[1:]); ok {
					return ms, true
				}
			}
			next := strings.Index(line[idx+1:], "time")
			if next < 0 {
				break
			}
			idx += 1 + next
		}
	}
	return 0, false
}

// parseMsValue parses "<number>[spaces]ms" at the start of s
func parseMsValue(s string) (float64, bool) {
	n := 0
	for n < len(s) && (s[n] >= '0' && s[n] <= '9' || s[n] == '.') {
		n++
	}
	if n == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:n], 64)
	if err != nil {
		return 0, false
	}
	rest := strings.TrimLeft(s[n:], " \t")
	if !strings.HasPrefix(rest, "ms") {
		return 0, false
	}
	return v, true
}
