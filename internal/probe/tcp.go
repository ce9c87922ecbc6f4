package probe

import (
	"context"
	"net"
	"strconv"
	"time"
)

// TCPPinger times a TCP handshake instead of an ICMP echo, for targets
// that silently drop ICMP
type TCPPinger struct {
	host    string
	port    int
	timeout time.Duration
}

// NewTCPPinger creates a TCP connect pinger for host:port
func NewTCPPinger(host string, port int, timeout time.Duration) *TCPPinger {
	return &TCPPinger{host: host, port: port, timeout: timeout}
}

// Host returns the probed host
func (p *TCPPinger) Host() string {
	return p.host
}

// Ping opens one TCP connection and reports the connect latency
func (p *TCPPinger) Ping(ctx context.Context) Outcome {
	dialer := &net.Dialer{Timeout: p.timeout}
	address := net.JoinHostPort(p.host, strconv.Itoa(p.port))

	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", address)
	latency := time.Since(start)
	if err != nil {
		return lost()
	}
	conn.Close()

	return Outcome{Received: true, LatencyMs: float64(latency.Microseconds()) / 1000.0}
}
