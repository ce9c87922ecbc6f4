package traceparse

import (
	"fmt"
	"strconv"
	"strings"
)

// HopRecord is one parsed hop from raw trace output
type HopRecord struct {
	Hop      int       `json:"hop"`
	Host     string    `json:"host"`
	IP       string    `json:"ip,omitempty"`
	RTTs     []float64 `json:"rtts"`
	TimedOut bool      `json:"timed_out"`
}

// ParseHops extracts hop records from trace output lines. A line counts
// as a hop only when it starts (after leading whitespace) with a
// decimal hop number followed by whitespace; headers and error chatter
// never do, so they fall through.
func ParseHops(lines []string) []HopRecord {
	var hops []HopRecord
	for _, line := range lines {
		rest := strings.TrimLeft(line, " \t")
		n := 0
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		if n == 0 || n == len(rest) || (rest[n] != ' ' && rest[n] != '\t') {
			continue
		}
		hopNum, err := strconv.Atoi(rest[:n])
		if err != nil {
			continue
		}

		host, ip := splitHostIP(strings.TrimLeft(rest[n:], " \t"))
		rtts := scanRTTs(line)
		hops = append(hops, HopRecord{
			Hop:      hopNum,
			Host:     host,
			IP:       ip,
			RTTs:     rtts,
			TimedOut: len(rtts) == 0 || strings.Contains(line, "*"),
		})
	}
	return hops
}

// splitHostIP pulls the host label and a parenthesised IP out of the
// body of a hop line, falling back to the first bare token
func splitHostIP(body string) (host, ip string) {
	if op := strings.Index(body, "("); op >= 0 {
		if cp := strings.Index(body[op+1:], ")"); cp >= 0 {
			host = strings.TrimSpace(body[:op])
			if host == "" {
				host = "?"
			}
			return host, strings.TrimSpace(body[op+1 : op+1+cp])
		}
	}
	fields := strings.Fields(body)
	if len(fields) > 0 {
		host = fields[0]
	}
	return host, ""
}

// scanRTTs collects every "<number> ms" token on a line, in order.
// Tokens that do not parse as a number (dotted IPs before an "ms") are
// skipped.
func scanRTTs(line string) []float64 {
	var rtts []float64
	i := 0
	for i < len(line) {
		c := line[i]
		if (c < '0' || c > '9') && c != '.' {
			i++
			continue
		}
		j := i
		for j < len(line) && (line[j] >= '0' && line[j] <= '9' || line[j] == '.') {
			j++
		}
		k := j
		for k < len(line) && (line[k] == ' ' || line[k] == '\t') {
			k++
		}
		if strings.HasPrefix(line[k:], "ms") {
			if v, err := strconv.ParseFloat(line[i:j], 64); err == nil {
				rtts = append(rtts, v)
			}
		}
		i = j
	}
	return rtts
}

// BuildTable renders trace output as an aligned hop table. The first
// row is a header; hops without RTT samples render as "timeout".
func BuildTable(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]string, 0, len(lines)+1)
	rows = append(rows, fmt.Sprintf("%3s  %-40s  %s", "Hop", "Host / IP", "RTTs (ms)"))
	for _, h := range ParseHops(lines) {
		hostIP := h.Host
		if h.IP != "" && !strings.Contains(h.Host, h.IP) {
			hostIP = h.Host + " (" + h.IP + ")"
		}
		rtt := "timeout"
		if len(h.RTTs) > 0 {
			mn, avg, mx := minAvgMax(h.RTTs)
			rtt = fmt.Sprintf("min %.1f / avg %.1f / max %.1f", mn, avg, mx)
		}
		rows = append(rows, fmt.Sprintf("%3d  %-40.40s  %s", h.Hop, hostIP, rtt))
	}
	return rows
}

func minAvgMax(values []float64) (mn, avg, mx float64) {
	mn, mx = values[0], values[0]
	var sum float64
	for _, v := range values {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
		sum += v
	}
	return mn, sum / float64(len(values)), mx
}

// BuildSummary condenses trace output into one line: how deep the path
// goes, the maximum RTT seen on any hop (0 when nothing replied), and
// which hops timed out. Returns false when no hop lines were found.
func BuildSummary(lines []string) (string, bool) {
	hops := ParseHops(lines)
	if len(hops) == 0 {
		return "", false
	}

	lastHop := 0
	maxMs := 0.0
	var timedOut []string
	for _, h := range hops {
		if h.Hop > lastHop {
			lastHop = h.Hop
		}
		for _, v := range h.RTTs {
			if v > maxMs {
				maxMs = v
			}
		}
		if h.TimedOut {
			timedOut = append(timedOut, strconv.Itoa(h.Hop))
		}
	}

	if len(timedOut) == 0 {
		return fmt.Sprintf("%d hops, max RTT %.1f ms, no timeouts", lastHop, maxMs), true
	}
	return fmt.Sprintf("%d hops, max RTT %.1f ms, timeouts at %s",
		lastHop, maxMs, strings.Join(timedOut, ", ")), true
}
