package probe

import (
	"math"
	"testing"
)

func TestExtractRTT(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   float64
		wantOK bool
	}{
		{
			name:   "linux iputils reply",
			output: "64 bytes from 142.250.187.206: icmp_seq=1 ttl=115 time=23.4 ms",
			want:   23.4,
			wantOK: true,
		},
		{
			name:   "sub-millisecond reply",
			output: "64 bytes from 10.0.0.1: icmp_seq=1 ttl=64 time<1 ms",
			want:   1,
			wantOK: true,
		},
		{
			name:   "no space before ms",
			output: "64 bytes from 10.0.0.1: icmp_seq=1 ttl=64 time=12.3ms",
			want:   12.3,
			wantOK: true,
		},
		{
			name: "full multi-line output",
			output: "PING example.com (93.184.216.34) 56(84) bytes of data.\n" +
				"64 bytes from 93.184.216.34: icmp_seq=1 ttl=56 time=88.1 ms\n" +
				"\n--- example.com ping statistics ---\n" +
				"1 packets transmitted, 1 received, 0% packet loss, time 0ms\n" +
				"rtt min/avg/max/mdev = 88.123/88.123/88.123/0.000 ms",
			want:   88.1,
			wantOK: true,
		},
		{
			name: "timeout output has no token",
			output: "PING example.com (93.184.216.34) 56(84) bytes of data.\n" +
				"\n--- example.com ping statistics ---\n" +
				"1 packets transmitted, 0 received, 100% packet loss, time 0ms",
			wantOK: false,
		},
		{
			name:   "time without separator",
			output: "sometimes things mention timeouts",
			wantOK: false,
		},
		{
			name:   "first token malformed, second parses",
			output: "time=abc ms then time=45.6 ms",
			want:   45.6,
			wantOK: true,
		},
		{
			name:   "value without ms suffix",
			output: "time=12.3 seconds",
			wantOK: false,
		},
		{
			name:   "empty output",
			output: "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractRTT(tt.output)
			if ok != tt.wantOK {
				t.Fatalf("extractRTT(%q) ok = %v, want %v", tt.output, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("extractRTT(%q) = %v, want %v", tt.output, got, tt.want)
			}
		})
	}
}

func TestParseMsValue(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   float64
		wantOK bool
	}{
		{"plain", "23.4 ms", 23.4, true},
		{"glued", "23.4ms", 23.4, true},
		{"tab separated", "5\tms", 5, true},
		{"integer", "120 ms rest of line", 120, true},
		{"no number", "ms", 0, false},
		{"dotted quad", "10.0.0.1 ms", 0, false},
		{"wrong unit", "12 s", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseMsValue(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("parseMsValue(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("parseMsValue(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
