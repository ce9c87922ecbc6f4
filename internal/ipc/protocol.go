package ipc

import (
	"encoding/json"
	"time"
)

// Message types for IPC protocol
const (
	MsgTypeSubscribe   = "subscribe"
	MsgTypeUnsubscribe = "unsubscribe"
	MsgTypeGetSnapshot = "get_snapshot"
	MsgTypePause       = "pause"
	MsgTypeResume      = "resume"
	MsgTypeTrace       = "trace"
	MsgTypeWindow      = "window"
	MsgTypeFullTrace   = "full_trace"
	MsgTypeScroll      = "scroll"
	MsgTypeHelp        = "help"
	MsgTypeControls    = "controls"
	MsgTypeSample      = "sample"
	MsgTypeSnapshot    = "snapshot"
	MsgTypeWindowSize  = "window_size"
	MsgTypeError       = "error"
	MsgTypeOK          = "ok"
)

// Request is the base request structure. Data stays raw so each
// handler decodes only the payload it expects.
type Request struct {
	ID   string          `json:"id,omitempty"` // Unique request ID for response correlation
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response is the base response structure
type Response struct {
	ID    string          `json:"id,omitempty"` // Echo of request ID for correlation
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// SampleData is one ping sample as pushed to subscribed clients
type SampleData struct {
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
	Seq       int       `json:"seq"`
	Received  bool      `json:"received"`
	LatencyMs float64   `json:"latency_ms"` // -1 when no numeric RTT
}

// WindowRequest asks the daemon to move the statistics window
type WindowRequest struct {
	Delta int `json:"delta"`
}

// ScrollRequest moves the trace scroll offset
type ScrollRequest struct {
	Delta int `json:"delta"`
}

// TraceResponse reports whether a requested trace actually started
type TraceResponse struct {
	Started bool `json:"started"`
}

// WindowResponse carries the window size after an adjustment
type WindowResponse struct {
	Window int `json:"window"`
}

// marshalData encodes a payload for the Data field. A payload that
// cannot be encoded degrades to an empty one on the peer.
func marshalData(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
