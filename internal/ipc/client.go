package ipc

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/wellsgz/reach/internal/monitor"
)

// requestTimeout bounds every request round trip
const requestTimeout = 5 * time.Second

// Client connects to the IPC server
type Client struct {
	conn    net.Conn
	encoder *json.Encoder
	scanner *bufio.Scanner

	sampleCh chan SampleData

	// Pending requests waiting for responses, keyed by request ID
	pending   map[string]chan Response
	pendingMu sync.Mutex

	ctx    chan struct{}
	wg     sync.WaitGroup
	closed bool
	mu     sync.Mutex
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Connect connects to the IPC server
func Connect(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}

	client := &Client{
		conn:     conn,
		encoder:  json.NewEncoder(conn),
		scanner:  bufio.NewScanner(conn),
		sampleCh: make(chan SampleData, 100),
		pending:  make(map[string]chan Response),
		ctx:      make(chan struct{}),
	}

	// Set up scanner buffer
	client.scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	// Start reading responses
	client.wg.Add(1)
	go client.readLoop()

	return client, nil
}

// readLoop reads responses from the server
func (c *Client) readLoop() {
	defer c.wg.Done()

	for c.scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
			continue
		}

		switch resp.Type {
		case MsgTypeSample:
			var sample SampleData
			if err := json.Unmarshal(resp.Data, &sample); err != nil {
				continue
			}
			select {
			case c.sampleCh <- sample:
			default:
				// Channel full, skip
			}
		default:
			// Route response to waiting request by ID
			if resp.ID != "" {
				c.pendingMu.Lock()
				ch, ok := c.pending[resp.ID]
				if ok {
					// Send while holding lock to prevent race with cleanupRequest
					select {
					case ch <- resp:
					default:
						// Response channel full, skip
					}
				}
				c.pendingMu.Unlock()
			}
		}
	}

	close(c.sampleCh)
}

// sendRequest sends a request and returns a channel to receive the response
func (c *Client) sendRequest(reqType string, data any) (chan Response, string, error) {
	reqID := generateRequestID()
	respCh := make(chan Response, 1)

	// Register pending request
	c.pendingMu.Lock()
	c.pending[reqID] = respCh
	c.pendingMu.Unlock()

	// Send request
	c.mu.Lock()
	err := c.encoder.Encode(Request{ID: reqID, Type: reqType, Data: marshalData(data)})
	c.mu.Unlock()

	if err != nil {
		// Clean up on error
		c.pendingMu.Lock()
		delete(c.pending, reqID)
		c.pendingMu.Unlock()
		return nil, "", err
	}

	return respCh, reqID, nil
}

// cleanupRequest removes a pending request
func (c *Client) cleanupRequest(reqID string) {
	c.pendingMu.Lock()
	delete(c.pending, reqID)
	c.pendingMu.Unlock()
}

// call sends one request and waits for its response
func (c *Client) call(reqType string, data any) (Response, error) {
	respCh, reqID, err := c.sendRequest(reqType, data)
	if err != nil {
		return Response{}, err
	}
	defer c.cleanupRequest(reqID)

	select {
	case resp := <-respCh:
		if resp.Type == MsgTypeError {
			return Response{}, fmt.Errorf("%s failed: %s", reqType, resp.Error)
		}
		return resp, nil
	case <-time.After(requestTimeout):
		return Response{}, fmt.Errorf("%s timeout", reqType)
	}
}

// Subscribe subscribes to the daemon's ping sample stream
func (c *Client) Subscribe() error {
	_, err := c.call(MsgTypeSubscribe, nil)
	return err
}

// Unsubscribe stops the sample stream for this client
func (c *Client) Unsubscribe() error {
	_, err := c.call(MsgTypeUnsubscribe, nil)
	return err
}

// Samples returns a channel for receiving ping samples
func (c *Client) Samples() <-chan SampleData {
	return c.sampleCh
}

// Snapshot retrieves the full monitor state from the daemon
func (c *Client) Snapshot() (monitor.Snapshot, error) {
	resp, err := c.call(MsgTypeGetSnapshot, nil)
	if err != nil {
		return monitor.Snapshot{}, err
	}

	var snap monitor.Snapshot
	if err := json.Unmarshal(resp.Data, &snap); err != nil {
		return monitor.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// Pause suspends probing on the daemon
func (c *Client) Pause() error {
	_, err := c.call(MsgTypePause, nil)
	return err
}

// Resume restarts probing on the daemon
func (c *Client) Resume() error {
	_, err := c.call(MsgTypeResume, nil)
	return err
}

// Trace asks the daemon to start a path trace. Started is false when
// a trace was already running.
func (c *Client) Trace() (bool, error) {
	resp, err := c.call(MsgTypeTrace, nil)
	if err != nil {
		return false, err
	}

	var tr TraceResponse
	if err := json.Unmarshal(resp.Data, &tr); err != nil {
		return false, fmt.Errorf("failed to decode trace response: %w", err)
	}
	return tr.Started, nil
}

// AdjustWindow moves the statistics window and returns the new size
func (c *Client) AdjustWindow(delta int) (int, error) {
	resp, err := c.call(MsgTypeWindow, WindowRequest{Delta: delta})
	if err != nil {
		return 0, err
	}

	var win WindowResponse
	if err := json.Unmarshal(resp.Data, &win); err != nil {
		return 0, fmt.Errorf("failed to decode window response: %w", err)
	}
	return win.Window, nil
}

// ToggleFullTrace flips between the collapsed and full trace views
func (c *Client) ToggleFullTrace() error {
	_, err := c.call(MsgTypeFullTrace, nil)
	return err
}

// Scroll moves the trace scroll offset
func (c *Client) Scroll(delta int) error {
	_, err := c.call(MsgTypeScroll, ScrollRequest{Delta: delta})
	return err
}

// ToggleHelp flips the quality explanation line
func (c *Client) ToggleHelp() error {
	_, err := c.call(MsgTypeHelp, nil)
	return err
}

// ToggleControls flips the key guide
func (c *Client) ToggleControls() error {
	_, err := c.call(MsgTypeControls, nil)
	return err
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.ctx)
	c.conn.Close()
	c.wg.Wait()

	return nil
}
