package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"sync"

	"github.com/wellsgz/reach/internal/monitor"
)

// Server handles Unix socket connections from attached TUI clients
type Server struct {
	socketPath string
	listener   net.Listener
	monitor    *monitor.Monitor

	clients   map[*serverClient]struct{}
	clientsMu sync.RWMutex

	ctx    chan struct{} // closed when stopping
	wg     sync.WaitGroup
	closed bool
	mu     sync.Mutex
}

// serverClient represents a connected client
type serverClient struct {
	conn       net.Conn
	server     *Server
	encoder    *json.Encoder
	subscribed bool
	mu         sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(socketPath string) *Server {
	return &Server{
		socketPath: socketPath,
		clients:    make(map[*serverClient]struct{}),
		ctx:        make(chan struct{}),
	}
}

// SetMonitor sets the monitor the server exposes
func (s *Server) SetMonitor(mon *monitor.Monitor) {
	s.monitor = mon
}

// Start begins listening for connections
func (s *Server) Start() error {
	// Remove existing socket file
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0660); err != nil {
		log.Printf("[IPC] Warning: failed to set socket permissions: %v", err)
	}

	log.Printf("[IPC] Server listening on %s", s.socketPath)

	// Stream ping samples to subscribed clients
	if s.monitor != nil {
		sampleCh := s.monitor.Subscribe()
		s.wg.Add(1)
		go s.broadcastSamples(sampleCh)
	}

	// Accept connections
	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts new connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx:
				return // Server is stopping
			default:
				log.Printf("[IPC] Accept error: %v", err)
				continue
			}
		}

		client := &serverClient{
			conn:    conn,
			server:  s,
			encoder: json.NewEncoder(conn),
		}

		s.clientsMu.Lock()
		s.clients[client] = struct{}{}
		s.clientsMu.Unlock()

		s.wg.Add(1)
		go s.handleClient(client)
	}
}

// handleClient handles a client connection
func (s *Server) handleClient(client *serverClient) {
	defer s.wg.Done()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client)
		s.clientsMu.Unlock()
		client.conn.Close()
	}()

	scanner := bufio.NewScanner(client.conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer

	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			client.sendError("", fmt.Sprintf("invalid request: %v", err))
			continue
		}

		s.handleRequest(client, &req)
	}

	if err := scanner.Err(); err != nil {
		log.Printf("[IPC] Client read error: %v", err)
	}
}

// handleRequest processes a client request
func (s *Server) handleRequest(client *serverClient, req *Request) {
	switch req.Type {
	case MsgTypeSubscribe:
		client.mu.Lock()
		client.subscribed = true
		client.mu.Unlock()
		client.sendOK(req.ID)
		return

	case MsgTypeUnsubscribe:
		client.mu.Lock()
		client.subscribed = false
		client.mu.Unlock()
		client.sendOK(req.ID)
		return
	}

	if s.monitor == nil {
		client.sendError(req.ID, "monitor not available")
		return
	}

	switch req.Type {
	case MsgTypeGetSnapshot:
		client.sendResponse(req.ID, MsgTypeSnapshot, s.monitor.Snapshot())

	case MsgTypePause:
		s.monitor.Pause()
		client.sendOK(req.ID)

	case MsgTypeResume:
		s.monitor.Resume()
		client.sendOK(req.ID)

	case MsgTypeTrace:
		started := s.monitor.RequestTrace()
		client.sendResponse(req.ID, MsgTypeTrace, TraceResponse{Started: started})

	case MsgTypeWindow:
		var winReq WindowRequest
		if len(req.Data) > 0 {
			if err := json.Unmarshal(req.Data, &winReq); err != nil {
				client.sendError(req.ID, fmt.Sprintf("invalid window request: %v", err))
				return
			}
		}
		window := s.monitor.AdjustWindow(winReq.Delta)
		client.sendResponse(req.ID, MsgTypeWindowSize, WindowResponse{Window: window})

	case MsgTypeFullTrace:
		s.monitor.ToggleFullTrace()
		client.sendOK(req.ID)

	case MsgTypeScroll:
		var scrollReq ScrollRequest
		if len(req.Data) > 0 {
			if err := json.Unmarshal(req.Data, &scrollReq); err != nil {
				client.sendError(req.ID, fmt.Sprintf("invalid scroll request: %v", err))
				return
			}
		}
		s.monitor.ScrollTrace(scrollReq.Delta)
		client.sendOK(req.ID)

	case MsgTypeHelp:
		s.monitor.ToggleHelp()
		client.sendOK(req.ID)

	case MsgTypeControls:
		s.monitor.ToggleControls()
		client.sendOK(req.ID)

	default:
		client.sendError(req.ID, fmt.Sprintf("unknown request type: %s", req.Type))
	}
}

// broadcastSamples pushes ping samples to subscribed clients
func (s *Server) broadcastSamples(ch <-chan monitor.Sample) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx:
			return
		case sample, ok := <-ch:
			if !ok {
				return
			}

			data := SampleData{
				Target:    sample.Target,
				Timestamp: sample.Timestamp,
				Seq:       sample.Seq,
				Received:  sample.Received,
				LatencyMs: sample.LatencyMs,
			}

			resp := Response{
				Type: MsgTypeSample,
				Data: marshalData(data),
			}

			s.clientsMu.RLock()
			for client := range s.clients {
				client.mu.Lock()
				if client.subscribed {
					if err := client.encoder.Encode(resp); err != nil {
						log.Printf("[IPC] Failed to send sample to client: %v", err)
					}
				}
				client.mu.Unlock()
			}
			s.clientsMu.RUnlock()
		}
	}
}

// Stop stops the server
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.ctx)

	if s.listener != nil {
		s.listener.Close()
	}

	// Close all client connections
	s.clientsMu.Lock()
	for client := range s.clients {
		client.conn.Close()
	}
	s.clientsMu.Unlock()

	s.wg.Wait()

	// Remove socket file
	os.Remove(s.socketPath)

	log.Println("[IPC] Server stopped")
	return nil
}

// sendOK sends an OK response
func (c *serverClient) sendOK(reqID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.encoder.Encode(Response{ID: reqID, Type: MsgTypeOK})
}

// sendError sends an error response
func (c *serverClient) sendError(reqID string, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.encoder.Encode(Response{ID: reqID, Type: MsgTypeError, Error: msg})
}

// sendResponse sends a response with data
func (c *serverClient) sendResponse(reqID string, msgType string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.encoder.Encode(Response{ID: reqID, Type: msgType, Data: marshalData(data)}); err != nil {
		log.Printf("[IPC] Failed to encode response (type=%s): %v", msgType, err)
	}
}
