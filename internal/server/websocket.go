package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The prediction stream is read-only; cross-origin viewers are fine.
		return true
	},
}

// client is one websocket subscriber. Its send slot holds at most one
// prediction: a slow reader skips intermediate values instead of building a
// backlog (latest-value-wins mirrors the pipeline's own backpressure).
type client struct {
	conn *websocket.Conn

	mu      sync.Mutex
	pending *PredictionResponse
	wake    chan struct{}

	done     chan struct{}
	doneOnce sync.Once
}

// closeDone signals the write loop to stop. Both the read loop and the hub
// shut clients down through here, so the channel closes exactly once.
func (c *client) closeDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// offer replaces the client's pending prediction.
func (c *client) offer(p PredictionResponse) {
	c.mu.Lock()
	c.pending = &p
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *client) take() *PredictionResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pending
	c.pending = nil
	return p
}

// hub tracks websocket subscribers.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

func (h *hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	websocketConnections.Inc()
	return true
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		websocketConnections.Dec()
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(p PredictionResponse) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.offer(p)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.closeDone()
	}
}

// streamHandler upgrades the connection and pushes each new prediction.
func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(conn)
	if !s.hub.register(c) {
		_ = conn.Close()
		return
	}
	slog.Debug("websocket client connected", "remote_addr", r.RemoteAddr)

	// Seed the new subscriber with the current prediction, if any.
	if latest := s.Latest(); latest != nil {
		c.offer(*latest)
	}

	go s.readLoop(c)
	s.writeLoop(c)

	s.hub.unregister(c)
	_ = conn.Close()
	slog.Debug("websocket client disconnected", "remote_addr", r.RemoteAddr)
}

// readLoop drains control frames and detects the peer going away.
func (s *Server) readLoop(c *client) {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.closeDone()
			return
		}
	}
}

// writeLoop sends the pending prediction when woken and pings on idle.
func (s *Server) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case <-c.wake:
			p := c.take()
			if p == nil {
				continue
			}
			data, err := json.Marshal(p)
			if err != nil {
				slog.Error("failed to marshal prediction", "error", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			websocketMessages.WithLabelValues("sent").Inc()
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{},
				time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
