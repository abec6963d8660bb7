// Package wsconn provides a WebSocket broadcast hub built on
// github.com/coder/websocket. Every connected client receives every message;
// clients that cannot keep up are disconnected instead of stalling the hub.
package wsconn

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Config holds hub configuration.
type Config struct {
	// Buffer is the number of pending messages per client before it is
	// considered slow and dropped.
	Buffer       int
	WriteTimeout time.Duration
	PingInterval time.Duration // 0 disables pings
	// OriginPatterns are passed to websocket.Accept for cross-origin clients.
	OriginPatterns []string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Buffer:       64,
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

type subscriber struct {
	msgs      chan []byte
	closeSlow func()
}

// Hub fans out messages to connected WebSocket clients.
type Hub struct {
	config Config

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	closed      bool
}

// NewHub creates a hub.
func NewHub(config Config) *Hub {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}
	return &Hub{
		config:      config,
		subscribers: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and streams broadcasts until the client
// leaves, the request context ends or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.config.OriginPatterns,
	})
	if err != nil {
		return
	}
	defer conn.CloseNow()

	// Disconnects are routine for a feed; the error only matters to tests.
	_ = h.subscribe(r.Context(), conn)
}

func (h *Hub) subscribe(ctx context.Context, conn *websocket.Conn) error {
	// Clients never send; CloseRead handles control frames and cancels ctx
	// once the peer goes away.
	ctx = conn.CloseRead(ctx)

	s := &subscriber{
		msgs: make(chan []byte, h.config.Buffer),
		closeSlow: func() {
			conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
		},
	}
	if !h.add(s) {
		return conn.Close(websocket.StatusGoingAway, "hub closed")
	}
	defer h.remove(s)

	var ping <-chan time.Time
	if h.config.PingInterval > 0 {
		t := time.NewTicker(h.config.PingInterval)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case msg, ok := <-s.msgs:
			if !ok {
				return conn.Close(websocket.StatusGoingAway, "hub closed")
			}
			if err := h.write(ctx, conn, msg); err != nil {
				return err
			}
		case <-ping:
			pctx, cancel := context.WithTimeout(ctx, h.config.WriteTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.WriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

func (h *Hub) add(s *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.subscribers[s] = struct{}{}
	return true
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, s)
}

// Broadcast queues msg for every client without blocking. Slow clients are
// disconnected.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	for s := range h.subscribers {
		select {
		case s.msgs <- msg:
		default:
			go s.closeSlow()
		}
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (h *Hub) BroadcastJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(b)
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subscribers {
		close(s.msgs)
	}
}
