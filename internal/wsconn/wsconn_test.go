package wsconn

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if h.Clients() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("clients = %d, want %d", h.Clients(), want)
}

func TestHub_BroadcastToAllClients(t *testing.T) {
	hub := NewHub(Config{PingInterval: 0})
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	defer a.CloseNow()
	b := dial(t, srv)
	defer b.CloseNow()

	waitClients(t, hub, 2)

	if err := hub.BroadcastJSON(map[string]string{"type": "progress"}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	for name, conn := range map[string]*websocket.Conn{"a": a, "b": b} {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		typ, data, err := conn.Read(ctx)
		cancel()
		if err != nil {
			t.Fatalf("%s read: %v", name, err)
		}
		if typ != websocket.MessageText || string(data) != `{"type":"progress"}` {
			t.Errorf("%s got %v %s", name, typ, data)
		}
	}
}

func TestHub_ClientLeaves(t *testing.T) {
	hub := NewHub(DefaultConfig())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	waitClients(t, hub, 1)

	conn.Close(websocket.StatusNormalClosure, "bye")
	waitClients(t, hub, 0)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(DefaultConfig())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.CloseNow()
	waitClients(t, hub, 1)

	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusGoingAway {
		t.Errorf("expected going away close, got %v", err)
	}

	// Broadcasting after close is a no-op.
	hub.Broadcast([]byte("late"))
}
