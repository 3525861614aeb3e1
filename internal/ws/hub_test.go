package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(hub.Handler())
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.clients)
		hub.mu.RUnlock()
		if n == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients", want)
}

func TestBroadcastDeliversTick(t *testing.T) {
	hub := NewHub(time.Minute, zap.NewNop())
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	waitForClients(t, hub, 1)

	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	hub.Broadcast(PriceTick{StationID: 4, Grade: "87", PriceCents: 3259, EffectiveAt: at})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var tick PriceTick
	if err := json.Unmarshal(data, &tick); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tick.StationID != 4 || tick.Grade != "87" || tick.PriceCents != 3259 {
		t.Fatalf("unexpected tick %+v", tick)
	}
	if !tick.EffectiveAt.Equal(at) {
		t.Fatalf("unexpected effective_at %v", tick.EffectiveAt)
	}
}

func TestBroadcastWithoutClients(t *testing.T) {
	hub := NewHub(time.Minute, zap.NewNop())
	hub.Broadcast(PriceTick{StationID: 1, Grade: "87", PriceCents: 3000})
}

func TestClientRemovedOnClose(t *testing.T) {
	hub := NewHub(time.Minute, zap.NewNop())
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	waitForClients(t, hub, 1)
	conn.Close()
	waitForClients(t, hub, 0)
}
