package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/youlserf/pacifico-ecosystem/internal/domain"
)

// newHubServer exposes a hub behind a minimal upgrade handler, mirroring how
// the API layer registers connections.
func newHubServer(h *Hub) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dni := r.URL.Query().Get("dni")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Register(dni, conn)
		defer func() {
			h.Unregister(dni, conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func dial(t *testing.T, server *httptest.Server, dni string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?dni=" + dni
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return conn
}

func waitForSessions(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ConnectedCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d sessions, have %d", want, h.ConnectedCount())
}

func TestSendToConnectedIdentity(t *testing.T) {
	h := NewHub()
	server := newHubServer(h)
	defer server.Close()

	conn := dial(t, server, "11223344")
	defer conn.Close()
	waitForSessions(t, h, 1)

	h.SendToIdentity("11223344", domain.IssuanceNotification{
		PolicyNumber: "PAC-2026-4821",
		DNI:          "11223344",
		FinalPremium: 600,
		Status:       domain.NotificationStatusIssued,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received domain.IssuanceNotification
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("client did not receive the notification: %v", err)
	}
	if received.PolicyNumber != "PAC-2026-4821" || received.Status != "ISSUED" {
		t.Fatalf("unexpected payload: %+v", received)
	}
}

func TestSendToDisconnectedIdentityIsDropped(t *testing.T) {
	h := NewHub()

	// Must not panic, block, or error.
	h.SendToIdentity("99999999", domain.IssuanceNotification{Status: domain.NotificationStatusIssued})

	if h.ConnectedCount() != 0 {
		t.Fatalf("expected no sessions, got %d", h.ConnectedCount())
	}
}

func TestNewConnectionSupersedesPriorSession(t *testing.T) {
	h := NewHub()
	server := newHubServer(h)
	defer server.Close()

	first := dial(t, server, "11223344")
	defer first.Close()
	waitForSessions(t, h, 1)

	second := dial(t, server, "11223344")
	defer second.Close()

	// The superseded connection is closed by the hub.
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatal("expected the first connection to be closed")
	}

	// Give the first connection's server-side read loop time to run its
	// unregister; the superseding session must survive it.
	time.Sleep(50 * time.Millisecond)
	waitForSessions(t, h, 1)

	h.SendToIdentity("11223344", domain.IssuanceNotification{
		PolicyNumber: "PAC-2026-1111",
		DNI:          "11223344",
		Status:       domain.NotificationStatusIssued,
	})

	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received domain.IssuanceNotification
	if err := second.ReadJSON(&received); err != nil {
		t.Fatalf("superseding connection did not receive the notification: %v", err)
	}
	if received.PolicyNumber != "PAC-2026-1111" {
		t.Fatalf("unexpected payload: %+v", received)
	}
}

func TestDisconnectRemovesSession(t *testing.T) {
	h := NewHub()
	server := newHubServer(h)
	defer server.Close()

	conn := dial(t, server, "11223344")
	waitForSessions(t, h, 1)

	conn.Close()
	waitForSessions(t, h, 0)

	// Delivery after disconnect is a silent drop.
	h.SendToIdentity("11223344", domain.IssuanceNotification{Status: domain.NotificationStatusIssued})
}

func TestShutdownClosesAllSessions(t *testing.T) {
	h := NewHub()
	server := newHubServer(h)
	defer server.Close()

	first := dial(t, server, "11223344")
	defer first.Close()
	second := dial(t, server, "87654321")
	defer second.Close()
	waitForSessions(t, h, 2)

	h.Shutdown()

	if h.ConnectedCount() != 0 {
		t.Fatalf("expected empty registry after shutdown, got %d", h.ConnectedCount())
	}
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatal("expected the first connection to be closed on shutdown")
	}
}
