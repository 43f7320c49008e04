/**
 * @description
 * This package implements the notification hub: a registry of live websocket
 * sessions keyed by customer DNI. The issuance consumer uses it to push the
 * result of a policy issuance to the originating client in real time.
 *
 * Key features:
 * - At most one session per DNI; a new connection supersedes the old one.
 * - Delivery is best-effort: with no live session the payload is logged and
 *   dropped, and a failed write never surfaces to the caller.
 * - The registry map is the shared-mutation boundary between the connection
 *   lifecycle and delivery calls, guarded by a single RWMutex.
 *
 * @dependencies
 * - log, sync: Standard Go libraries.
 * - github.com/gorilla/websocket: The websocket transport.
 */

package hub

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// session wraps a websocket connection with a write mutex; gorilla
// connections do not allow concurrent writers.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) writeJSON(payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(payload)
}

func (s *session) close(closeCode int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	message := websocket.FormatCloseMessage(closeCode, reason)
	s.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
	s.conn.Close()
}

// Hub maintains the DNI to session registry.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewHub creates an empty notification hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*session)}
}

// Register adds a connection for a DNI, superseding and closing any prior
// session registered under the same identity.
func (h *Hub) Register(dni string, conn *websocket.Conn) {
	h.mu.Lock()
	prior := h.sessions[dni]
	h.sessions[dni] = &session{conn: conn}
	h.mu.Unlock()

	if prior != nil {
		log.Printf("level=info component=notification_hub msg=\"superseding prior session\" dni=%s", dni)
		prior.close(websocket.CloseNormalClosure, "superseded by a new connection")
	}
	log.Printf("level=info component=notification_hub msg=\"session registered\" dni=%s", dni)
}

// Unregister removes the session for a DNI, but only if it still belongs to
// the closing connection; a superseding session must not be torn down by the
// old connection's read loop.
func (h *Hub) Unregister(dni string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.sessions[dni]; ok && current.conn == conn {
		delete(h.sessions, dni)
		log.Printf("level=info component=notification_hub msg=\"session closed\" dni=%s", dni)
	}
}

// SendToIdentity delivers a payload to the session registered for a DNI.
// Best-effort: it never blocks on a missing session and never returns an
// error to the caller. A session whose write fails is dropped.
func (h *Hub) SendToIdentity(dni string, payload interface{}) {
	h.mu.RLock()
	sess, ok := h.sessions[dni]
	h.mu.RUnlock()

	if !ok {
		log.Printf("level=warn component=notification_hub msg=\"no active session; dropping notification\" dni=%s", dni)
		return
	}

	if err := sess.writeJSON(payload); err != nil {
		log.Printf("level=error component=notification_hub msg=\"push failed; dropping session\" dni=%s err=%v", dni, err)
		h.mu.Lock()
		if current, stillThere := h.sessions[dni]; stillThere && current == sess {
			delete(h.sessions, dni)
		}
		h.mu.Unlock()
		sess.conn.Close()
		return
	}
	log.Printf("level=info component=notification_hub msg=\"notification pushed\" dni=%s", dni)
}

// ConnectedCount reports the number of live sessions. Used by tests and the
// health surface.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown closes every live session and empties the registry.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*session)
	h.mu.Unlock()

	for dni, sess := range sessions {
		sess.close(websocket.CloseGoingAway, "server shutting down")
		log.Printf("level=info component=notification_hub msg=\"session closed on shutdown\" dni=%s", dni)
	}
}
