package server

import (
	"sync"

	"github.com/satori/go.uuid"
)

type playerConn struct {
	session       Session
	authenticated bool
}

// ConnectionHub tracks the live socket of each player. A freshly attached
// connection is unauthenticated until it proves token ownership over the
// channel. Delivery is presence-only: pushes to a detached player are dropped,
// nothing is buffered or replayed.
type ConnectionHub struct {
	sync.RWMutex
	registry *PlayerRegistry
	logger   *Logger
	conns    map[uuid.UUID]*playerConn
}

func NewConnectionHub(registry *PlayerRegistry, logger *Logger) *ConnectionHub {
	return &ConnectionHub{
		registry: registry,
		logger:   logger,
		conns:    make(map[uuid.UUID]*playerConn),
	}
}

// Attach replaces the player's live sender. Authentication does not survive
// a reconnect.
func (h *ConnectionHub) Attach(playerID uuid.UUID, session Session) {
	h.Lock()
	h.conns[playerID] = &playerConn{session: session}
	h.Unlock()
}

// Detach clears the sender, but only if it still belongs to the given
// session. A disconnect racing a fresh reconnect must not tear down the new
// connection, and a player removed concurrently is a no-op.
func (h *ConnectionHub) Detach(playerID uuid.UUID, sessionID uuid.UUID) {
	h.Lock()
	conn, ok := h.conns[playerID]
	if ok && conn.session.ID() == sessionID {
		delete(h.conns, playerID)
	}
	h.Unlock()
}

// Authenticate validates the presented token against the registered one and
// acknowledges the attempt over the live channel either way. An unknown or
// already-closed connection is silently ignored.
func (h *ConnectionHub) Authenticate(playerID uuid.UUID, token uuid.UUID) bool {
	record, ok := h.registry.Get(playerID)
	if !ok {
		return false
	}

	success := record.Token == token

	h.Lock()
	conn, ok := h.conns[playerID]
	if !ok {
		h.Unlock()
		return false
	}
	if success {
		conn.authenticated = true
	}
	session := conn.session
	h.Unlock()

	payload, err := encodeAuthAck(success)
	if err != nil {
		h.logger.Errorw("Could not marshal authentication ack", "error", err)
		return success
	}
	_ = session.SendBytes(payload)

	return success
}

func (h *ConnectionHub) Authenticated(playerID uuid.UUID) bool {
	h.RLock()
	conn, ok := h.conns[playerID]
	authenticated := ok && conn.authenticated
	h.RUnlock()
	return authenticated
}

// Push delivers the payload to the player's live connection if one is
// attached. Best effort, a missing sender drops the message.
func (h *ConnectionHub) Push(playerID uuid.UUID, payload []byte) {
	h.RLock()
	conn, ok := h.conns[playerID]
	h.RUnlock()
	if !ok {
		return
	}
	_ = conn.session.SendBytes(payload)
}

// PushAuthenticated is Push restricted to connections that proved token
// ownership. Game state only travels to authenticated sockets.
func (h *ConnectionHub) PushAuthenticated(playerID uuid.UUID, payload []byte) {
	h.RLock()
	conn, ok := h.conns[playerID]
	deliver := ok && conn.authenticated
	session := Session(nil)
	if deliver {
		session = conn.session
	}
	h.RUnlock()
	if !deliver {
		return
	}
	_ = session.SendBytes(payload)
}

// BroadcastAuthenticated fans the payload out to every authenticated
// connection on this node.
func (h *ConnectionHub) BroadcastAuthenticated(payload []byte) {
	h.RLock()
	sessions := make([]Session, 0, len(h.conns))
	for _, conn := range h.conns {
		if conn.authenticated {
			sessions = append(sessions, conn.session)
		}
	}
	h.RUnlock()

	for _, session := range sessions {
		_ = session.SendBytes(payload)
	}
}
