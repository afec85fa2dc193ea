package server

import (
	"sync"

	"github.com/satori/go.uuid"
)

type waitingPlayer struct {
	playerID  uuid.UUID
	placement Placement
}

// Pairing is the result of two players meeting in the queue. Slot order is
// the role assignment: the player who waited becomes player1 and moves first.
type Pairing struct {
	Player1ID    uuid.UUID
	Player1Ships Placement
	Player2ID    uuid.UUID
	Player2Ships Placement
}

// Matchmaker is a single-slot queue. One player waits with their placement
// until the next arrival pairs with them. Take-and-clear happens under the
// lock, so a third arrival can never observe a stale waiting entry.
type Matchmaker struct {
	sync.Mutex
	waiting *waitingPlayer
}

func NewMatchmaker() *Matchmaker {
	return &Matchmaker{}
}

// EnqueueOrPair either parks the player in the waiting slot and returns nil,
// or pairs them with the player already waiting. Re-enqueueing the waiting
// player just refreshes their placement, a player is never paired against
// themselves.
func (m *Matchmaker) EnqueueOrPair(playerID uuid.UUID, placement Placement) *Pairing {
	m.Lock()
	defer m.Unlock()

	if m.waiting == nil || m.waiting.playerID == playerID {
		m.waiting = &waitingPlayer{playerID: playerID, placement: placement}
		return nil
	}

	pairing := &Pairing{
		Player1ID:    m.waiting.playerID,
		Player1Ships: m.waiting.placement,
		Player2ID:    playerID,
		Player2Ships: placement,
	}
	m.waiting = nil

	return pairing
}
