package server

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/satori/go.uuid"
)

type PlayerRecord struct {
	ID    uuid.UUID
	Name  string
	Token uuid.UUID
}

// PlayerRegistry maintains a thread-safe map of players and the reverse
// token index. Both directions are always mutated under the same lock so a
// token can never point at a removed player.
type PlayerRegistry struct {
	sync.RWMutex
	players map[uuid.UUID]*PlayerRecord
	tokens  map[uuid.UUID]uuid.UUID
}

func NewPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{
		players: make(map[uuid.UUID]*PlayerRecord),
		tokens:  make(map[uuid.UUID]uuid.UUID),
	}
}

// Register creates a new player, or re-associates the caller with an existing
// one when a previously issued token is presented. Presenting an unknown
// token is an error rather than an implicit signup.
func (r *PlayerRegistry) Register(token *uuid.UUID, name string) (PlayerRecord, error) {
	r.Lock()
	defer r.Unlock()

	var playerID uuid.UUID
	var playerToken uuid.UUID

	if token != nil {
		id, ok := r.tokens[*token]
		if !ok {
			return PlayerRecord{}, &NotFoundError{Resource: "token", ID: token.String()}
		}
		playerID = id
		playerToken = *token
	} else {
		playerID = uuid.NewV4()
		playerToken = uuid.NewV4()
	}

	if name == "" {
		name = generateName(playerID)
	}

	record := &PlayerRecord{
		ID:    playerID,
		Name:  name,
		Token: playerToken,
	}

	r.players[playerID] = record
	r.tokens[playerToken] = playerID

	return *record, nil
}

// Deregister removes the player and its token mapping in one step.
func (r *PlayerRegistry) Deregister(playerID uuid.UUID) error {
	r.Lock()
	defer r.Unlock()

	record, ok := r.players[playerID]
	if !ok {
		return &NotFoundError{Resource: "player", ID: playerID.String()}
	}

	delete(r.players, playerID)
	delete(r.tokens, record.Token)

	return nil
}

func (r *PlayerRegistry) LookupToken(token uuid.UUID) (uuid.UUID, error) {
	r.RLock()
	defer r.RUnlock()

	playerID, ok := r.tokens[token]
	if !ok {
		return uuid.UUID{}, &NotFoundError{Resource: "token", ID: token.String()}
	}
	return playerID, nil
}

func (r *PlayerRegistry) Get(playerID uuid.UUID) (PlayerRecord, bool) {
	r.RLock()
	defer r.RUnlock()

	record, ok := r.players[playerID]
	if !ok {
		return PlayerRecord{}, false
	}
	return *record, true
}

func (r *PlayerRegistry) Count() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.players)
}

// generateName derives a default display name from the id's time-mid field.
func generateName(playerID uuid.UUID) string {
	n := binary.BigEndian.Uint16(playerID[4:6])
	return fmt.Sprintf("Anonymous_coward#%d", n)
}
