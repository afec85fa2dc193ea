package server

import (
	"github.com/satori/go.uuid"
)

// UpdateRelay turns inbound engine events into per-player pushes. Each game
// update is projected twice, once per participant, and delivered to whichever
// of the two currently holds an authenticated connection.
type UpdateRelay struct {
	hub    *ConnectionHub
	logger *Logger
}

func NewUpdateRelay(hub *ConnectionHub, logger *Logger) *UpdateRelay {
	return &UpdateRelay{
		hub:    hub,
		logger: logger,
	}
}

func (r *UpdateRelay) HandleGameUpdate(snapshot *GameSnapshot) {

	for _, playerID := range []uuid.UUID{snapshot.Player1ID, snapshot.Player2ID} {

		view, err := Project(snapshot, playerID)
		if err != nil {
			r.logger.Errorw("Could not project game state", "game", snapshot.GameID.String(), "player", playerID.String(), "error", err)
			continue
		}

		payload, err := jsonCodec.Marshal(view)
		if err != nil {
			r.logger.Errorw("Could not marshal player view", "game", snapshot.GameID.String(), "player", playerID.String(), "error", err)
			continue
		}

		r.hub.PushAuthenticated(playerID, payload)

	}

}

// HandleEngineFailure logs the failure the engine reported. There is no
// compensating action to take at this layer.
func (r *UpdateRelay) HandleEngineFailure(gameID uuid.UUID, code int32, description string) {
	err := &EngineFailureError{GameID: gameID.String(), Code: code, Description: description}
	r.logger.Errorw("Engine reported failure", "game", gameID.String(), "code", code, "error", err)
}
