package server

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope types on the outbound engine topic. Every envelope carries the
// game id redundantly next to the key so consumers can route without touching
// the payload.
const (
	messageTypeCreateGame  = "create_game"
	messageTypeTurn        = "turn"
	messageTypeStatusQuery = "get_game_status"
)

type engineEnvelope struct {
	Type        string              `json:"type"`
	GameID      uuid.UUID           `json:"game_id"`
	CreateGame  *createGameMessage  `json:"create_game,omitempty"`
	Turn        *turnMessage        `json:"turn,omitempty"`
	StatusQuery *statusQueryMessage `json:"get_game_status,omitempty"`
}

type createGameMessage struct {
	GameID           uuid.UUID `json:"game_id"`
	Player1ID        uuid.UUID `json:"player1_id"`
	Player2ID        uuid.UUID `json:"player2_id"`
	Player1Placement Placement `json:"player1_placement"`
	Player2Placement Placement `json:"player2_placement"`
}

type turnMessage struct {
	GameID   uuid.UUID `json:"game_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Shot     CellIndex `json:"shot"`
}

type statusQueryMessage struct {
	GameID uuid.UUID `json:"game_id"`
}

// engineResult is the single inbound envelope kind: either a full game update
// or an explicit failure, never both.
type engineResult struct {
	GameID     uuid.UUID          `json:"game_id"`
	GameUpdate *gameUpdateMessage `json:"game_update,omitempty"`
	Failure    *failureMessage    `json:"failure,omitempty"`
}

type gameUpdateMessage struct {
	Player1ID        uuid.UUID     `json:"player1_id"`
	Player2ID        uuid.UUID     `json:"player2_id"`
	Player1Placement Placement     `json:"player1_placement"`
	Player2Placement Placement     `json:"player2_placement"`
	Player1Shots     []shotMessage `json:"player1_shots"`
	Player2Shots     []shotMessage `json:"player2_shots"`
	Status           int32         `json:"status"`
}

type shotMessage struct {
	CellID CellIndex `json:"cell_id"`
	Shot   bool      `json:"shot"`
}

type failureMessage struct {
	Code               int32  `json:"code"`
	FailureDescription string `json:"failure_description"`
}

func decodeEngineResult(payload []byte) (*engineResult, error) {
	result := &engineResult{}
	if err := jsonCodec.Unmarshal(payload, result); err != nil {
		return nil, &BridgeDecodeError{Err: err}
	}
	if result.GameUpdate == nil && result.Failure == nil {
		return nil, &BridgeDecodeError{Err: errors.New("envelope carries neither game_update nor failure")}
	}
	return result, nil
}

func (m *gameUpdateMessage) toSnapshot(gameID uuid.UUID) *GameSnapshot {
	return &GameSnapshot{
		GameID:           gameID,
		Player1ID:        m.Player1ID,
		Player2ID:        m.Player2ID,
		Player1Placement: m.Player1Placement,
		Player2Placement: m.Player2Placement,
		Player1Shots:     toShots(m.Player1Shots),
		Player2Shots:     toShots(m.Player2Shots),
		Status:           GameStatus(m.Status),
	}
}

func toShots(messages []shotMessage) []Shot {
	shots := make([]Shot, 0, len(messages))
	for _, m := range messages {
		shots = append(shots, Shot{Cell: m.CellID, Hit: m.Shot})
	}
	return shots
}
