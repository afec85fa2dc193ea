package server

import (
	"github.com/satori/go.uuid"
)

// CellIndex addresses one cell on the 10x10 board, 0..99.
type CellIndex = uint8

// Placement maps a ship type label to the cells it occupies.
type Placement map[string][]CellIndex

// Shot is one fired cell together with the hit flag the engine derived for it.
type Shot struct {
	Cell CellIndex `json:"cell"`
	Hit  bool      `json:"hit"`
}

// GameStatus is the engine's status vocabulary. The gateway never originates
// these values, it only compares against them.
type GameStatus int32

const (
	GameStatusUnknown     GameStatus = 0
	GameStatusPlayer1Turn GameStatus = 1
	GameStatusPlayer2Turn GameStatus = 2
	GameStatusPlayer1Win  GameStatus = 3
	GameStatusPlayer2Win  GameStatus = 4
)

// GameSnapshot is the shared authoritative state of one game as reported by
// the engine in a game update. The gateway never mutates it.
type GameSnapshot struct {
	GameID           uuid.UUID
	Player1ID        uuid.UUID
	Player2ID        uuid.UUID
	Player1Placement Placement
	Player2Placement Placement
	Player1Shots     []Shot
	Player2Shots     []Shot
	Status           GameStatus
}
