package server

import (
	"sort"

	"github.com/satori/go.uuid"
)

// PlayerView is the perspective-filtered slice of a game one player is
// allowed to see. It is recomputed from scratch on every game update and
// pushed over that player's socket.
type PlayerView struct {
	GameID                 uuid.UUID `json:"game_id"`
	OpponentID             uuid.UUID `json:"opponent_id"`
	CurrentState           int32     `json:"current_state"`
	YourTurn               bool      `json:"your_turn"`
	YourShots              []Shot    `json:"your_shots"`
	OpponentShots          []Shot    `json:"opponent_shots"`
	DestroyedOpponentShips []string  `json:"destroyed_opponent_ships"`
	YourShips              Placement `json:"your_ships"`
}

// Project computes playerID's view of the snapshot. Pure and deterministic;
// the opponent's placement never leaks, only the ships fully destroyed by the
// player's own shots are named.
func Project(snapshot *GameSnapshot, playerID uuid.UUID) (*PlayerView, error) {

	switch playerID {
	case snapshot.Player1ID:
		return &PlayerView{
			GameID:                 snapshot.GameID,
			OpponentID:             snapshot.Player2ID,
			CurrentState:           int32(snapshot.Status),
			YourTurn:               snapshot.Status == GameStatusPlayer1Turn,
			YourShots:              snapshot.Player1Shots,
			OpponentShots:          snapshot.Player2Shots,
			DestroyedOpponentShips: destroyedShips(snapshot.Player2Placement, snapshot.Player1Shots),
			YourShips:              snapshot.Player1Placement,
		}, nil
	case snapshot.Player2ID:
		return &PlayerView{
			GameID:                 snapshot.GameID,
			OpponentID:             snapshot.Player1ID,
			CurrentState:           int32(snapshot.Status),
			YourTurn:               snapshot.Status == GameStatusPlayer2Turn,
			YourShots:              snapshot.Player2Shots,
			OpponentShots:          snapshot.Player1Shots,
			DestroyedOpponentShips: destroyedShips(snapshot.Player1Placement, snapshot.Player2Shots),
			YourShips:              snapshot.Player2Placement,
		}, nil
	}

	return nil, &InvalidArgumentError{Reason: "player " + playerID.String() + " is not part of game " + snapshot.GameID.String()}
}

// destroyedShips lists the ships of the given placement whose every cell has
// been shot. Shots only accumulate, so a destroyed ship stays destroyed.
func destroyedShips(placement Placement, shots []Shot) []string {

	shotCells := make(map[CellIndex]struct{}, len(shots))
	for _, shot := range shots {
		shotCells[shot.Cell] = struct{}{}
	}

	destroyed := make([]string, 0)
	for ship, cells := range placement {
		sunk := true
		for _, cell := range cells {
			if _, ok := shotCells[cell]; !ok {
				sunk = false
				break
			}
		}
		if sunk {
			destroyed = append(destroyed, ship)
		}
	}

	sort.Strings(destroyed)
	return destroyed
}
