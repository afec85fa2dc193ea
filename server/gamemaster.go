package server

import (
	"context"
	"sync"

	"github.com/satori/go.uuid"
)

// BridgePublisher is the outbound half of the engine bridge. The game master
// only depends on this slice of it so game logic can be tested without Kafka.
type BridgePublisher interface {
	PublishCreateGame(ctx context.Context, gameID uuid.UUID, player1ID uuid.UUID, player1Ships Placement, player2ID uuid.UUID, player2Ships Placement) error
	PublishTurn(ctx context.Context, gameID uuid.UUID, playerID uuid.UUID, cell CellIndex) error
	PublishStatusQuery(ctx context.Context, gameID uuid.UUID) error
}

type gameInfo struct {
	player1ID uuid.UUID
	player2ID uuid.UUID
}

// GameMaster owns the game id to participants mapping and relays validated
// intents to the engine. It never holds turn state itself, the engine is
// authoritative.
//
// Finished games are currently never removed from the map, there is no
// lifecycle signal from the engine to hang an expiry on.
type GameMaster struct {
	sync.RWMutex
	bridge BridgePublisher
	logger *Logger
	games  map[uuid.UUID]gameInfo
}

func NewGameMaster(bridge BridgePublisher, logger *Logger) *GameMaster {
	return &GameMaster{
		bridge: bridge,
		logger: logger,
		games:  make(map[uuid.UUID]gameInfo),
	}
}

// StartGame mints a game id, records the participants and asks the engine to
// create the game. The session record is committed before the publish; the
// pairing already happened and the caller has no way to retry it, so a bridge
// failure is surfaced but does not roll the pairing back.
func (gm *GameMaster) StartGame(ctx context.Context, player1ID uuid.UUID, player1Ships Placement, player2ID uuid.UUID, player2Ships Placement) (uuid.UUID, error) {

	gameID := uuid.NewV4()

	gm.Lock()
	gm.games[gameID] = gameInfo{player1ID: player1ID, player2ID: player2ID}
	gm.Unlock()

	gm.logger.Infow("Starting game", "game", gameID.String(), "player1", player1ID.String(), "player2", player2ID.String())

	if err := gm.bridge.PublishCreateGame(ctx, gameID, player1ID, player1Ships, player2ID, player2Ships); err != nil {
		gm.logger.Errorw("Could not publish create game event", "game", gameID.String(), "error", err)
		return gameID, err
	}

	return gameID, nil
}

// SubmitTurn validates that the submitter participates in the game and relays
// the shot. No local state is touched.
func (gm *GameMaster) SubmitTurn(ctx context.Context, gameID uuid.UUID, playerID uuid.UUID, cell CellIndex) error {

	if err := gm.validateParticipant(gameID, playerID); err != nil {
		return err
	}

	gm.logger.Infow("Player took a shot", "game", gameID.String(), "player", playerID.String(), "cell", cell)

	return gm.bridge.PublishTurn(ctx, gameID, playerID, cell)
}

// QueryStatus asks the engine to re-emit the current game state. Reconnecting
// clients use this instead of replayed pushes.
func (gm *GameMaster) QueryStatus(ctx context.Context, gameID uuid.UUID, playerID uuid.UUID) error {

	if err := gm.validateParticipant(gameID, playerID); err != nil {
		return err
	}

	return gm.bridge.PublishStatusQuery(ctx, gameID)
}

func (gm *GameMaster) Participants(gameID uuid.UUID) (uuid.UUID, uuid.UUID, bool) {
	gm.RLock()
	info, ok := gm.games[gameID]
	gm.RUnlock()
	return info.player1ID, info.player2ID, ok
}

func (gm *GameMaster) validateParticipant(gameID uuid.UUID, playerID uuid.UUID) error {
	gm.RLock()
	info, ok := gm.games[gameID]
	gm.RUnlock()

	if !ok {
		return &NotFoundError{Resource: "game", ID: gameID.String()}
	}
	if playerID != info.player1ID && playerID != info.player2ID {
		return &InvalidArgumentError{Reason: "player " + playerID.String() + " is not part of game " + gameID.String()}
	}
	return nil
}
