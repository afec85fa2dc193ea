package server

import (
	"context"
	"testing"

	"github.com/satori/go.uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *capturingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *capturingWriter) Close() error { return nil }

type recordingHandler struct {
	snapshots []*GameSnapshot
	failures  []*EngineFailureError
}

func (h *recordingHandler) HandleGameUpdate(snapshot *GameSnapshot) {
	h.snapshots = append(h.snapshots, snapshot)
}

func (h *recordingHandler) HandleEngineFailure(gameID uuid.UUID, code int32, description string) {
	h.failures = append(h.failures, &EngineFailureError{GameID: gameID.String(), Code: code, Description: description})
}

func newTestBridge(writer kafkaWriter) *StatefunBridge {
	return &StatefunBridge{
		writer: writer,
		logger: newTestLogger(),
		stats:  newTestStats(),
	}
}

func TestPublishCreateGameIsKeyedByGameID(t *testing.T) {
	writer := &capturingWriter{}
	bridge := newTestBridge(writer)

	gameID := uuid.NewV4()
	player1 := uuid.NewV4()
	player2 := uuid.NewV4()

	err := bridge.PublishCreateGame(context.Background(), gameID, player1, testPlacement(1, 2), player2, testPlacement(3, 4))
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	assert.Equal(t, gameID.String(), string(writer.messages[0].Key))

	envelope := &engineEnvelope{}
	require.NoError(t, jsonCodec.Unmarshal(writer.messages[0].Value, envelope))
	assert.Equal(t, messageTypeCreateGame, envelope.Type)
	assert.Equal(t, gameID, envelope.GameID)
	require.NotNil(t, envelope.CreateGame)
	assert.Equal(t, player1, envelope.CreateGame.Player1ID)
	assert.Equal(t, player2, envelope.CreateGame.Player2ID)
	assert.Nil(t, envelope.Turn)
	assert.Nil(t, envelope.StatusQuery)
}

func TestPublishTurnAndStatusQueryShareTheKey(t *testing.T) {
	writer := &capturingWriter{}
	bridge := newTestBridge(writer)

	gameID := uuid.NewV4()
	playerID := uuid.NewV4()

	require.NoError(t, bridge.PublishTurn(context.Background(), gameID, playerID, 17))
	require.NoError(t, bridge.PublishStatusQuery(context.Background(), gameID))

	require.Len(t, writer.messages, 2)
	// Both events for the game carry the same key, so they land on the same
	// partition and keep their order.
	assert.Equal(t, writer.messages[0].Key, writer.messages[1].Key)

	turn := &engineEnvelope{}
	require.NoError(t, jsonCodec.Unmarshal(writer.messages[0].Value, turn))
	assert.Equal(t, messageTypeTurn, turn.Type)
	require.NotNil(t, turn.Turn)
	assert.Equal(t, CellIndex(17), turn.Turn.Shot)
	assert.Equal(t, playerID, turn.Turn.PlayerID)

	query := &engineEnvelope{}
	require.NoError(t, jsonCodec.Unmarshal(writer.messages[1].Value, query))
	assert.Equal(t, messageTypeStatusQuery, query.Type)
	require.NotNil(t, query.StatusQuery)
}

func TestPublishErrorIsBridgeDelivery(t *testing.T) {
	writer := &capturingWriter{err: assert.AnError}
	bridge := newTestBridge(writer)

	err := bridge.PublishStatusQuery(context.Background(), uuid.NewV4())
	require.Error(t, err)
	_, ok := err.(*BridgeDeliveryError)
	assert.True(t, ok)
}

func TestDecodeEngineResult(t *testing.T) {
	gameID := uuid.NewV4()

	_, err := decodeEngineResult([]byte("{not json"))
	require.Error(t, err)
	_, ok := err.(*BridgeDecodeError)
	assert.True(t, ok)

	_, err = decodeEngineResult([]byte(`{"game_id":"` + gameID.String() + `"}`))
	require.Error(t, err, "an envelope with neither branch is malformed")

	result, err := decodeEngineResult([]byte(`{"game_id":"` + gameID.String() + `","failure":{"code":101,"failure_description":"not your turn"}}`))
	require.NoError(t, err)
	require.NotNil(t, result.Failure)
	assert.Equal(t, int32(101), result.Failure.Code)
}

func TestDispatchGameUpdate(t *testing.T) {
	bridge := newTestBridge(&capturingWriter{})
	handler := &recordingHandler{}

	gameID := uuid.NewV4()
	player1 := uuid.NewV4()
	player2 := uuid.NewV4()

	payload, err := jsonCodec.Marshal(&engineResult{
		GameID: gameID,
		GameUpdate: &gameUpdateMessage{
			Player1ID:        player1,
			Player2ID:        player2,
			Player1Placement: testPlacement(1, 2),
			Player2Placement: testPlacement(3, 4),
			Player1Shots:     []shotMessage{{CellID: 3, Shot: true}},
			Status:           int32(GameStatusPlayer2Turn),
		},
	})
	require.NoError(t, err)

	bridge.dispatch(payload, handler)

	require.Len(t, handler.snapshots, 1)
	snapshot := handler.snapshots[0]
	assert.Equal(t, gameID, snapshot.GameID)
	assert.Equal(t, player1, snapshot.Player1ID)
	assert.Equal(t, GameStatusPlayer2Turn, snapshot.Status)
	require.Len(t, snapshot.Player1Shots, 1)
	assert.Equal(t, Shot{Cell: 3, Hit: true}, snapshot.Player1Shots[0])
}

func TestDispatchSurvivesMalformedAndFailureMessages(t *testing.T) {
	bridge := newTestBridge(&capturingWriter{})
	handler := &recordingHandler{}

	bridge.dispatch([]byte("garbage"), handler)
	assert.Empty(t, handler.snapshots)
	assert.Empty(t, handler.failures)

	gameID := uuid.NewV4()
	payload, err := jsonCodec.Marshal(&engineResult{
		GameID:  gameID,
		Failure: &failureMessage{Code: 100, FailureDescription: "The game is already finished"},
	})
	require.NoError(t, err)

	bridge.dispatch(payload, handler)
	require.Len(t, handler.failures, 1)
	assert.Equal(t, gameID.String(), handler.failures[0].GameID)
	assert.Equal(t, int32(100), handler.failures[0].Code)
}
