package server

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/satori/go.uuid"
	"github.com/segmentio/kafka-go"
)

// GameUpdateHandler receives decoded inbound engine events.
type GameUpdateHandler interface {
	HandleGameUpdate(snapshot *GameSnapshot)
	HandleEngineFailure(gameID uuid.UUID, code int32, description string)
}

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StatefunBridge speaks the engine's event contract over Kafka. Outbound
// messages are keyed by game id so everything for one game lands on the same
// partition and keeps its order; ordering across games is not promised.
type StatefunBridge struct {
	writer kafkaWriter
	reader *kafka.Reader
	logger *Logger
	stats  *Stats
}

func NewStatefunBridge(config *Config, logger *Logger, stats *Stats) *StatefunBridge {

	brokers := strings.Split(config.KafkaConfig.Brokers, ",")

	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    config.KafkaConfig.OutTopic,
		Balancer: &kafka.Hash{},
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   config.KafkaConfig.InTopic,
		GroupID: config.KafkaConfig.GroupID,
	})

	return &StatefunBridge{
		writer: writer,
		reader: reader,
		logger: logger,
		stats:  stats,
	}
}

func (b *StatefunBridge) PublishCreateGame(ctx context.Context, gameID uuid.UUID, player1ID uuid.UUID, player1Ships Placement, player2ID uuid.UUID, player2Ships Placement) error {
	return b.publish(ctx, gameID, &engineEnvelope{
		Type:   messageTypeCreateGame,
		GameID: gameID,
		CreateGame: &createGameMessage{
			GameID:           gameID,
			Player1ID:        player1ID,
			Player2ID:        player2ID,
			Player1Placement: player1Ships,
			Player2Placement: player2Ships,
		},
	})
}

func (b *StatefunBridge) PublishTurn(ctx context.Context, gameID uuid.UUID, playerID uuid.UUID, cell CellIndex) error {
	return b.publish(ctx, gameID, &engineEnvelope{
		Type:   messageTypeTurn,
		GameID: gameID,
		Turn: &turnMessage{
			GameID:   gameID,
			PlayerID: playerID,
			Shot:     cell,
		},
	})
}

func (b *StatefunBridge) PublishStatusQuery(ctx context.Context, gameID uuid.UUID) error {
	return b.publish(ctx, gameID, &engineEnvelope{
		Type:   messageTypeStatusQuery,
		GameID: gameID,
		StatusQuery: &statusQueryMessage{
			GameID: gameID,
		},
	})
}

func (b *StatefunBridge) publish(ctx context.Context, gameID uuid.UUID, envelope *engineEnvelope) error {

	payload, err := jsonCodec.Marshal(envelope)
	if err != nil {
		return &BridgeDeliveryError{Err: err}
	}

	err = b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(gameID.String()),
		Value: payload,
	})
	if err != nil {
		return &BridgeDeliveryError{Err: err}
	}

	b.stats.IncrBridgePublished()
	return nil
}

// Consume runs the inbound loop until the context is cancelled. A malformed
// message or an engine failure never stops the loop; read errors back the
// loop off exponentially and reset on the next successful read.
func (b *StatefunBridge) Consume(ctx context.Context, handler GameUpdateHandler) {

	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = 0

	for {
		message, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("Exiting from bridge consumer routine")
				return
			}
			wait := retry.NextBackOff()
			b.logger.Errorw("Error while reading message from engine topic", "error", err, "retry_in", wait.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}
		retry.Reset()

		b.stats.IncrBridgeConsumed()
		b.dispatch(message.Value, handler)
	}

}

func (b *StatefunBridge) dispatch(payload []byte, handler GameUpdateHandler) {

	result, err := decodeEngineResult(payload)
	if err != nil {
		b.logger.Errorw("Dropping malformed engine message", "error", err)
		return
	}

	if result.Failure != nil {
		handler.HandleEngineFailure(result.GameID, result.Failure.Code, result.Failure.FailureDescription)
		return
	}

	handler.HandleGameUpdate(result.GameUpdate.toSnapshot(result.GameID))

}

func (b *StatefunBridge) Close() {
	if err := b.writer.Close(); err != nil {
		b.logger.Errorw("Error while closing bridge writer", "error", err)
	}
	if err := b.reader.Close(); err != nil {
		b.logger.Errorw("Error while closing bridge reader", "error", err)
	}
}
