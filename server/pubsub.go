package server

import (
	"context"

	"github.com/satori/go.uuid"
	"github.com/streadway/amqp"
)

type broadcastMessage struct {
	NodeID  uuid.UUID `json:"node_id"`
	Message string    `json:"message"`
}

// PubSub fans broadcast messages out across gateway nodes through a RabbitMQ
// fanout exchange. Local delivery always happens directly; the exchange only
// carries the message to peer nodes. Without a connection string the module
// stays local-only.
type PubSub struct {
	isEnabled bool
	nodeID    uuid.UUID
	pubChan   *amqp.Channel
	hub       *ConnectionHub
	logger    *Logger
}

func NewPubSub(ctx context.Context, config *Config, hub *ConnectionHub, logger *Logger) *PubSub {

	nodeID := uuid.NewV4()

	if config.RabbitMQConfig.ConnectionString == "" {
		return &PubSub{
			isEnabled: false,
			nodeID:    nodeID,
			hub:       hub,
			logger:    logger,
		}
	}

	conn, err := amqp.Dial(config.RabbitMQConfig.ConnectionString)
	if err != nil {
		logger.Fatalw("Error while trying to connect amqp server", "error", err)
	}

	pubChan, err := conn.Channel()
	if err != nil {
		logger.Fatalw("Error while trying to open a channel for publish over amqp connection", "error", err)
	}

	subChan, err := conn.Channel()
	if err != nil {
		logger.Fatalw("Error while trying to open a channel for subscribe over amqp connection", "error", err)
	}

	err = pubChan.ExchangeDeclare("broadcast", "fanout", true, false, false, false, nil)
	if err != nil {
		logger.Fatalw("Error while trying to define exchange over publish channel", "error", err)
	}

	err = subChan.ExchangeDeclare("broadcast", "fanout", true, false, false, false, nil)
	if err != nil {
		logger.Fatalw("Error while trying to define exchange over subscribe channel", "error", err)
	}

	q, err := subChan.QueueDeclare("", false, false, true, false, nil)
	if err != nil {
		logger.Fatalw("Error while trying to define queue over subscribe channel", "error", err)
	}

	err = subChan.QueueBind(q.Name, "", "broadcast", false, nil)
	if err != nil {
		logger.Fatalw("Error while binding queue to subscribe channel", "error", err)
	}

	msgs, err := subChan.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		logger.Fatalw("Error while trying to create consumer channel on subscribe channel", "error", err)
	}

	go func() {

		defer conn.Close()

		for {
			select {
			case <-ctx.Done():
				logger.Info("Exiting from pubsub subscribe routine")
				return
			case msg := <-msgs:

				if msg.ContentType != "application/json" {
					logger.Errorw("Unrecognized content type received", "content-type", msg.ContentType)
					continue
				}

				message := &broadcastMessage{}
				if err := jsonCodec.Unmarshal(msg.Body, message); err != nil {
					logger.Errorw("Error while unmarshal pubsub message data", "error", err)
					continue
				}

				//The fanout exchange also delivers our own publishes back to us
				if message.NodeID == nodeID {
					continue
				}

				hub.BroadcastAuthenticated([]byte(message.Message))
			}
		}

	}()

	return &PubSub{
		isEnabled: true,
		nodeID:    nodeID,
		pubChan:   pubChan,
		hub:       hub,
		logger:    logger,
	}

}

// Broadcast delivers the text to every authenticated connection on this node
// and, when enabled, publishes it for the other nodes.
func (ps *PubSub) Broadcast(message string) error {

	ps.hub.BroadcastAuthenticated([]byte(message))

	if !ps.isEnabled {
		return nil
	}

	data, err := jsonCodec.Marshal(&broadcastMessage{NodeID: ps.nodeID, Message: message})
	if err != nil {
		ps.logger.Errorw("Error while trying to marshal message in broadcast method of pubsub module", "error", err)
		return err
	}

	err = ps.pubChan.Publish("broadcast", "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        data,
	})
	if err != nil {
		ps.logger.Errorw("Error while trying to publish data in broadcast method of pubsub module", "error", err)
		return err
	}

	return nil

}
