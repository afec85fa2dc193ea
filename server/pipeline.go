package server

import (
	"bytes"

	"github.com/satori/go.uuid"
)

type authenticationRequest struct {
	Type  string    `json:"type"`
	Token uuid.UUID `json:"token"`
}

type authenticationAck struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
}

func encodeAuthAck(success bool) ([]byte, error) {
	return jsonCodec.Marshal(&authenticationAck{
		Type:    "authentication",
		Success: success,
	})
}

// Pipeline routes inbound socket frames. Clients only ever send two things
// over the socket: a keep-alive ping that is ignored, and an authentication
// frame proving token ownership.
type Pipeline struct {
	hub    *ConnectionHub
	logger *Logger
}

func NewPipeline(hub *ConnectionHub, logger *Logger) *Pipeline {
	return &Pipeline{
		hub:    hub,
		logger: logger,
	}
}

func (p *Pipeline) handleSocketMessage(session Session, payload []byte) bool {

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("ping")) {
		return true
	}

	request := &authenticationRequest{}
	if err := jsonCodec.Unmarshal(trimmed, request); err != nil {
		p.logger.Errorw("Error while parsing socket frame", "id", session.ID().String(), "error", err)
		return true
	}

	if request.Type != "authentication" {
		p.logger.Infow("Unrecognized socket frame type", "id", session.ID().String(), "type", request.Type)
		return true
	}

	p.hub.Authenticate(session.PlayerID(), request.Token)

	return true

}
