package server

import (
	"fmt"

	"github.com/pkg/errors"
)

// NotFoundError covers unknown players, tokens and games. The API layer maps
// it to a 404 response.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Resource, e.ID)
}

// InvalidArgumentError covers requests that name a known resource but are not
// legal against it, e.g. a turn submitted by a non-participant. Maps to 400.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// BridgeDeliveryError wraps a failed publish to the engine topic. It is not
// retried at this layer, retry policy belongs to the transport.
type BridgeDeliveryError struct {
	Err error
}

func (e *BridgeDeliveryError) Error() string {
	return "bridge delivery failed: " + e.Err.Error()
}

func (e *BridgeDeliveryError) Cause() error {
	return e.Err
}

// BridgeDecodeError wraps a malformed inbound engine message. The consumer
// loop logs it and keeps running.
type BridgeDecodeError struct {
	Err error
}

func (e *BridgeDecodeError) Error() string {
	return "bridge decode failed: " + e.Err.Error()
}

func (e *BridgeDecodeError) Cause() error {
	return e.Err
}

// EngineFailureError is an explicit failure reported by the engine for a game.
type EngineFailureError struct {
	GameID      string
	Code        int32
	Description string
}

func (e *EngineFailureError) Error() string {
	return fmt.Sprintf("engine failure for game %s (code %d): %s", e.GameID, e.Code, e.Description)
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

func IsInvalidArgument(err error) bool {
	_, ok := errors.Cause(err).(*InvalidArgumentError)
	return ok
}
