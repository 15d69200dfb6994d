package session

import "errors"

var (
	// ErrClosed indicates the manager has been closed.
	ErrClosed = errors.New("session.closed")

	// ErrTokenGeneration indicates a session id or key could not be generated.
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrKeyStorage indicates the ephemeral session key could not be stored.
	ErrKeyStorage = errors.New("session.key_storage_failed")
)

// Messages carried by failed Create results.
const (
	MessageInvalidCode    = "Invalid code"
	MessageInvalidRequest = "User ID is required"
	MessageUnavailable    = "Session could not be created"
)
