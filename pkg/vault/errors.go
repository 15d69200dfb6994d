package vault

import "errors"

var (
	ErrClosed        = errors.New("vault: closed")
	ErrKeyGeneration = errors.New("vault: failed to generate process key")
	ErrSealFailed    = errors.New("vault: failed to seal payload")
)
