package periodic

import "errors"

var (
	ErrAlreadyStarted = errors.New("periodic: runner already started")
	ErrStopped        = errors.New("periodic: runner stopped")
)
