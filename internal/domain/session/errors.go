package session

import "errors"

// Sentinel kinds for session errors.
var (
	ErrNoSession = errors.New("no persisted session")
)
