package app

import "errors"

// Sentinel kinds for view-controller errors.
var (
	ErrMissingCredentials = errors.New("username and password required")
	ErrNotLoggedIn        = errors.New("not logged in")
)
