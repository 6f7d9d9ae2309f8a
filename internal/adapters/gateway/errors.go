package gateway

import "errors"

// Sentinel kinds for gateway errors. Callers classify with errors.Is; views
// collapse them into a single user-facing message, the distinction matters
// for logging and metrics.
var (
	ErrTransport    = errors.New("transport failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRejected     = errors.New("request rejected")
	ErrServer       = errors.New("server error")
	ErrLoginFailed  = errors.New("login failed")
)

// kind maps an error to its metrics label.
func kind(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrRejected):
		return "rejected"
	case errors.Is(err, ErrServer):
		return "server"
	case errors.Is(err, ErrLoginFailed):
		return "login"
	default:
		return "transport"
	}
}
