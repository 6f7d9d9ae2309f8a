// Package session owns the authenticated operator identity: the in-memory
// session, its persisted copy, and invalidation.
package session

import "context"

// Session is the authenticated operator identity. It is all-or-nothing: a
// username without a credential is not a valid session.
type Session struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Valid reports whether the session is well-formed.
func (s Session) Valid() bool {
	return s.Username != "" && s.Token != ""
}

// Store persists at most one session record. Load returns ErrNoSession when
// no well-formed record exists; absence is a normal state, not a failure.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context) error
}
