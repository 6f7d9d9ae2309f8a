package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/levelup/pkg/logger"
)

// Holder is the single source of truth for "is an authenticated operator
// present". It guards the current session and mirrors every change to the
// injected Store with replace-on-write semantics.
type Holder struct {
	mu      sync.RWMutex
	current Session
	active  bool

	store Store
	log   logger.Logger
}

// Option applies a configuration option to the Holder.
type Option func(*Holder)

// WithLogger sets a custom logger for the holder.
func WithLogger(log logger.Logger) Option {
	return func(h *Holder) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHolder creates a Holder backed by the given store.
func NewHolder(store Store, opts ...Option) *Holder {
	h := &Holder{store: store}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Restore adopts a persisted session if one exists and is well-formed.
// A missing or malformed record leaves the holder unauthenticated and is
// never reported as an error.
func (h *Holder) Restore(ctx context.Context) {
	s, err := h.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSession) && h.log != nil {
			h.log.Warn(ctx, "persisted session unreadable; starting unauthenticated", logger.Error(err))
		}
		return
	}
	if !s.Valid() {
		return
	}

	h.mu.Lock()
	h.current = s
	h.active = true
	h.mu.Unlock()
}

// Adopt sets the active session and persists it. Used on login success.
func (h *Holder) Adopt(ctx context.Context, s Session) error {
	if !s.Valid() {
		return fmt.Errorf("adopt: session must carry username and token")
	}

	h.mu.Lock()
	h.current = s
	h.active = true
	h.mu.Unlock()

	if err := h.store.Save(ctx, s); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear drops the active session and its persisted copy unconditionally.
// It is called on logout and on every login failure, so a half-authenticated
// client cannot survive a failed attempt.
func (h *Holder) Clear(ctx context.Context) {
	h.mu.Lock()
	h.current = Session{}
	h.active = false
	h.mu.Unlock()

	if err := h.store.Delete(ctx); err != nil && h.log != nil {
		h.log.Warn(ctx, "failed to delete persisted session", logger.Error(err))
	}
}

// Current returns the active session, if any.
func (h *Holder) Current() (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current, h.active
}

// Token implements the gateway's credential source.
func (h *Holder) Token() (string, bool) {
	s, ok := h.Current()
	return s.Token, ok
}
