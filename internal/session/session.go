// Package session keeps per-browser state: the logged in identity, the
// page to return to after login, and one-shot flash messages.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Flash kinds rendered by the web views.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "errors"
)

type Session struct {
	ID       string              `json:"-"`
	UserID   uuid.UUID           `json:"userId"`
	ReturnTo string              `json:"returnTo,omitempty"`
	Flashes  map[string][]string `json:"flashes,omitempty"`
}

func newSession() (*Session, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, Flashes: map[string][]string{}}, nil
}

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *Session) Authenticated() bool {
	return s.UserID != uuid.Nil
}

func (s *Session) AddFlash(kind, msg string) {
	if s.Flashes == nil {
		s.Flashes = map[string][]string{}
	}
	s.Flashes[kind] = append(s.Flashes[kind], msg)
}

// TakeFlashes returns the pending messages and clears them.
func (s *Session) TakeFlashes() map[string][]string {
	out := s.Flashes
	if out == nil {
		out = map[string][]string{}
	}
	s.Flashes = map[string][]string{}
	return out
}

// TakeReturnTo returns the remembered path, or fallback, and forgets it.
func (s *Session) TakeReturnTo(fallback string) string {
	to := s.ReturnTo
	s.ReturnTo = ""
	if to == "" {
		return fallback
	}
	return to
}

// Store persists sessions by id. Load returns ErrNotFound for unknown or
// expired ids.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}
