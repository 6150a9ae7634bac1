package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Options struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
	Domain     string
}

// Manager binds sessions to requests through a signed cookie.
type Manager struct {
	store  Store
	signer *Signer
	opts   Options
}

func NewManager(store Store, secret string, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 14 * 24 * time.Hour
	}
	return &Manager{store: store, signer: NewSigner(secret), opts: opts}
}

// Start loads the request's session or creates a fresh one. The cookie is
// written before any handler runs so its expiry slides with activity.
func (m *Manager) Start(c *gin.Context) (*Session, error) {
	if value, err := c.Cookie(m.opts.CookieName); err == nil && value != "" {
		if id, err := m.signer.Parse(value); err == nil {
			s, err := m.store.Load(c.Request.Context(), id)
			switch {
			case err == nil:
				return s, m.setCookie(c, s.ID)
			case !errors.Is(err, ErrNotFound):
				return nil, err
			}
		}
	}

	s, err := newSession()
	if err != nil {
		return nil, err
	}
	return s, m.setCookie(c, s.ID)
}

// Save persists s and refreshes its expiry.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.store.Save(ctx, s, m.opts.MaxAge)
}

// Login binds userID to the session under a new id so a pre-login cookie
// cannot be reused. It is also how a session follows its identity to a new id.
func (m *Manager) Login(c *gin.Context, s *Session, userID uuid.UUID) error {
	if err := m.rotate(c, s); err != nil {
		return err
	}
	s.UserID = userID
	return nil
}

// Logout discards the stored session and continues under a fresh
// anonymous one, so a flash set afterwards still reaches the next page.
func (m *Manager) Logout(c *gin.Context, s *Session) error {
	if err := m.rotate(c, s); err != nil {
		return err
	}
	s.UserID = uuid.Nil
	s.ReturnTo = ""
	return nil
}

func (m *Manager) rotate(c *gin.Context, s *Session) error {
	id, err := newID()
	if err != nil {
		return err
	}
	if err := m.store.Destroy(c.Request.Context(), s.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to drop previous session")
	}
	s.ID = id
	return m.setCookie(c, s.ID)
}

func (m *Manager) setCookie(c *gin.Context, id string) error {
	value, err := m.signer.Sign(id, time.Now().Add(m.opts.MaxAge))
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.opts.CookieName, value, int(m.opts.MaxAge.Seconds()), "/", m.opts.Domain, m.opts.Secure, true)
	return nil
}
