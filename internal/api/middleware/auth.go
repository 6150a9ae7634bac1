package middleware

import (
	"context"
	"errors"
	"net/http"
	"path"
	"slices"
	"strings"

	"job-board-api/internal/models"
	"job-board-api/internal/services"
	"job-board-api/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sessionCtx  = "session"
	identityCtx = "identity"
)

// IdentityLookup resolves a session's user id. services.AccountService satisfies it.
type IdentityLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
}

// authPaths are never remembered as the place to return to after login.
var authPaths = []string{"/login", "/logout", "/signup", "/forgot", "/reset", "/auth", "/flash", "/health", "/metrics", "/swagger"}

// AuthGate attaches the request's session and, when logged in, its identity.
// A session pointing at a deleted or migrated-away identity is logged out.
// The session is persisted after the handler chain.
func AuthGate(sessions *session.Manager, accounts IdentityLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := sessions.Start(c)
		if err != nil {
			log.Error().Err(err).Msg("Failed to start session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Session unavailable"})
			return
		}
		c.Set(sessionCtx, s)

		if s.Authenticated() {
			identity, err := accounts.GetByID(c.Request.Context(), s.UserID)
			switch {
			case err == nil:
				c.Set(identityCtx, identity)
			case errors.Is(err, services.ErrNotFound):
				log.Info().Str("user_id", s.UserID.String()).Msg("Session refers to a missing identity, logging out")
				s.UserID = uuid.Nil
			default:
				log.Error().Err(err).Msg("Failed to resolve session identity")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
				return
			}
		}

		if !s.Authenticated() && rememberable(c.Request) {
			s.ReturnTo = c.Request.URL.RequestURI()
		}

		c.Next()

		if err := sessions.Save(c.Request.Context(), s); err != nil {
			log.Error().Err(err).Msg("Failed to save session")
		}
	}
}

func rememberable(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	p := r.URL.Path
	if strings.Contains(path.Base(p), ".") {
		return false
	}
	for _, prefix := range authPaths {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return false
		}
	}
	return true
}

// RequireAuth stops unauthenticated callers: browsers go to /login, JSON
// clients get a 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) != nil {
			c.Next()
			return
		}
		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// RedirectIfAuthenticated keeps logged in callers away from login, signup and reset pages.
func RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) != nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole allows only identities with one of roles. Use after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil || !slices.Contains(roles, identity.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Your account type cannot do this"})
			return
		}
		c.Next()
	}
}

// WithViewer hands the resolved identity, nil when anonymous, to h.
func WithViewer(h func(c *gin.Context, viewer *models.Identity)) gin.HandlerFunc {
	return func(c *gin.Context) {
		h(c, CurrentIdentity(c))
	}
}

// CurrentIdentity returns the identity AuthGate resolved, or nil.
func CurrentIdentity(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityCtx)
	if !ok {
		return nil
	}
	identity, _ := v.(*models.Identity)
	return identity
}

// CurrentSession returns the session AuthGate attached, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionCtx)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		strings.Contains(c.ContentType(), "application/json")
}
