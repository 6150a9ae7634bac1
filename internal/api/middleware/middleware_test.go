package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"job-board-api/internal/metrics"
	"job-board-api/internal/models"
	"job-board-api/internal/services"
	"job-board-api/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	args := m.Called(ctx, id)
	identity, _ := args.Get(0).(*models.Identity)
	return identity, args.Error(1)
}

// loggedInCookie stores a session for userID and returns a cookie for it.
func loggedInCookie(t *testing.T, m *session.Manager, userID uuid.UUID) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	s, err := m.Start(c)
	require.NoError(t, err)
	require.NoError(t, m.Login(c, s, userID))
	require.NoError(t, m.Save(context.Background(), s))
	cookies := w.Result().Cookies()
	return cookies[len(cookies)-1]
}

func newGateRouter(m *session.Manager, lookup IdentityLookup) *gin.Engine {
	r := gin.New()
	r.Use(AuthGate(m, lookup))
	r.GET("/whoami", WithViewer(func(c *gin.Context, viewer *models.Identity) {
		if viewer == nil {
			c.JSON(http.StatusOK, gin.H{"id": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": viewer.ID.String()})
	}))
	account := r.Group("/account", RequireAuth())
	account.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	account.POST("/jobs", RequireRole(models.RoleRecruiter), func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/session", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"returnTo": CurrentSession(c).ReturnTo})
	})
	return r
}

func TestAuthGate(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore(), "secret", session.Options{})
	identity := &models.Identity{ID: uuid.New(), Email: "a@x.com", Role: models.RoleApplicant}
	lookup := &MockLookup{}
	lookup.On("GetByID", mock.Anything, identity.ID).Return(identity, nil)
	r := newGateRouter(m, lookup)

	t.Run("Resolves identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(loggedInCookie(t, m, identity.ID))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), identity.ID.String())
	})

	t.Run("Anonymous is redirected to login", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("JSON clients get 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/account", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/account/jobs", nil)
		req.AddCookie(loggedInCookie(t, m, identity.ID))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Stale identity is logged out", func(t *testing.T) {
		gone := uuid.New()
		lookup.On("GetByID", mock.Anything, gone).Return(nil, services.ErrNotFound)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(loggedInCookie(t, m, gone))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.JSONEq(t, `{"id":""}`, w.Body.String())
	})
}

func TestAuthGateRemembersReturnTo(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore(), "secret", session.Options{})
	r := newGateRouter(m, &MockLookup{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account?tab=profile", nil))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The next request on the same session sees the remembered path.
	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	req.AddCookie(cookies[len(cookies)-1])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"returnTo":"/account?tab=profile"}`, w.Body.String())
}

func TestRememberable(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   bool
	}{
		{http.MethodGet, "/account", true},
		{http.MethodGet, "/jobs/123", true},
		{http.MethodGet, "/login", false},
		{http.MethodGet, "/reset/abc", false},
		{http.MethodGet, "/auth/github/callback", false},
		{http.MethodGet, "/favicon.ico", false},
		{http.MethodPost, "/account/profile", false},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, rememberable(httptest.NewRequest(tt.method, tt.path, nil)))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(0.5), Burst: 2, CleanupInterval: time.Minute})
	defer rl.Stop()

	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "2", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, rl.Count())

	rl.cleanup(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, rl.Count())
}

type fakeRecorder struct {
	metrics.Nop
	routes   []string
	statuses []int
}

func (f *fakeRecorder) RecordHTTP(_, route string, status int, _ time.Duration) {
	f.routes = append(f.routes, route)
	f.statuses = append(f.statuses, status)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	rec := &fakeRecorder{}
	r := gin.New()
	r.Use(Metrics(rec))
	r.GET("/jobs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jobs/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, []string{"/jobs/:id", "unmatched"}, rec.routes)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, rec.statuses)
}
