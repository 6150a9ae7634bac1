package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"job-board-api/config"
	"job-board-api/internal/api/handlers"
	"job-board-api/internal/api/routes"
	"job-board-api/internal/app"
	"job-board-api/internal/credentials"
	"job-board-api/internal/notify"
	"job-board-api/internal/services"
	"job-board-api/internal/session"
	"job-board-api/internal/storage/memory"
	"job-board-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// captureNotifier keeps every message it is asked to deliver.
type captureNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (n *captureNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

// last returns the newest message of kind. Reset links are mailed in the
// background, so it waits briefly for one to arrive.
func (n *captureNotifier) last(t *testing.T, kind notify.Kind) notify.Message {
	t.Helper()
	var found notify.Message
	require.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i := len(n.messages) - 1; i >= 0; i-- {
			if n.messages[i].Kind == kind {
				found = n.messages[i]
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond, "no %s notification sent", kind)
	return found
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func newTestRouter(t *testing.T) (*gin.Engine, *captureNotifier) {
	t.Helper()
	hasher, err := credentials.NewStore(credentials.Config{Algorithm: credentials.AlgorithmBcrypt, Cost: 4})
	require.NoError(t, err)

	users := memory.NewUserRepo()
	jobs := memory.NewJobRepo()
	notifier := &captureNotifier{}

	application := &app.Application{
		Config:    &config.Config{},
		Validator: handlers.NewValidator(),
		Accounts:  services.NewAccountService(users, hasher, nil),
		Resets: services.NewPasswordResetService(users, hasher, notifier, nil, services.ResetOptions{
			Window:  time.Hour,
			BaseURL: "http://jobs.test",
		}),
		Jobs:     services.NewJobService(jobs, users),
		Sessions: session.NewManager(session.NewMemoryStore(), "test-secret", session.Options{}),
	}

	router := gin.New()
	routes.RegisterRoutes(router, application)
	return router, notifier
}

// client plays a browser: it keeps the latest session cookie between requests.
type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newClient(t *testing.T, router *gin.Engine) *client {
	return &client{t: t, router: router}
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "sid" {
			c.cookie = cookie
		}
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) getJSON(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	return c.send(req)
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req)
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.send(req)
}

func (c *client) flashes() map[string][]string {
	c.t.Helper()
	w := c.get("/flash")
	require.Equal(c.t, http.StatusOK, w.Code)
	var resp dto.FlashResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Messages
}

func (c *client) account() dto.AccountResponse {
	c.t.Helper()
	w := c.getJSON("/account")
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.AccountResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (c *client) signup(email, password, accountType string) {
	c.t.Helper()
	w := c.postForm("/signup", url.Values{
		"email":           {email},
		"password":        {password},
		"confirmPassword": {password},
		"type":            {accountType},
		"firstName":       {"Grace"},
		"lastName":        {"Hopper"},
	})
	require.Equal(c.t, http.StatusFound, w.Code)
	require.Equal(c.t, "/", w.Header().Get("Location"))
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, location, w.Header().Get("Location"))
}

func TestSignupLoginLogout(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)

	c.signup("Grace@Example.com", "secret", "applicant")

	acct := c.account()
	assert.Equal(t, "grace@example.com", acct.Email)
	assert.Equal(t, "applicant", string(acct.Role))
	assert.True(t, acct.HasPassword)
	assert.True(t, strings.HasPrefix(acct.Gravatar, "data:image/png;base64,"))
	require.NotNil(t, acct.RoleProfile.Applicant)

	t.Run("Logged in callers skip the login page", func(t *testing.T) {
		assertRedirect(t, c.get("/login"), "/")
	})

	assertRedirect(t, c.postForm("/logout", nil), "/")
	assert.Equal(t, http.StatusUnauthorized, c.getJSON("/account").Code)

	t.Run("Logout needs a session", func(t *testing.T) {
		assertRedirect(t, c.postForm("/logout", nil), "/login")
		assertRedirect(t, c.get("/logout"), "/login")
	})

	t.Run("Wrong password", func(t *testing.T) {
		assertRedirect(t, c.postForm("/login", url.Values{"email": {"grace@example.com"}, "password": {"nope"}}), "/login")
		assert.Equal(t, []string{"Invalid email or password."}, c.flashes()[session.FlashError])
	})

	t.Run("Unknown email reads the same", func(t *testing.T) {
		assertRedirect(t, c.postForm("/login", url.Values{"email": {"nobody@example.com"}, "password": {"secret"}}), "/login")
		assert.Equal(t, []string{"Invalid email or password."}, c.flashes()[session.FlashError])
	})

	t.Run("Returns to the page that required login", func(t *testing.T) {
		assertRedirect(t, c.get("/account?tab=profile"), "/login")
		w := c.postForm("/login", url.Values{"email": {"GRACE@example.com"}, "password": {"secret"}})
		assertRedirect(t, w, "/account?tab=profile")
		assert.Equal(t, []string{"Success! You are logged in."}, c.flashes()[session.FlashSuccess])
		assert.Equal(t, acct.ID, c.account().ID)
	})
}

func TestSignupValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)

	w := c.postForm("/signup", url.Values{
		"email":           {"grace@example.com"},
		"password":        {"abc"},
		"confirmPassword": {"abd"},
		"type":            {"admin"},
	})
	assertRedirect(t, w, "/signup")
	errs := c.flashes()[session.FlashError]
	assert.Contains(t, errs, "Password must be at least 4 characters long.")
	assert.Contains(t, errs, "Passwords do not match.")
	assert.Contains(t, errs, "Account type must be applicant or recruiter.")

	c.signup("grace@example.com", "secret", "recruiter")
	c.postForm("/logout", nil)

	w = c.postForm("/signup", url.Values{
		"email":           {"Grace@example.com"},
		"password":        {"other"},
		"confirmPassword": {"other"},
		"type":            {"applicant"},
	})
	assertRedirect(t, w, "/signup")
	assert.Equal(t, []string{"Account with that email address already exists."}, c.flashes()[session.FlashError])
}

func TestAccountTypeMigration(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)
	c.signup("grace@example.com", "secret", "recruiter")
	before := c.account()

	assertRedirect(t, c.postForm("/account/type", url.Values{"type": {"applicant"}}), "/account")
	assert.Equal(t, []string{"Your account type has been updated."}, c.flashes()[session.FlashSuccess])

	after := c.account()
	assert.NotEqual(t, before.ID, after.ID)
	assert.Equal(t, "applicant", string(after.Role))
	assert.Equal(t, before.Email, after.Email)
	assert.Equal(t, before.Profile.FirstName, after.Profile.FirstName)
	assert.Nil(t, after.RoleProfile.Recruiter)

	// The old password still works against the new identity.
	c.postForm("/logout", nil)
	assertRedirect(t, c.postForm("/login", url.Values{"email": {"grace@example.com"}, "password": {"secret"}}), "/")
	assert.Equal(t, after.ID, c.account().ID)

	t.Run("Invalid target", func(t *testing.T) {
		assertRedirect(t, c.postForm("/account/type", url.Values{"type": {"admin"}}), "/account")
		assert.Equal(t, []string{"Account type must be applicant or recruiter."}, c.flashes()[session.FlashError])
		assert.Equal(t, after.ID, c.account().ID)
	})
}

func TestProfilePasswordAndDelete(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)
	c.signup("grace@example.com", "secret", "applicant")

	w := c.postForm("/account/profile", url.Values{
		"email":          {"hopper@example.com"},
		"firstName":      {"<b>Grace</b>"},
		"major":          {"Mathematics"},
		"graduationYear": {"1934"},
		"skills":         {"cobol, compilers"},
	})
	assertRedirect(t, w, "/account")
	assert.Equal(t, []string{"Profile information has been updated."}, c.flashes()[session.FlashSuccess])

	acct := c.account()
	assert.Equal(t, "hopper@example.com", acct.Email)
	assert.Equal(t, "Grace", acct.Profile.FirstName)
	require.NotNil(t, acct.RoleProfile.Applicant)
	assert.Equal(t, "Mathematics", acct.RoleProfile.Applicant.Major)
	assert.Equal(t, 1934, acct.RoleProfile.Applicant.GraduationYear)
	assert.Equal(t, []string{"cobol", "compilers"}, acct.RoleProfile.Applicant.Skills)

	t.Run("Invalid website", func(t *testing.T) {
		w := c.postForm("/account/profile", url.Values{"email": {"hopper@example.com"}, "website": {"not a url"}})
		assertRedirect(t, w, "/account")
		assert.Equal(t, []string{"Website must be a valid URL."}, c.flashes()[session.FlashError])
	})

	assertRedirect(t, c.postForm("/account/password", url.Values{"password": {"n3w-pass"}, "confirmPassword": {"n3w-pass"}}), "/account")
	assert.Equal(t, []string{"Password has been changed."}, c.flashes()[session.FlashSuccess])

	c.postForm("/logout", nil)
	assertRedirect(t, c.postForm("/login", url.Values{"email": {"hopper@example.com"}, "password": {"secret"}}), "/login")
	assertRedirect(t, c.postForm("/login", url.Values{"email": {"hopper@example.com"}, "password": {"n3w-pass"}}), "/")
	c.flashes()

	assertRedirect(t, c.postForm("/account/delete", nil), "/")
	assert.Equal(t, []string{"Your account has been deleted."}, c.flashes()[session.FlashInfo])
	assert.Equal(t, http.StatusUnauthorized, c.getJSON("/account").Code)
	assertRedirect(t, c.postForm("/login", url.Values{"email": {"hopper@example.com"}, "password": {"n3w-pass"}}), "/login")
}

func TestUnlinkProvider(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)
	c.signup("grace@example.com", "secret", "applicant")

	t.Run("Not linked is a no-op", func(t *testing.T) {
		assertRedirect(t, c.get("/account/unlink/github"), "/account")
		assert.Equal(t, []string{"Github account has been unlinked."}, c.flashes()[session.FlashInfo])
	})

	t.Run("Unknown provider", func(t *testing.T) {
		assertRedirect(t, c.get("/account/unlink/myspace"), "/account")
		assert.Equal(t, []string{"Unknown login provider."}, c.flashes()[session.FlashError])
	})
}

var resetLink = regexp.MustCompile(`http://jobs\.test/reset/([0-9a-f]{32})`)

func TestPasswordResetFlow(t *testing.T) {
	router, notifier := newTestRouter(t)
	c := newClient(t, router)
	c.signup("grace@example.com", "secret", "applicant")
	c.postForm("/logout", nil)

	t.Run("Unknown email gets the same answer", func(t *testing.T) {
		assertRedirect(t, c.postForm("/forgot", url.Values{"email": {"nobody@example.com"}}), "/forgot")
		assert.Len(t, c.flashes()[session.FlashInfo], 1)
		assert.Zero(t, notifier.count())
	})

	assertRedirect(t, c.postForm("/forgot", url.Values{"email": {"Grace@example.com"}}), "/forgot")
	info := c.flashes()[session.FlashInfo]
	require.Len(t, info, 1)
	assert.Contains(t, info[0], "If an account with that email address exists")

	msg := notifier.last(t, notify.KindResetRequested)
	assert.Equal(t, "grace@example.com", msg.To)
	match := resetLink.FindStringSubmatch(msg.Body)
	require.Len(t, match, 2, msg.Body)
	token := match[1]

	t.Run("Bogus token", func(t *testing.T) {
		assertRedirect(t, c.get("/reset/"+strings.Repeat("0", 32)), "/forgot")
		assert.Equal(t, []string{"Password reset token is invalid or has expired."}, c.flashes()[session.FlashError])
	})

	w := c.get("/reset/" + token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)

	t.Run("Mismatched confirmation", func(t *testing.T) {
		w := c.postForm("/reset/"+token, url.Values{"password": {"brand-new"}, "confirmPassword": {"brand-old"}})
		assertRedirect(t, w, "/reset/"+token)
		assert.Equal(t, []string{"Passwords do not match."}, c.flashes()[session.FlashError])
	})

	w = c.postForm("/reset/"+token, url.Values{"password": {"brand-new"}, "confirmPassword": {"brand-new"}})
	assertRedirect(t, w, "/")
	assert.Equal(t, []string{"Success! Your password has been changed."}, c.flashes()[session.FlashSuccess])
	assert.Equal(t, "grace@example.com", c.account().Email)
	assert.Equal(t, "grace@example.com", notifier.last(t, notify.KindPasswordChanged).To)

	c.postForm("/logout", nil)
	assertRedirect(t, c.postForm("/login", url.Values{"email": {"grace@example.com"}, "password": {"brand-new"}}), "/")
	c.postForm("/logout", nil)

	t.Run("Token is single use", func(t *testing.T) {
		w := c.postForm("/reset/"+token, url.Values{"password": {"again-new"}, "confirmPassword": {"again-new"}})
		assertRedirect(t, w, "/forgot")
		assert.Equal(t, []string{"Password reset token is invalid or has expired."}, c.flashes()[session.FlashError])
	})
}

func TestJobsAndHomeFeed(t *testing.T) {
	router, _ := newTestRouter(t)
	recruiter := newClient(t, router)
	recruiter.signup("recruiter@example.com", "secret", "recruiter")
	applicant := newClient(t, router)
	applicant.signup("applicant@example.com", "secret", "applicant")
	anonymous := newClient(t, router)

	w := recruiter.postJSON("/jobs", `{"name":"Compiler Engineer","description":"Build tools","company":"Navy","skills":"cobol, compilers"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var job dto.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, []string{"cobol", "compilers"}, job.Skills)
	assert.Equal(t, "Grace Hopper", job.Owner.Name)
	jobPath := "/jobs/" + job.ID.String()

	opening := recruiter.account().RoleProfile.Recruiter.Openings
	require.Len(t, opening, 1)
	assert.Equal(t, job.ID, opening[0].JobID)

	t.Run("Only recruiters post", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, applicant.postJSON("/jobs", `{"name":"x"}`).Code)
		assert.Equal(t, http.StatusUnauthorized, anonymous.postJSON("/jobs", `{"name":"x"}`).Code)
	})

	t.Run("Description limit", func(t *testing.T) {
		body := `{"name":"x","description":"` + strings.Repeat("a", 141) + `"}`
		assert.Equal(t, http.StatusBadRequest, recruiter.postJSON("/jobs", body).Code)
	})

	w = applicant.postJSON(jobPath+"/apply", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusConflict, applicant.postJSON(jobPath+"/apply", "").Code)
	assert.Equal(t, http.StatusForbidden, recruiter.postJSON(jobPath+"/apply", "").Code)

	w = anonymous.getJSON(jobPath)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	require.Len(t, job.Applicants, 1)
	assert.Equal(t, "Grace Hopper", job.Applicants[0].Name)

	w = recruiter.postJSON(jobPath, `{"location":"Arlington"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, "Arlington", job.Location)
	assert.Equal(t, "Compiler Engineer", job.Name)

	t.Run("Home feed by role", func(t *testing.T) {
		var feed dto.HomeFeedResponse
		require.NoError(t, json.Unmarshal(applicant.getJSON("/").Body.Bytes(), &feed))
		assert.Len(t, feed.Jobs, 1)
		assert.Empty(t, feed.Applicants)

		require.NoError(t, json.Unmarshal(recruiter.getJSON("/").Body.Bytes(), &feed))
		assert.Empty(t, feed.Jobs)
		require.Len(t, feed.Applicants, 1)
		assert.Equal(t, "Grace Hopper", feed.Applicants[0].Name)

		feed = dto.HomeFeedResponse{}
		require.NoError(t, json.Unmarshal(anonymous.getJSON("/").Body.Bytes(), &feed))
		assert.Empty(t, feed.Jobs)
		assert.Empty(t, feed.Applicants)
	})

	t.Run("Listing and lookup", func(t *testing.T) {
		var jobs []dto.JobResponse
		require.NoError(t, json.Unmarshal(anonymous.getJSON("/jobs?limit=5").Body.Bytes(), &jobs))
		assert.Len(t, jobs, 1)
		assert.Equal(t, http.StatusBadRequest, anonymous.getJSON("/jobs?limit=0").Code)
		assert.Equal(t, http.StatusBadRequest, anonymous.getJSON("/jobs/not-a-uuid").Code)
	})

	assert.Equal(t, http.StatusNoContent, recruiter.postJSON(jobPath+"/delete", "").Code)
	assert.Equal(t, http.StatusNotFound, anonymous.getJSON(jobPath).Code)
	assert.Empty(t, recruiter.account().RoleProfile.Recruiter.Openings)
}

func TestHealthHasNoSession(t *testing.T) {
	router, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
}
