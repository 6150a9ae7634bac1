package routes_test

import (
	"net/http"
	"testing"

	"job-board-api/internal/api/handlers"
	"job-board-api/internal/api/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAccountHandler is a mock type for handlers.AccountHandlerInterface
type MockAccountHandler struct {
	mock.Mock
}

func (m *MockAccountHandler) GetFlash(c *gin.Context)        { m.Called(c) }
func (m *MockAccountHandler) PostLogin(c *gin.Context)       { m.Called(c) }
func (m *MockAccountHandler) Logout(c *gin.Context)          { m.Called(c) }
func (m *MockAccountHandler) PostSignup(c *gin.Context)      { m.Called(c) }
func (m *MockAccountHandler) GetAccount(c *gin.Context)      { m.Called(c) }
func (m *MockAccountHandler) PostAccountType(c *gin.Context) { m.Called(c) }
func (m *MockAccountHandler) PostProfile(c *gin.Context)     { m.Called(c) }
func (m *MockAccountHandler) PostPassword(c *gin.Context)    { m.Called(c) }
func (m *MockAccountHandler) PostDelete(c *gin.Context)      { m.Called(c) }
func (m *MockAccountHandler) GetUnlink(c *gin.Context)       { m.Called(c) }
func (m *MockAccountHandler) PostForgot(c *gin.Context)      { m.Called(c) }
func (m *MockAccountHandler) GetReset(c *gin.Context)        { m.Called(c) }
func (m *MockAccountHandler) PostReset(c *gin.Context)       { m.Called(c) }

var _ handlers.AccountHandlerInterface = (*MockAccountHandler)(nil)

// MockJobHandler is a mock type for handlers.JobHandlerInterface
type MockJobHandler struct {
	mock.Mock
}

func (m *MockJobHandler) CreateJob(c *gin.Context)  { m.Called(c) }
func (m *MockJobHandler) ListJobs(c *gin.Context)   { m.Called(c) }
func (m *MockJobHandler) GetJobByID(c *gin.Context) { m.Called(c) }
func (m *MockJobHandler) UpdateJob(c *gin.Context)  { m.Called(c) }
func (m *MockJobHandler) DeleteJob(c *gin.Context)  { m.Called(c) }
func (m *MockJobHandler) ApplyToJob(c *gin.Context) { m.Called(c) }

var _ handlers.JobHandlerInterface = (*MockJobHandler)(nil)

type route struct {
	Method string
	Path   string
}

func assertRoutes(t *testing.T, router *gin.Engine, expected []route) {
	t.Helper()
	registeredRoutes := router.Routes()

	registeredMap := make(map[string]bool)
	for _, routeInfo := range registeredRoutes {
		registeredMap[routeInfo.Method+" "+routeInfo.Path] = true
	}

	assert.Len(t, registeredRoutes, len(expected), "Number of registered routes should match expected")
	for _, e := range expected {
		assert.True(t, registeredMap[e.Method+" "+e.Path], "Expected route %s %s to be registered", e.Method, e.Path)
	}
}

func TestRegisterAccountRoutes(t *testing.T) {
	router := gin.New()
	routes.RegisterAccountRoutes(router.Group("/"), new(MockAccountHandler), func(c *gin.Context) { c.Next() })

	assertRoutes(t, router, []route{
		{http.MethodGet, "/login"},
		{http.MethodPost, "/login"},
		{http.MethodGet, "/signup"},
		{http.MethodPost, "/signup"},
		{http.MethodGet, "/forgot"},
		{http.MethodPost, "/forgot"},
		{http.MethodGet, "/reset/:token"},
		{http.MethodPost, "/reset/:token"},
		{http.MethodGet, "/logout"},
		{http.MethodPost, "/logout"},
		{http.MethodGet, "/flash"},
		{http.MethodGet, "/account"},
		{http.MethodPost, "/account/type"},
		{http.MethodPost, "/account/profile"},
		{http.MethodPost, "/account/password"},
		{http.MethodPost, "/account/delete"},
		{http.MethodGet, "/account/unlink/:provider"},
	})
}

func TestRegisterJobRoutes(t *testing.T) {
	router := gin.New()
	routes.RegisterJobRoutes(router.Group("/"), new(MockJobHandler))

	assertRoutes(t, router, []route{
		{http.MethodGet, "/jobs"},
		{http.MethodGet, "/jobs/:id"},
		{http.MethodPost, "/jobs"},
		{http.MethodPost, "/jobs/:id"},
		{http.MethodPost, "/jobs/:id/delete"},
		{http.MethodPost, "/jobs/:id/apply"},
	})
}
