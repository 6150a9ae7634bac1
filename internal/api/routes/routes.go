package routes

import (
	"job-board-api/internal/api/handlers"
	"job-board-api/internal/api/middleware"
	"job-board-api/internal/app"
	"job-board-api/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up the API routes by calling resource-specific registration functions
func RegisterRoutes(router *gin.Engine, app *app.Application) {
	// --- Operational routes, no session ---
	router.GET("/health", handlers.HealthCheck)
	if app.Registry != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(app.Registry)))
	}
	log.Debug().Msg("Configuring Swagger UI handler")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	//Create handlers
	accountHandler := handlers.NewAccountHandler(app.Accounts, app.Resets, app.Sessions, app.Validator)
	jobHandler := handlers.NewJobHandler(app.Jobs, app.Validator)
	homeHandler := handlers.NewHomeHandler(app.Accounts, app.Jobs)

	// --- Middleware ---
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if app.AuthLimiter != nil {
		limit = app.AuthLimiter.Middleware()
	}

	// Everything below runs with a session and, when logged in, an identity.
	web := router.Group("/")
	web.Use(middleware.AuthGate(app.Sessions, app.Accounts))

	web.GET("/", homeHandler.GetHome)
	RegisterAccountRoutes(web, accountHandler, limit)
	RegisterJobRoutes(web, jobHandler)
}
