package app

import (
	"job-board-api/config"
	"job-board-api/internal/api/middleware"
	"job-board-api/internal/metrics"
	"job-board-api/internal/services"
	"job-board-api/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
)

// Application holds core application dependencies.
type Application struct {
	Config    *config.Config
	Validator *validator.Validate

	Accounts services.AccountService
	Resets   services.PasswordResetService
	Jobs     services.JobService

	Sessions *session.Manager
	// AuthLimiter throttles login, signup and password reset posts per client IP.
	AuthLimiter *middleware.RateLimiter

	Metrics  metrics.Recorder
	Registry *prometheus.Registry
}
