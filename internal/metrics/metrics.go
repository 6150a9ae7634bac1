// Package metrics exposes Prometheus counters for requests and account events.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and middleware record through.
type Recorder interface {
	RecordHTTP(method, route string, status int, d time.Duration)
	RecordLogin(result string)
	RecordSignup(role string)
	RecordRoleMigration(result string)
	RecordPasswordReset(stage, result string)
	RecordNotification(kind, result string)
}

type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	logins         *prometheus.CounterVec
	signups        *prometheus.CounterVec
	roleMigrations *prometheus.CounterVec
	passwordResets *prometheus.CounterVec
	notifications  *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobboard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_signups_total",
			Help: "Completed signups by role.",
		}, []string{"role"}),
		roleMigrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_role_migrations_total",
			Help: "Account type changes by result.",
		}, []string{"result"}),
		passwordResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_password_resets_total",
			Help: "Password reset requests and redemptions by result.",
		}, []string{"stage", "result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_notifications_total",
			Help: "Account notifications by kind and result.",
		}, []string{"kind", "result"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.logins,
		c.signups,
		c.roleMigrations,
		c.passwordResets,
		c.notifications,
	)
	return c
}

func (c *Collector) RecordHTTP(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordSignup(role string) {
	c.signups.WithLabelValues(role).Inc()
}

func (c *Collector) RecordRoleMigration(result string) {
	c.roleMigrations.WithLabelValues(result).Inc()
}

func (c *Collector) RecordPasswordReset(stage, result string) {
	c.passwordResets.WithLabelValues(stage, result).Inc()
}

func (c *Collector) RecordNotification(kind, result string) {
	c.notifications.WithLabelValues(kind, result).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards everything. Tests use it where metrics do not matter.
type Nop struct{}

func (Nop) RecordHTTP(string, string, int, time.Duration) {}
func (Nop) RecordLogin(string)                            {}
func (Nop) RecordSignup(string)                           {}
func (Nop) RecordRoleMigration(string)                    {}
func (Nop) RecordPasswordReset(string, string)            {}
func (Nop) RecordNotification(string, string)             {}
