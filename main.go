package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"job-board-api/config"
	"job-board-api/internal/api/handlers"
	"job-board-api/internal/api/middleware"
	"job-board-api/internal/app"
	"job-board-api/internal/credentials"
	"job-board-api/internal/database"
	"job-board-api/internal/logger"
	"job-board-api/internal/mailer"
	"job-board-api/internal/metrics"
	"job-board-api/internal/notify"
	"job-board-api/internal/queue"
	"job-board-api/internal/server"
	"job-board-api/internal/services"
	"job-board-api/internal/session"
	"job-board-api/internal/storage"
	"job-board-api/internal/storage/memory"
	"job-board-api/internal/storage/mongodb"
	"job-board-api/internal/storage/postgres"

	_ "job-board-api/docs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// @title           Job Board API
// @version         1.0
// @description     Accounts, password reset and job postings for the job board.

// @host      localhost:8080
// @BasePath  /
// @schemes   http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	repos, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open storage")
	}
	defer closeStorage()

	// --- Sessions ---
	var sessionStore session.Store
	if cfg.Storage.Driver == config.DriverMemory {
		sessionStore = session.NewMemoryStore()
	} else {
		redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		sessionStore = session.NewRedisStore(redisClient)
	}
	sessions := session.NewManager(sessionStore, cfg.Session.Secret, session.Options{
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.Session.Secure,
		Domain:     cfg.Session.Domain,
	})

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)

	// --- Credentials and notifications ---
	hasher, err := credentials.NewStore(credentials.Config{
		Algorithm: cfg.Credentials.Algorithm,
		Cost:      cfg.Credentials.Cost,
		Workers:   cfg.Credentials.Workers,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up credential store")
	}

	notifier, closeNotifier, err := newNotifier(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("transport", cfg.Notifications.Transport).Msg("Failed to set up notifications")
	}
	defer closeNotifier()

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimit.Rate),
		Burst: cfg.RateLimit.Burst,
	})
	defer limiter.Stop()

	application := &app.Application{
		Config:    cfg,
		Validator: handlers.NewValidator(),
		Accounts:  services.NewAccountService(repos.users, hasher, recorder),
		Resets: services.NewPasswordResetService(repos.users, hasher, notify.WithTimeout(notifier, cfg.Notifications.Timeout), recorder, services.ResetOptions{
			Window:          cfg.Reset.Window,
			BaseURL:         cfg.Server.BaseURL,
			DeliveryTimeout: cfg.Notifications.Timeout,
		}),
		Jobs:        services.NewJobService(repos.jobs, repos.users),
		Sessions:    sessions,
		AuthLimiter: limiter,
		Metrics:     recorder,
		Registry:    registry,
	}

	srv := server.NewServer(application)

	// --- Graceful Shutdown Handling ---
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := application.Resets.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Pending reset e-mails were not delivered")
	}
	log.Info().Msg("Application gracefully stopped.")
}

type repositories struct {
	users storage.UserRepository
	jobs  storage.JobRepository
}

// openStorage builds the repositories for the configured driver. The
// returned func releases the underlying connections.
func openStorage(ctx context.Context, cfg *config.Config) (repositories, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := database.RunMigrations(cfg.DB.DSN()); err != nil {
			return repositories{}, nil, err
		}
		pool, err := database.NewConnectionPool(ctx, cfg.DB)
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			users: postgres.NewUserRepo(pool),
			jobs:  postgres.NewJobRepo(pool),
		}, pool.Close, nil

	case config.DriverMongo:
		client, err := database.NewMongoClient(ctx, cfg.Mongo)
		if err != nil {
			return repositories{}, nil, err
		}
		closeClient := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
			}
		}
		db := client.Database(cfg.Mongo.Database)
		users, err := mongodb.NewUserRepo(ctx, db)
		if err != nil {
			closeClient()
			return repositories{}, nil, err
		}
		jobs, err := mongodb.NewJobRepo(ctx, db)
		if err != nil {
			closeClient()
			return repositories{}, nil, err
		}
		return repositories{users: users, jobs: jobs}, closeClient, nil

	default:
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		return repositories{users: memory.NewUserRepo(), jobs: memory.NewJobRepo()}, func() {}, nil
	}
}

// newNotifier returns the notifier for the configured transport. With the
// amqp transport it also starts a consumer that sends the queued mail, and
// the returned func closes the publisher.
func newNotifier(ctx context.Context, cfg *config.Config) (notify.Notifier, func(), error) {
	switch cfg.Notifications.Transport {
	case "smtp":
		smtpCfg, err := mailer.ConfigFromEnv()
		if err != nil {
			return nil, nil, err
		}
		return notify.NewMailNotifier(mailer.New(smtpCfg)), func() {}, nil

	case "amqp":
		publisher, err := queue.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return nil, nil, err
		}
		smtpCfg, err := mailer.ConfigFromEnv()
		if err != nil {
			log.Warn().Err(err).Msg("SMTP not configured, queued notifications are only logged")
			go runConsumer(ctx, queue.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Queue, notify.LogNotifier{}))
		} else {
			go runConsumer(ctx, queue.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Queue, notify.NewMailNotifier(mailer.New(smtpCfg))))
		}
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close AMQP publisher")
			}
		}, nil

	default:
		return notify.LogNotifier{}, func() {}, nil
	}
}

func runConsumer(ctx context.Context, consumer *queue.Consumer) {
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Notification consumer stopped")
	}
}
