package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stanstork/notifications/internal/config"
	"github.com/stanstork/notifications/internal/handlers"
	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/middleware"
	"github.com/stanstork/notifications/internal/migration"
	"github.com/stanstork/notifications/internal/notification"
	"github.com/stanstork/notifications/internal/repository"
	"github.com/stanstork/notifications/internal/routes"
	"github.com/stanstork/notifications/internal/temporal"
	"github.com/stanstork/notifications/internal/worker"

	_ "github.com/lib/pq" // PostgreSQL driver
	tc "go.temporal.io/sdk/client"
)

type application struct {
	config         *config.Config
	db             *sql.DB
	redis          *redis.Client
	temporalClient tc.Client
	translator     *i18n.Translator
	logger         zerolog.Logger

	settings   *notification.SettingsService
	inAppRepo  repository.InAppRepository
	dispatcher *notification.Dispatcher
}

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := newLogger(cfg.Server)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	if err := migration.RunMigrations(db, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Translations are loaded once and shared read-only by every job.
	tr, err := i18n.Init(i18n.WithDefaultLocale(cfg.Locales.DefaultLocale), i18n.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load translations")
	}

	// Initialize Temporal client.
	temporalClient, err := tc.Dial(tc.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporal.NewZerologAdapter(logger),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to create Temporal client")
	}
	defer temporalClient.Close()

	app := &application{
		config:         cfg,
		db:             db,
		temporalClient: temporalClient,
		translator:     tr,
		logger:         logger,
	}

	if cfg.Redis.URL != "" {
		app.redis, err = connectRedis(context.Background(), cfg.Redis.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer app.redis.Close()
	} else {
		logger.Warn().Msg("redis.url not set, delivery dedupe is process local")
	}

	settingsRepo := repository.NewSettingsRepository(db)
	app.settings = notification.NewSettingsService(settingsRepo, logger)
	app.inAppRepo = repository.NewInAppRepository(db)
	app.dispatcher = notification.NewDispatcher(app.settings, tr, temporal.NewJobQueue(temporalClient, cfg.Temporal), logger)

	// Start the Temporal worker.
	temporalWorker := app.startTemporalWorker()

	// Initialize the HTTP router and middleware.
	router := app.initRouter()
	loggedRouter := middleware.RequestID(middleware.LoggingMiddleware(logger)(router))
	corsHandler := h.CORS(
		h.AllowedOrigins(cfg.Server.AllowedOrigins),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.RequestIDHeader}),
		h.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, temporalWorker)

	logger.Info().Msg("Application terminated.")
}

func newLogger(cfg config.ServerConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	return zerolog.New(consoleWriter).With().Timestamp().Logger()
}

// connectRedis pings a few times before giving up so the service can start
// alongside Redis.
func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := redis.NewClient(opts)
	for {
		err := client.Ping(ctx).Err()
		if err == nil {
			return client, nil
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Join(err, ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter() http.Handler {
	return routes.NewRouter(routes.Handlers{
		Settings:      handlers.NewSettingsHandler(app.settings, app.logger),
		Users:         handlers.NewUserHandler(app.settings, app.logger),
		Notifications: handlers.NewNotificationHandler(notification.NewInAppService(app.inAppRepo), app.logger),
		Dispatch:      handlers.NewDispatchHandler(app.dispatcher, app.logger),
	})
}

func (app *application) startTemporalWorker() *worker.Worker {
	logger := app.logger

	emailSender, err := notification.NewEmailSender(app.config.Email, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to configure email sender")
	}

	var deduper notification.Deduper = notification.NewMemoryDeduper()
	if app.redis != nil {
		deduper = notification.NewRedisDeduper(app.redis, app.config.Redis.DedupeTTL)
	}

	runner := notification.NewJobRunner(app.settings, deduper, logger,
		notification.NewPushExecutor(notification.NewFirebaseSender(app.config.Push.Firebase, logger), app.translator, app.settings, logger),
		notification.NewEmailExecutor(emailSender, app.translator, logger),
		notification.NewInAppExecutor(app.inAppRepo, app.translator, logger),
	)

	w := worker.New(app.temporalClient, app.config.Temporal.TaskQueue, runner, logger)
	if err := w.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Unable to start worker")
	}
	return w
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, temporalWorker *worker.Worker) {
	logger := app.logger
	server := &http.Server{
		Addr:              ":" + app.config.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}

	temporalWorker.Stop()
	logger.Info().Msg("Temporal worker stopped.")
}
