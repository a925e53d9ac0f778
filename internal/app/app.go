package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/cache"
	"github.com/aliuyar1234/okrlaunch/internal/config"
	"github.com/aliuyar1234/okrlaunch/internal/db"
	"github.com/aliuyar1234/okrlaunch/internal/metrics"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const cachePrefix = "okrlaunch:"

// App holds the application state
type App struct {
	Config   *config.Config
	Store    store.Store
	Cache    cache.Store
	Services *Services
	Router   http.Handler

	server *http.Server
}

// New creates and initializes a new application instance
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	setupLogger(cfg.LogLevel, cfg.IsDev())
	metrics.MustRegister()

	log.Info().Msg("Initializing OKR Launchpad application")
	log.Info().Interface("config", cfg.RedactedValues()).Msg("Configuration loaded")

	st, err := db.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations if in dev mode
	if cfg.IsDev() {
		log.Info().Msg("Development mode: running migrations automatically")
		if err := st.ApplyMigrations(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		log.Info().Msg("Production mode: migrations must be run manually")
	}

	c, err := openCache(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	services := NewServices(cfg, st, c)

	app := &App{
		Config:   cfg,
		Store:    st,
		Cache:    c,
		Services: services,
		Router:   NewRouter(cfg, st, c, services),
	}

	log.Info().Msg("Application initialized successfully")
	return app, nil
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.RedisURL == "" {
		if !cfg.IsDev() {
			log.Warn().Msg("OKR_REDIS_URL is not set: sign-in state and wizard state are kept in process memory")
		}
		return cache.NewMemoryStore(), nil
	}

	c, err := cache.OpenRedis(ctx, cfg.RedisURL, cachePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info().Msg("Redis connection established")
	return c, nil
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := a.Config.HTTPAddr
	log.Info().Str("addr", addr).Msg("Starting HTTP server")

	// WriteTimeout leaves room for the slowest workflow call.
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: a.Config.WorkflowTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// the database and cache connections.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	if a.server != nil {
		err = a.server.Shutdown(ctx)
	}
	a.Close()
	return err
}

// Close releases the database and cache connections.
func (a *App) Close() {
	log.Info().Msg("Shutting down application")
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close cache")
		}
	}
	if a.Store != nil {
		log.Info().Msg("Closing database connection")
		a.Store.Close()
	}
}

// setupLogger configures the global logger
func setupLogger(level string, pretty bool) {
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	// Set log level
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Debug().Str("level", level).Msg("Logger configured")
}
