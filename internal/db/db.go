package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/aliuyar1234/okrlaunch/internal/store/postgres"
	"github.com/aliuyar1234/okrlaunch/internal/store/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect creates and returns a new PostgreSQL connection pool
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Open connects to the configured driver and returns the store. Migrations
// are not applied here; callers decide when to run them.
func Open(ctx context.Context, driver, dsn string) (store.Store, error) {
	switch driver {
	case DriverPostgres, "":
		pool, err := Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", DriverPostgres).Msg("Database connection established")
		return postgres.New(pool), nil

	case DriverSQLite:
		s, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		log.Info().Str("driver", DriverSQLite).Msg("Database connection established")
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
