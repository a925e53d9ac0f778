package integration

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/db"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	postgresHost      string
	postgresPort      string
	postgresAdminPool *pgxpool.Pool
	redisURL          string

	containersUnavailableErr error
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	var started []testcontainers.Container
	terminate := func() {
		for _, c := range started {
			_ = c.Terminate(context.Background())
		}
	}

	pg, err := startPostgres(ctx)
	if err != nil {
		containersUnavailableErr = err
	} else {
		started = append(started, pg)
		redis, err := startRedis(ctx)
		if err != nil {
			containersUnavailableErr = err
		} else {
			started = append(started, redis)
		}
	}
	cancel()

	code := m.Run()

	if postgresAdminPool != nil {
		postgresAdminPool.Close()
	}
	terminate()
	os.Exit(code)
}

func startPostgres(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16.4-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		// Postgres logs readiness twice: once for the init server, once for the real one.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, err
	}
	postgresHost, postgresPort = host, port.Port()

	pool, err := db.Connect(ctx, postgresDSN("postgres"))
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, err
	}
	postgresAdminPool = pool

	return container, nil
}

func startRedis(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, err
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, err
	}
	redisURL = fmt.Sprintf("redis://%s:%s/0", host, port.Port())

	return container, nil
}

func postgresDSN(dbName string) string {
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/%s?sslmode=disable", postgresHost, postgresPort, dbName)
}

func requirePostgres(t *testing.T) {
	t.Helper()
	if postgresAdminPool == nil {
		err := containersUnavailableErr
		if err == nil {
			err = errors.New("postgres test container unavailable")
		}
		t.Skipf("skipping integration tests: %v", err)
	}
}

func requireRedis(t *testing.T) {
	t.Helper()
	if redisURL == "" {
		err := containersUnavailableErr
		if err == nil {
			err = errors.New("redis test container unavailable")
		}
		t.Skipf("skipping integration tests: %v", err)
	}
}

// newTestStore creates a fresh database, migrates it and returns a store
// bound to it. The database is dropped on cleanup.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	requirePostgres(t)

	dbName := "okrlaunch_test_" + randomHex(t, 8)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := postgresAdminPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		t.Fatalf("failed to create database %q: %v", dbName, err)
	}

	st, err := db.Open(ctx, db.DriverPostgres, postgresDSN(dbName))
	if err != nil {
		_, _ = postgresAdminPool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
		t.Fatalf("failed to connect to database %q: %v", dbName, err)
	}

	if err := st.ApplyMigrations(ctx); err != nil {
		st.Close()
		_, _ = postgresAdminPool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		st.Close()

		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, _ = postgresAdminPool.Exec(cleanupCtx, `
			SELECT pg_terminate_backend(pid)
			FROM pg_stat_activity
			WHERE datname = $1 AND pid <> pg_backend_pid()
		`, dbName)
		_, _ = postgresAdminPool.Exec(cleanupCtx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
	})

	return st
}

func randomHex(t *testing.T, bytes int) string {
	t.Helper()
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("failed to generate random bytes: %v", err)
	}
	return hex.EncodeToString(b)
}
