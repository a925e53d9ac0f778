package postgres

import (
	"context"
	"errors"

	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements store.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New wraps an established pool. The caller owns the pool's lifetime only
// until the Store is closed.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Users() store.Users         { return &usersRepo{pool: s.pool} }
func (s *Store) OKRs() store.OKRGenerations { return &okrsRepo{pool: s.pool} }
func (s *Store) Audit() store.AuditLog      { return &auditRepo{pool: s.pool} }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Pool exposes the underlying pool for health checks and admin tooling.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
