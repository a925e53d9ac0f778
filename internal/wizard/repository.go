package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/cache"
)

const keyPrefix = "wizard:"

var ErrUserIDRequired = errors.New("user id is required")

// Repository keeps one State per user in the cache. Concurrent writers for
// the same user race; the last write wins.
type Repository struct {
	cache cache.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewRepository(c cache.Store, ttl time.Duration) *Repository {
	return &Repository{
		cache: c,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the stored state or Initial when none exists.
func (r *Repository) Load(ctx context.Context, userID string) (State, error) {
	if userID == "" {
		return State{}, ErrUserIDRequired
	}
	var s State
	found, err := r.cache.Get(ctx, keyPrefix+userID, &s)
	if err != nil {
		return State{}, fmt.Errorf("failed to load wizard state: %w", err)
	}
	if !found {
		return Initial(), nil
	}
	return clone(s), nil
}

func (r *Repository) Save(ctx context.Context, userID string, s State) error {
	if userID == "" {
		return ErrUserIDRequired
	}
	if err := r.cache.Set(ctx, keyPrefix+userID, s, r.ttl); err != nil {
		return fmt.Errorf("failed to save wizard state: %w", err)
	}
	return nil
}

// Apply reduces each action in order against the stored state and saves the
// result. Nothing is saved when any action fails.
func (r *Repository) Apply(ctx context.Context, userID string, actions ...Action) (State, error) {
	s, err := r.Load(ctx, userID)
	if err != nil {
		return State{}, err
	}

	for _, a := range actions {
		s, err = Reduce(s, a)
		if err != nil {
			return State{}, err
		}
	}
	s.UpdatedAt = r.now()

	if err := r.Save(ctx, userID, s); err != nil {
		return State{}, err
	}
	return s, nil
}
