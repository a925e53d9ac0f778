package store

import (
	"context"
	"errors"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. The postgres and sqlite drivers
// implement it; services only ever see this interface.
type Store interface {
	Users() Users
	OKRs() OKRGenerations
	Audit() AuditLog

	// ApplyMigrations brings the schema up to date using the driver's
	// embedded migrations.
	ApplyMigrations(ctx context.Context) error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	Close()
}

type Users interface {
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByInvitationToken returns the user holding token, accepted or not.
	GetByInvitationToken(ctx context.Context, token string) (domain.User, error)

	// Create inserts a user. Returns ErrAlreadyExists on id or token conflicts.
	Create(ctx context.Context, u domain.User) error

	// Upsert inserts the user or refreshes email and name for an existing id.
	Upsert(ctx context.Context, u domain.UserUpsert) (domain.User, error)

	// MarkInvitationAccepted sets invitation_accepted_at only while it is
	// still NULL. It returns false when no row changed, i.e. the invitation
	// was already accepted or the user does not exist.
	MarkInvitationAccepted(ctx context.Context, id string, at time.Time) (bool, error)

	// UpdateReminderSettings returns nil without error when no row matches.
	UpdateReminderSettings(ctx context.Context, id string, settings domain.ReminderSettings) (*domain.User, error)
}

type OKRGenerations interface {
	// GetActiveDraft returns the newest is_draft row for the user.
	GetActiveDraft(ctx context.Context, userID string) (domain.OKRGeneration, error)

	// GetLatest returns the newest row for the user regardless of draft state.
	GetLatest(ctx context.Context, userID string) (domain.OKRGeneration, error)

	// Create inserts a row. A zero ID is replaced by a new UUID and a zero
	// CreatedAt by the current time.
	Create(ctx context.Context, g domain.OKRGeneration) (domain.OKRGeneration, error)

	// FinalizeForUser clears is_draft on the user's draft rows.
	FinalizeForUser(ctx context.Context, userID string) (int64, error)

	// UpdateDraftOKRs rewrites okrs on the user's draft rows only.
	UpdateDraftOKRs(ctx context.Context, userID string, okrs []domain.Objective) (int64, error)
}

type AuditLog interface {
	Insert(ctx context.Context, e domain.AuditEvent) error
}
