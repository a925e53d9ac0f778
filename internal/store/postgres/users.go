package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `
	id, email, COALESCE(name, ''), COALESCE(role, ''),
	invitation_token, invitation_sent_at, invitation_accepted_at, invited_by,
	reminder_enabled, reminder_frequency, reminder_day, reminder_time,
	created_at, updated_at
`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	var frequency string
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.InvitationToken,
		&u.InvitationSentAt,
		&u.InvitationAcceptedAt,
		&u.InvitedBy,
		&u.Enabled,
		&frequency,
		&u.Day,
		&u.Time,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	u.Frequency = domain.ReminderFrequency(frequency)
	return u, err
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get user: %w", mapNotFound(err))
	}
	return u, nil
}

func (r *usersRepo) GetByInvitationToken(ctx context.Context, token string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE invitation_token = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get user by invitation token: %w", mapNotFound(err))
	}
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	settings := u.ReminderSettings
	if settings == (domain.ReminderSettings{}) {
		settings = domain.DefaultReminderSettings()
	}

	query := `
		INSERT INTO users (
			id, email, name, role, invitation_token, invitation_sent_at,
			invitation_accepted_at, invited_by, reminder_enabled,
			reminder_frequency, reminder_day, reminder_time
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Email,
		u.Name,
		u.Role,
		u.InvitationToken,
		u.InvitationSentAt,
		u.InvitationAcceptedAt,
		u.InvitedBy,
		settings.Enabled,
		string(settings.Frequency),
		settings.Day,
		settings.Time,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *usersRepo) Upsert(ctx context.Context, u domain.UserUpsert) (domain.User, error) {
	query := `
		INSERT INTO users (id, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, name = EXCLUDED.name, updated_at = NOW()
		RETURNING ` + userColumns

	out, err := scanUser(r.pool.QueryRow(ctx, query, u.ID, u.Email, u.Name))
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return out, nil
}

func (r *usersRepo) MarkInvitationAccepted(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE users
		SET invitation_accepted_at = $2, updated_at = NOW()
		WHERE id = $1 AND invitation_accepted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, id, at.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to mark invitation accepted: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *usersRepo) UpdateReminderSettings(ctx context.Context, id string, settings domain.ReminderSettings) (*domain.User, error) {
	query := `
		UPDATE users
		SET reminder_enabled = $2,
			reminder_frequency = $3,
			reminder_day = $4,
			reminder_time = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query,
		id,
		settings.Enabled,
		string(settings.Frequency),
		settings.Day,
		settings.Time,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update reminder settings: %w", err)
	}
	return &u, nil
}
