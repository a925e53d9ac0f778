package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `
	id, email, COALESCE(name, ''), COALESCE(role, ''),
	invitation_token, invitation_sent_at, invitation_accepted_at, invited_by,
	reminder_enabled, reminder_frequency, reminder_day, reminder_time,
	created_at, updated_at
`

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                    domain.User
		token, invitedBy     sql.NullString
		sentAt, acceptedAt   sql.NullString
		frequency            string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&token,
		&sentAt,
		&acceptedAt,
		&invitedBy,
		&u.Enabled,
		&frequency,
		&u.Day,
		&u.Time,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.InvitationToken = mapNullStringPtr(token)
	u.InvitedBy = mapNullStringPtr(invitedBy)
	u.Frequency = domain.ReminderFrequency(frequency)

	if u.InvitationSentAt, err = mapNullTimePtr(sentAt); err != nil {
		return domain.User{}, err
	}
	if u.InvitationAcceptedAt, err = mapNullTimePtr(acceptedAt); err != nil {
		return domain.User{}, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get user: %w", mapNotFound(err))
	}
	return u, nil
}

func (r *usersRepo) GetByInvitationToken(ctx context.Context, token string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE invitation_token = ?`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, token))
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

	now := time.Now()
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
		INSERT INTO users (
			id, email, name, role, invitation_token, invitation_sent_at,
			invitation_accepted_at, invited_by, reminder_enabled,
			reminder_frequency, reminder_day, reminder_time, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Email,
		u.Name,
		u.Role,
		mapOptionalString(u.InvitationToken),
		mapOptionalTime(u.InvitationSentAt),
		mapOptionalTime(u.InvitationAcceptedAt),
		mapOptionalString(u.InvitedBy),
		settings.Enabled,
		string(settings.Frequency),
		settings.Day,
		settings.Time,
		formatTime(createdAt),
		formatTime(now),
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
	now := formatTime(time.Now())

	query := `
		INSERT INTO users (id, email, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET email = excluded.email, name = excluded.name, updated_at = excluded.updated_at
		RETURNING ` + userColumns

	out, err := scanUser(r.db.QueryRowContext(ctx, query, u.ID, u.Email, u.Name, now, now))
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return out, nil
}

func (r *usersRepo) MarkInvitationAccepted(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE users
		SET invitation_accepted_at = ?, updated_at = ?
		WHERE id = ? AND invitation_accepted_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, formatTime(at), formatTime(time.Now()), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark invitation accepted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *usersRepo) UpdateReminderSettings(ctx context.Context, id string, settings domain.ReminderSettings) (*domain.User, error) {
	query := `
		UPDATE users
		SET reminder_enabled = ?,
			reminder_frequency = ?,
			reminder_day = ?,
			reminder_time = ?,
			updated_at = ?
		WHERE id = ?
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query,
		settings.Enabled,
		string(settings.Frequency),
		settings.Day,
		settings.Time,
		formatTime(time.Now()),
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update reminder settings: %w", err)
	}
	return &u, nil
}
