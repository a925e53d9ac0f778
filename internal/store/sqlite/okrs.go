package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/google/uuid"
)

type okrsRepo struct {
	db *sql.DB
}

const okrColumns = `
	id, user_id, website_url, company_name, planning_period,
	strategic_narrative, okrs, is_draft, created_at
`

func scanOKR(row rowScanner) (domain.OKRGeneration, error) {
	var (
		g          domain.OKRGeneration
		id         string
		websiteURL sql.NullString
		raw        string
		createdAt  string
	)
	err := row.Scan(
		&id,
		&g.UserID,
		&websiteURL,
		&g.CompanyName,
		&g.PlanningPeriod,
		&g.StrategicNarrative,
		&raw,
		&g.IsDraft,
		&createdAt,
	)
	if err != nil {
		return domain.OKRGeneration{}, err
	}

	if g.ID, err = uuid.Parse(id); err != nil {
		return domain.OKRGeneration{}, fmt.Errorf("invalid okr generation id %q: %w", id, err)
	}
	g.WebsiteURL = mapNullStringPtr(websiteURL)
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &g.OKRs); err != nil {
			return domain.OKRGeneration{}, fmt.Errorf("failed to decode okrs: %w", err)
		}
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.OKRGeneration{}, err
	}
	return g, nil
}

func encodeOKRs(okrs []domain.Objective) (string, error) {
	if okrs == nil {
		okrs = []domain.Objective{}
	}
	raw, err := json.Marshal(okrs)
	return string(raw), err
}

func (r *okrsRepo) GetActiveDraft(ctx context.Context, userID string) (domain.OKRGeneration, error) {
	query := `
		SELECT ` + okrColumns + `
		FROM okr_generations
		WHERE user_id = ? AND is_draft = 1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	g, err := scanOKR(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return domain.OKRGeneration{}, fmt.Errorf("failed to get draft okrs: %w", mapNotFound(err))
	}
	return g, nil
}

func (r *okrsRepo) GetLatest(ctx context.Context, userID string) (domain.OKRGeneration, error) {
	query := `
		SELECT ` + okrColumns + `
		FROM okr_generations
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	g, err := scanOKR(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return domain.OKRGeneration{}, fmt.Errorf("failed to get latest okrs: %w", mapNotFound(err))
	}
	return g, nil
}

func (r *okrsRepo) Create(ctx context.Context, g domain.OKRGeneration) (domain.OKRGeneration, error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	g.CreatedAt = g.CreatedAt.UTC()

	raw, err := encodeOKRs(g.OKRs)
	if err != nil {
		return domain.OKRGeneration{}, fmt.Errorf("failed to encode okrs: %w", err)
	}

	query := `
		INSERT INTO okr_generations (
			id, user_id, website_url, company_name, planning_period,
			strategic_narrative, okrs, is_draft, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + okrColumns

	out, err := scanOKR(r.db.QueryRowContext(ctx, query,
		g.ID.String(),
		g.UserID,
		mapOptionalString(g.WebsiteURL),
		g.CompanyName,
		g.PlanningPeriod,
		g.StrategicNarrative,
		raw,
		g.IsDraft,
		formatTime(g.CreatedAt),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.OKRGeneration{}, store.ErrAlreadyExists
		}
		return domain.OKRGeneration{}, fmt.Errorf("failed to create okr generation: %w", err)
	}
	return out, nil
}

func (r *okrsRepo) FinalizeForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE okr_generations SET is_draft = 0 WHERE user_id = ? AND is_draft = 1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize okrs: %w", err)
	}
	return res.RowsAffected()
}

func (r *okrsRepo) UpdateDraftOKRs(ctx context.Context, userID string, okrs []domain.Objective) (int64, error) {
	raw, err := encodeOKRs(okrs)
	if err != nil {
		return 0, fmt.Errorf("failed to encode okrs: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE okr_generations SET okrs = ? WHERE user_id = ? AND is_draft = 1`,
		raw, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update draft okrs: %w", err)
	}
	return res.RowsAffected()
}
