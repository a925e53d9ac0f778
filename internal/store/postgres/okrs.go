package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type okrsRepo struct {
	pool *pgxpool.Pool
}

const okrColumns = `
	id, user_id, website_url, company_name, planning_period,
	strategic_narrative, okrs, is_draft, created_at
`

func scanOKR(row pgx.Row) (domain.OKRGeneration, error) {
	var g domain.OKRGeneration
	var raw []byte
	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.WebsiteURL,
		&g.CompanyName,
		&g.PlanningPeriod,
		&g.StrategicNarrative,
		&raw,
		&g.IsDraft,
		&g.CreatedAt,
	)
	if err != nil {
		return domain.OKRGeneration{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &g.OKRs); err != nil {
			return domain.OKRGeneration{}, fmt.Errorf("failed to decode okrs: %w", err)
		}
	}
	return g, nil
}

func encodeOKRs(okrs []domain.Objective) ([]byte, error) {
	if okrs == nil {
		okrs = []domain.Objective{}
	}
	return json.Marshal(okrs)
}

func (r *okrsRepo) GetActiveDraft(ctx context.Context, userID string) (domain.OKRGeneration, error) {
	query := `
		SELECT ` + okrColumns + `
		FROM okr_generations
		WHERE user_id = $1 AND is_draft = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	g, err := scanOKR(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		return domain.OKRGeneration{}, fmt.Errorf("failed to get draft okrs: %w", mapNotFound(err))
	}
	return g, nil
}

func (r *okrsRepo) GetLatest(ctx context.Context, userID string) (domain.OKRGeneration, error) {
	query := `
		SELECT ` + okrColumns + `
		FROM okr_generations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	g, err := scanOKR(r.pool.QueryRow(ctx, query, userID))
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
		g.CreatedAt = time.Now().UTC()
	}

	raw, err := encodeOKRs(g.OKRs)
	if err != nil {
		return domain.OKRGeneration{}, fmt.Errorf("failed to encode okrs: %w", err)
	}

	query := `
		INSERT INTO okr_generations (
			id, user_id, website_url, company_name, planning_period,
			strategic_narrative, okrs, is_draft, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + okrColumns

	out, err := scanOKR(r.pool.QueryRow(ctx, query,
		g.ID,
		g.UserID,
		g.WebsiteURL,
		g.CompanyName,
		g.PlanningPeriod,
		g.StrategicNarrative,
		raw,
		g.IsDraft,
		g.CreatedAt,
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
	query := `UPDATE okr_generations SET is_draft = FALSE WHERE user_id = $1 AND is_draft = TRUE`

	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize okrs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *okrsRepo) UpdateDraftOKRs(ctx context.Context, userID string, okrs []domain.Objective) (int64, error) {
	raw, err := encodeOKRs(okrs)
	if err != nil {
		return 0, fmt.Errorf("failed to encode okrs: %w", err)
	}

	query := `UPDATE okr_generations SET okrs = $2 WHERE user_id = $1 AND is_draft = TRUE`

	tag, err := r.pool.Exec(ctx, query, userID, raw)
	if err != nil {
		return 0, fmt.Errorf("failed to update draft okrs: %w", err)
	}
	return tag.RowsAffected(), nil
}
