package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type auditRepo struct {
	pool *pgxpool.Pool
}

func (r *auditRepo) Insert(ctx context.Context, e domain.AuditEvent) error {
	meta := e.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode audit meta: %w", err)
	}

	query := `INSERT INTO audit_log (actor_user_id, action, meta) VALUES ($1, $2, $3)`

	if _, err := r.pool.Exec(ctx, query, e.ActorUserID, e.Action, raw); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}
