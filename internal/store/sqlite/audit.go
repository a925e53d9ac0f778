package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
)

type auditRepo struct {
	db *sql.DB
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

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor_user_id, action, meta, created_at) VALUES (?, ?, ?, ?)`,
		mapOptionalString(e.ActorUserID), e.Action, string(raw), formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}
