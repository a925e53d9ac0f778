package domain

import "time"

// AuditEvent is a row of the audit_log table.
type AuditEvent struct {
	ID          int64          `json:"id"`
	ActorUserID *string        `json:"actor_user_id,omitempty"`
	Action      string         `json:"action"`
	Meta        map[string]any `json:"meta"`
	CreatedAt   time.Time      `json:"created_at"`
}
