package repository

import (
	"context"
	"time"
)

// SessionAuditEntry records one session issuance attempt.
type SessionAuditEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Status    int       `json:"status"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionAudit interface {
	Record(ctx context.Context, entry SessionAuditEntry) error
}
