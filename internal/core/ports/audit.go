package ports

import (
	"context"

	"github.com/mergington/activity-board/internal/core/domain"
)

// ActionRepository persists the action audit trail.
type ActionRepository interface {
	Insert(ctx context.Context, rec *domain.ActionRecord) error
}

// AuditService records one action.
type AuditService interface {
	Record(ctx context.Context, rec domain.ActionRecord) error
}

// AuditSink accepts records without blocking the caller.
type AuditSink interface {
	Enqueue(rec domain.ActionRecord)
}
