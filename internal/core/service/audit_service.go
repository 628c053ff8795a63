package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
	"github.com/mergington/activity-board/internal/pkg/metrics"
)

type auditService struct {
	repo ports.ActionRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists through repo.
func NewAuditService(repo ports.ActionRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists one action record.
func (s *auditService) Record(ctx context.Context, rec domain.ActionRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, &rec); err != nil {
		metrics.AuditErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("record action: %w", err)
	}
	s.log.Debug().
		Str("client_id", rec.ClientID).
		Str("command", string(rec.Command)).
		Str("result", string(rec.Result)).
		Msg("action recorded")
	return nil
}

// DiscardAudit is the sink used when the audit trail is disabled.
type DiscardAudit struct{}

func (DiscardAudit) Enqueue(domain.ActionRecord) {}
