package repository

import (
	"context"
	"fmt"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

type auditRepository struct {
	logs collection[domain.AuditLogEntry]
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(store docstore.Store) AuditRepository {
	return &auditRepository{logs: newCollection[domain.AuditLogEntry](store, CollectionAuditLogs)}
}

// Append writes a batch of entries in a single collection update
func (r *auditRepository) Append(ctx context.Context, entries ...domain.AuditLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	err := r.logs.update(ctx, func(logs []domain.AuditLogEntry) ([]domain.AuditLogEntry, error) {
		return append(logs, entries...), nil
	})
	if err != nil {
		return fmt.Errorf("failed to append audit logs: %w", err)
	}

	return nil
}
