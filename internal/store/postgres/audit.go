package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkdx/pkdb-api/internal/models"
)

// CreateAuditLogEntry appends an entry to a dataset's audit trail.
func (s *Store) CreateAuditLogEntry(ctx context.Context, entry *models.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Details == nil {
		entry.Details = models.JSONMap{}
	}

	const query = `INSERT INTO audit_logs (id, dataset_id, actor_id, action, details, created_at) VALUES (:id, :dataset_id, :actor_id, :action, :details, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create audit log entry: %w", err)
	}
	return nil
}

// ListAuditLogEntriesByDataset returns a dataset's audit trail in chronological order.
func (s *Store) ListAuditLogEntriesByDataset(ctx context.Context, datasetID string) ([]models.AuditLogEntry, error) {
	const query = `SELECT id, dataset_id, actor_id, action, details, created_at FROM audit_logs WHERE dataset_id = $1 ORDER BY created_at ASC`
	var entries []models.AuditLogEntry
	if err := s.db.SelectContext(ctx, &entries, query, datasetID); err != nil {
		return nil, fmt.Errorf("list audit log entries: %w", err)
	}
	return entries, nil
}
