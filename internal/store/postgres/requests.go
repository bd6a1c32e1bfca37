package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/store"
)

// CreateAccessRequest inserts a new access request.
func (s *Store) CreateAccessRequest(ctx context.Context, request *models.AccessRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = models.StatusPending
	}

	const query = `INSERT INTO access_requests (id, dataset_id, requester_id, reason, status, created_at) VALUES (:id, :dataset_id, :requester_id, :reason, :status, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create access request: %w", err)
	}
	return nil
}

// ListAccessRequestsByDataset returns a dataset's access requests ordered by creation time.
func (s *Store) ListAccessRequestsByDataset(ctx context.Context, datasetID string) ([]models.AccessRequest, error) {
	const query = `SELECT id, dataset_id, requester_id, reason, status, created_at FROM access_requests WHERE dataset_id = $1 ORDER BY created_at ASC`
	var requests []models.AccessRequest
	if err := s.db.SelectContext(ctx, &requests, query, datasetID); err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	return requests, nil
}

// CreateRoleUpgradeRequest inserts a new role upgrade request.
func (s *Store) CreateRoleUpgradeRequest(ctx context.Context, request *models.RoleUpgradeRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = models.StatusPending
	}

	const query = `INSERT INTO role_upgrade_requests (id, requester_id, requested_role, reason, status, created_at) VALUES (:id, :requester_id, :requested_role, :reason, :status, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create role upgrade request: %w", err)
	}
	return nil
}

// ListRoleUpgradeRequests returns all role upgrade requests ordered by creation time.
func (s *Store) ListRoleUpgradeRequests(ctx context.Context) ([]models.RoleUpgradeRequest, error) {
	const query = `SELECT id, requester_id, requested_role, reason, status, created_at FROM role_upgrade_requests ORDER BY created_at ASC`
	var requests []models.RoleUpgradeRequest
	if err := s.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list role upgrade requests: %w", err)
	}
	return requests, nil
}

// GetRoleUpgradeRequest returns a role upgrade request by identifier.
func (s *Store) GetRoleUpgradeRequest(ctx context.Context, id string) (*models.RoleUpgradeRequest, error) {
	const query = `SELECT id, requester_id, requested_role, reason, status, created_at FROM role_upgrade_requests WHERE id = $1 LIMIT 1`
	var request models.RoleUpgradeRequest
	if err := s.db.GetContext(ctx, &request, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get role upgrade request: %w", err)
	}
	return &request, nil
}

// SetRoleUpgradeRequestStatus updates the request status and returns the record.
func (s *Store) SetRoleUpgradeRequestStatus(ctx context.Context, id string, status models.RequestStatus) (*models.RoleUpgradeRequest, error) {
	const query = `UPDATE role_upgrade_requests SET status = $2 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return nil, fmt.Errorf("set role upgrade request status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetRoleUpgradeRequest(ctx, id)
}
