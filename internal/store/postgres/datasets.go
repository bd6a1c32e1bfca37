package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/store"
)

const datasetColumns = `id, drug_name, study_id, dataset_type, metadata, file_name, owner_id, locked, created_at, updated_at`

// CreateDataset inserts a new dataset record.
func (s *Store) CreateDataset(ctx context.Context, dataset *models.Dataset) error {
	if dataset.ID == "" {
		dataset.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if dataset.CreatedAt.IsZero() {
		dataset.CreatedAt = now
	}
	dataset.UpdatedAt = now
	if dataset.Metadata == nil {
		dataset.Metadata = models.JSONMap{}
	}

	const query = `INSERT INTO datasets (id, drug_name, study_id, dataset_type, metadata, file_name, owner_id, locked, created_at, updated_at) VALUES (:id, :drug_name, :study_id, :dataset_type, :metadata, :file_name, :owner_id, :locked, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, query, dataset); err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	return nil
}

// GetDataset returns a dataset by identifier.
func (s *Store) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	query := fmt.Sprintf("SELECT %s FROM datasets WHERE id = $1 LIMIT 1", datasetColumns)
	var dataset models.Dataset
	if err := s.db.GetContext(ctx, &dataset, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	return &dataset, nil
}

// ListDatasets returns all datasets ordered by creation time.
func (s *Store) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	query := fmt.Sprintf("SELECT %s FROM datasets ORDER BY created_at ASC", datasetColumns)
	var datasets []models.Dataset
	if err := s.db.SelectContext(ctx, &datasets, query); err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return datasets, nil
}

// UpdateDataset applies the provided patch fields and stamps updated_at.
func (s *Store) UpdateDataset(ctx context.Context, id string, patch models.DatasetPatch) (*models.Dataset, error) {
	var sets []string
	var args []interface{}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.DrugName != nil {
		appendSet("drug_name", *patch.DrugName)
	}
	if patch.StudyID != nil {
		appendSet("study_id", *patch.StudyID)
	}
	if patch.DatasetType != nil {
		appendSet("dataset_type", *patch.DatasetType)
	}
	if patch.Metadata != nil {
		appendSet("metadata", *patch.Metadata)
	}
	if patch.FileName != nil {
		appendSet("file_name", *patch.FileName)
	}
	appendSet("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE datasets SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update dataset: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetDataset(ctx, id)
}

// SetDatasetLock toggles the admin-controlled lock flag.
func (s *Store) SetDatasetLock(ctx context.Context, id string, locked bool) (*models.Dataset, error) {
	const query = `UPDATE datasets SET locked = $2, updated_at = $3 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, locked, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("set dataset lock: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetDataset(ctx, id)
}
