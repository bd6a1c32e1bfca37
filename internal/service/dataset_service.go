package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/policy"
	"github.com/pkdx/pkdb-api/internal/store"
	appErrors "github.com/pkdx/pkdb-api/pkg/errors"
)

const datasetListCacheKey = "datasets:list"

// DatasetService implements the dataset lifecycle: registration, reads,
// partial updates, admin lock toggling, access requests, and the audit
// trail that accompanies every state change.
type DatasetService struct {
	store     store.Storage
	validator *validator.Validate
	logger    *zap.Logger
	cache     *CacheService
	metrics   *MetricsService
}

// NewDatasetService constructs a DatasetService instance.
func NewDatasetService(st store.Storage, validate *validator.Validate, logger *zap.Logger, cache *CacheService, metrics *MetricsService) *DatasetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DatasetService{store: st, validator: validate, logger: logger, cache: cache, metrics: metrics}
}

// Create registers a dataset owned by the actor. Admins and researchers only.
func (s *DatasetService) Create(ctx context.Context, req models.DatasetCreate, actor *models.JWTClaims) (*models.Dataset, error) {
	if err := policy.CanCreateDataset(actor.Role); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dataset payload")
	}

	dataset := &models.Dataset{
		DrugName:    req.DrugName,
		StudyID:     req.StudyID,
		DatasetType: req.DatasetType,
		Metadata:    req.Metadata,
		FileName:    req.FileName,
		OwnerID:     actor.UserID,
	}
	if err := s.store.CreateDataset(ctx, dataset); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create dataset")
	}

	s.appendAudit(ctx, dataset.ID, actor.UserID, models.AuditActionCreateDataset, models.JSONMap{"dataset_type": dataset.DatasetType})
	s.invalidateListCache(ctx)

	return dataset, nil
}

// List returns all datasets. Visibility is not role-scoped at list time.
func (s *DatasetService) List(ctx context.Context) ([]models.Dataset, error) {
	var cached []models.Dataset
	if hit, _ := s.cache.Get(ctx, datasetListCacheKey, &cached); hit {
		return cached, nil
	}

	datasets, err := s.store.ListDatasets(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list datasets")
	}

	_ = s.cache.Set(ctx, datasetListCacheKey, datasets)
	return datasets, nil
}

// Get returns a dataset by id.
func (s *DatasetService) Get(ctx context.Context, id string) (*models.Dataset, error) {
	dataset, err := s.store.GetDataset(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "dataset not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch dataset")
	}
	return dataset, nil
}

// Update applies a partial patch to a dataset. The existence check runs
// before authorization so an unknown id is a 404 regardless of the actor.
func (s *DatasetService) Update(ctx context.Context, id string, patch models.DatasetPatch, actor *models.JWTClaims) (*models.Dataset, error) {
	dataset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanEditDataset(actor, dataset); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateDataset(ctx, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "dataset not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update dataset")
	}

	s.appendAudit(ctx, id, actor.UserID, models.AuditActionUpdateDataset, models.JSONMap{"fields": patch.ChangedFields()})
	s.invalidateListCache(ctx)

	return updated, nil
}

// SetLock toggles the dataset lock. Admin only; locking an already-locked
// dataset is a no-op rather than an error.
func (s *DatasetService) SetLock(ctx context.Context, id string, locked bool, actor *models.JWTClaims) (*models.Dataset, error) {
	if err := policy.CanToggleLock(actor.Role); err != nil {
		return nil, err
	}

	dataset, err := s.store.SetDatasetLock(ctx, id, locked)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "dataset not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set dataset lock")
	}

	action := models.AuditActionLockDataset
	if !locked {
		action = models.AuditActionUnlockDataset
	}
	s.appendAudit(ctx, id, actor.UserID, action, models.JSONMap{"locked": locked})
	s.invalidateListCache(ctx)

	return dataset, nil
}

// RequestAccess files an access request for a dataset. Any authenticated
// user may file, and repeat requests are allowed.
func (s *DatasetService) RequestAccess(ctx context.Context, datasetID string, req models.AccessRequestCreate, actor *models.JWTClaims) (*models.AccessRequest, error) {
	if _, err := s.Get(ctx, datasetID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid access request payload")
	}

	request := &models.AccessRequest{
		DatasetID:   datasetID,
		RequesterID: actor.UserID,
		Reason:      req.Reason,
	}
	if err := s.store.CreateAccessRequest(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access request")
	}

	s.appendAudit(ctx, datasetID, actor.UserID, models.AuditActionRequestAccess, models.JSONMap{"reason": req.Reason})

	return request, nil
}

// ListAccessRequests returns a dataset's access requests for its owner or
// an admin. The existence check precedes the permission check.
func (s *DatasetService) ListAccessRequests(ctx context.Context, datasetID string, actor *models.JWTClaims) ([]models.AccessRequest, error) {
	dataset, err := s.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanViewRequests(actor, dataset); err != nil {
		return nil, err
	}

	requests, err := s.store.ListAccessRequestsByDataset(ctx, datasetID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list access requests")
	}
	return requests, nil
}

// ListAuditLog returns a dataset's audit trail for its owner or an admin.
func (s *DatasetService) ListAuditLog(ctx context.Context, datasetID string, actor *models.JWTClaims) ([]models.AuditLogEntry, error) {
	dataset, err := s.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanViewAuditLog(actor, dataset); err != nil {
		return nil, err
	}

	entries, err := s.store.ListAuditLogEntriesByDataset(ctx, datasetID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit log")
	}
	return entries, nil
}

// appendAudit records one audit entry for a state change. Best effort: a
// failed append surfaces in the log but does not fail the mutation that
// already happened.
func (s *DatasetService) appendAudit(ctx context.Context, datasetID, actorID, action string, details models.JSONMap) {
	entry := &models.AuditLogEntry{
		DatasetID: datasetID,
		ActorID:   actorID,
		Action:    action,
		Details:   details,
	}
	if err := s.store.CreateAuditLogEntry(ctx, entry); err != nil {
		s.logger.Warn("failed to append audit log entry",
			zap.String("dataset_id", datasetID),
			zap.String("action", action),
			zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordAuditAppend()
	}
}

func (s *DatasetService) invalidateListCache(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, datasetListCacheKey)
}
