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

// RoleService implements the role upgrade workflow: viewers file requests,
// admins list and resolve them, and an approval elevates the requester.
type RoleService struct {
	store     store.Storage
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoleService constructs a RoleService instance.
func NewRoleService(st store.Storage, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoleService{store: st, validator: validate, logger: logger}
}

// Create files a role upgrade request. Viewer-only, and the admin role is
// never requestable.
func (s *RoleService) Create(ctx context.Context, req models.RoleUpgradeRequestCreate, actor *models.JWTClaims) (*models.RoleUpgradeRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role request payload")
	}
	if err := policy.CanRequestRoleUpgrade(actor.Role, req.RequestedRole); err != nil {
		return nil, err
	}

	request := &models.RoleUpgradeRequest{
		RequesterID:   actor.UserID,
		RequestedRole: req.RequestedRole,
		Reason:        req.Reason,
	}
	if err := s.store.CreateRoleUpgradeRequest(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create role request")
	}

	return request, nil
}

// List returns all role upgrade requests. Admin only.
func (s *RoleService) List(ctx context.Context, actor *models.JWTClaims) ([]models.RoleUpgradeRequest, error) {
	if err := policy.CanManageRoleUpgrades(actor.Role); err != nil {
		return nil, err
	}

	requests, err := s.store.ListRoleUpgradeRequests(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list role requests")
	}
	return requests, nil
}

// Approve resolves a pending request and elevates the requester to the
// requested role. A token issued to the requester afterwards carries the
// new role; tokens issued before keep the old snapshot until expiry.
func (s *RoleService) Approve(ctx context.Context, requestID string, actor *models.JWTClaims) (*models.RoleUpgradeRequest, error) {
	request, err := s.resolve(ctx, requestID, models.StatusApproved, actor)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.UpdateUserRole(ctx, request.RequesterID, request.RequestedRole); err != nil {
		// The request is already marked approved; surface the failure so
		// the admin can retry rather than silently leaving the role stale.
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update requester role")
	}

	s.logger.Info("role upgrade approved",
		zap.String("request_id", request.ID),
		zap.String("requester_id", request.RequesterID),
		zap.String("role", string(request.RequestedRole)))

	return request, nil
}

// Reject resolves a pending request without touching the requester's role.
func (s *RoleService) Reject(ctx context.Context, requestID string, actor *models.JWTClaims) (*models.RoleUpgradeRequest, error) {
	return s.resolve(ctx, requestID, models.StatusRejected, actor)
}

// resolve transitions a pending request to a terminal status. Re-resolving
// an already resolved request is a conflict: approval mutates the
// requester's role, so repeating it would misstate when the role changed.
func (s *RoleService) resolve(ctx context.Context, requestID string, status models.RequestStatus, actor *models.JWTClaims) (*models.RoleUpgradeRequest, error) {
	if err := policy.CanManageRoleUpgrades(actor.Role); err != nil {
		return nil, err
	}

	request, err := s.store.GetRoleUpgradeRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "role request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch role request")
	}

	if request.Status != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "role request already resolved")
	}

	resolved, err := s.store.SetRoleUpgradeRequestStatus(ctx, requestID, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "role request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role request")
	}

	return resolved, nil
}
