// Package store defines the persistence capability consumed by the
// services. Two interchangeable backends implement it: an in-memory map
// store and a PostgreSQL store. Callers select one via configuration and
// never depend on which is active.
package store

import (
	"context"
	"errors"

	"github.com/pkdx/pkdb-api/internal/models"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user email is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Storage is the durable mapping of registry entities keyed by opaque
// string ids. Implementations must guarantee atomic single-record writes
// and read-your-writes consistency for a single caller.
type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error)

	CreateDataset(ctx context.Context, dataset *models.Dataset) error
	GetDataset(ctx context.Context, id string) (*models.Dataset, error)
	ListDatasets(ctx context.Context) ([]models.Dataset, error)
	UpdateDataset(ctx context.Context, id string, patch models.DatasetPatch) (*models.Dataset, error)
	SetDatasetLock(ctx context.Context, id string, locked bool) (*models.Dataset, error)

	CreateAccessRequest(ctx context.Context, request *models.AccessRequest) error
	ListAccessRequestsByDataset(ctx context.Context, datasetID string) ([]models.AccessRequest, error)

	CreateRoleUpgradeRequest(ctx context.Context, request *models.RoleUpgradeRequest) error
	ListRoleUpgradeRequests(ctx context.Context) ([]models.RoleUpgradeRequest, error)
	GetRoleUpgradeRequest(ctx context.Context, id string) (*models.RoleUpgradeRequest, error)
	SetRoleUpgradeRequestStatus(ctx context.Context, id string, status models.RequestStatus) (*models.RoleUpgradeRequest, error)

	CreateAuditLogEntry(ctx context.Context, entry *models.AuditLogEntry) error
	ListAuditLogEntriesByDataset(ctx context.Context, datasetID string) ([]models.AuditLogEntry, error)
}
