// Package memory provides the in-memory Storage backend. It is the
// default for development and tests; state does not survive a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/store"
)

// Store keeps all registry entities in RWMutex-guarded maps.
type Store struct {
	mu           sync.RWMutex
	users        map[string]models.User
	datasets     map[string]models.Dataset
	requests     map[string]models.AccessRequest
	roleRequests map[string]models.RoleUpgradeRequest
	auditLogs    map[string][]models.AuditLogEntry
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[string]models.User),
		datasets:     make(map[string]models.Dataset),
		requests:     make(map[string]models.AccessRequest),
		roleRequests: make(map[string]models.RoleUpgradeRequest),
		auditLogs:    make(map[string][]models.AuditLogEntry),
	}
}

var _ store.Storage = (*Store)(nil)

// CreateUser inserts a user, enforcing email uniqueness.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return store.ErrDuplicateEmail
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := user
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (s *Store) UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	user.Role = role
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user

	u := user
	return &u, nil
}

// CreateDataset inserts a dataset record.
func (s *Store) CreateDataset(ctx context.Context, dataset *models.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

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

	s.datasets[dataset.ID] = *dataset
	return nil
}

func (s *Store) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dataset, ok := s.datasets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	d := dataset
	return &d, nil
}

func (s *Store) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	datasets := make([]models.Dataset, 0, len(s.datasets))
	for _, dataset := range s.datasets {
		datasets = append(datasets, dataset)
	}
	sort.Slice(datasets, func(i, j int) bool { return datasets[i].CreatedAt.Before(datasets[j].CreatedAt) })
	return datasets, nil
}

// UpdateDataset applies the provided patch fields and stamps updated_at.
func (s *Store) UpdateDataset(ctx context.Context, id string, patch models.DatasetPatch) (*models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dataset, ok := s.datasets[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	patch.Apply(&dataset, time.Now().UTC())
	s.datasets[id] = dataset

	d := dataset
	return &d, nil
}

func (s *Store) SetDatasetLock(ctx context.Context, id string, locked bool) (*models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dataset, ok := s.datasets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	dataset.Locked = locked
	dataset.UpdatedAt = time.Now().UTC()
	s.datasets[id] = dataset

	d := dataset
	return &d, nil
}

func (s *Store) CreateAccessRequest(ctx context.Context, request *models.AccessRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = models.StatusPending
	}

	s.requests[request.ID] = *request
	return nil
}

func (s *Store) ListAccessRequestsByDataset(ctx context.Context, datasetID string) ([]models.AccessRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var requests []models.AccessRequest
	for _, request := range s.requests {
		if request.DatasetID == datasetID {
			requests = append(requests, request)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.Before(requests[j].CreatedAt) })
	return requests, nil
}

func (s *Store) CreateRoleUpgradeRequest(ctx context.Context, request *models.RoleUpgradeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = models.StatusPending
	}

	s.roleRequests[request.ID] = *request
	return nil
}

func (s *Store) ListRoleUpgradeRequests(ctx context.Context) ([]models.RoleUpgradeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requests := make([]models.RoleUpgradeRequest, 0, len(s.roleRequests))
	for _, request := range s.roleRequests {
		requests = append(requests, request)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.Before(requests[j].CreatedAt) })
	return requests, nil
}

func (s *Store) GetRoleUpgradeRequest(ctx context.Context, id string) (*models.RoleUpgradeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.roleRequests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r := request
	return &r, nil
}

func (s *Store) SetRoleUpgradeRequestStatus(ctx context.Context, id string, status models.RequestStatus) (*models.RoleUpgradeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.roleRequests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	request.Status = status
	s.roleRequests[id] = request

	r := request
	return &r, nil
}

// CreateAuditLogEntry appends an entry to the dataset's audit trail.
func (s *Store) CreateAuditLogEntry(ctx context.Context, entry *models.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Details == nil {
		entry.Details = models.JSONMap{}
	}

	s.auditLogs[entry.DatasetID] = append(s.auditLogs[entry.DatasetID], *entry)
	return nil
}

func (s *Store) ListAuditLogEntriesByDataset(ctx context.Context, datasetID string) ([]models.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.AuditLogEntry, len(s.auditLogs[datasetID]))
	copy(entries, s.auditLogs[datasetID])
	return entries, nil
}
