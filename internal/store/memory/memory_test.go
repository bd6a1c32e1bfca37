package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/store"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := &models.User{Email: "user@example.com", PasswordHash: "hash", Role: models.RoleViewer}
	require.NoError(t, s.CreateUser(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &models.User{Email: "User@Example.com", PasswordHash: "hash", Role: models.RoleViewer}
	err := s.CreateUser(ctx, second)
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestGetUserByEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	user := &models.User{Email: "owner@example.com", PasswordHash: "hash", Role: models.RoleResearcher}
	require.NoError(t, s.CreateUser(ctx, user))

	found, err := s.GetUserByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateDatasetAppliesOnlyPatchedFields(t *testing.T) {
	s := New()
	ctx := context.Background()

	dataset := &models.Dataset{
		DrugName:    "Drug A",
		StudyID:     "STUDY-1",
		DatasetType: "pk",
		Metadata:    models.JSONMap{"phase": "I"},
		OwnerID:     "u1",
	}
	require.NoError(t, s.CreateDataset(ctx, dataset))
	created := dataset.UpdatedAt

	name := "Drug B"
	updated, err := s.UpdateDataset(ctx, dataset.ID, models.DatasetPatch{DrugName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Drug B", updated.DrugName)
	assert.Equal(t, "STUDY-1", updated.StudyID)
	assert.Equal(t, models.JSONMap{"phase": "I"}, updated.Metadata)
	assert.False(t, updated.UpdatedAt.Before(created))
}

func TestUpdateDatasetNotFound(t *testing.T) {
	s := New()
	_, err := s.UpdateDataset(context.Background(), "missing", models.DatasetPatch{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetDatasetLockIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	dataset := &models.Dataset{DrugName: "Drug", StudyID: "S", DatasetType: "pk", OwnerID: "u1"}
	require.NoError(t, s.CreateDataset(ctx, dataset))

	locked, err := s.SetDatasetLock(ctx, dataset.ID, true)
	require.NoError(t, err)
	assert.True(t, locked.Locked)

	locked, err = s.SetDatasetLock(ctx, dataset.ID, true)
	require.NoError(t, err)
	assert.True(t, locked.Locked)
}

func TestAccessRequestsScopedToDataset(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateAccessRequest(ctx, &models.AccessRequest{DatasetID: "d1", RequesterID: "u1", Reason: "analysis"}))
	require.NoError(t, s.CreateAccessRequest(ctx, &models.AccessRequest{DatasetID: "d1", RequesterID: "u1", Reason: "again"}))
	require.NoError(t, s.CreateAccessRequest(ctx, &models.AccessRequest{DatasetID: "d2", RequesterID: "u2", Reason: "other"}))

	requests, err := s.ListAccessRequestsByDataset(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, models.StatusPending, requests[0].Status)
}

func TestRoleUpgradeRequestLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	request := &models.RoleUpgradeRequest{RequesterID: "u1", RequestedRole: models.RoleResearcher, Reason: "need write access"}
	require.NoError(t, s.CreateRoleUpgradeRequest(ctx, request))

	fetched, err := s.GetRoleUpgradeRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, fetched.Status)

	resolved, err := s.SetRoleUpgradeRequestStatus(ctx, request.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, resolved.Status)

	_, err = s.SetRoleUpgradeRequestStatus(ctx, "missing", models.StatusApproved)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuditLogOrderPreserved(t *testing.T) {
	s := New()
	ctx := context.Background()

	actions := []string{
		models.AuditActionCreateDataset,
		models.AuditActionUpdateDataset,
		models.AuditActionLockDataset,
	}
	for _, action := range actions {
		require.NoError(t, s.CreateAuditLogEntry(ctx, &models.AuditLogEntry{DatasetID: "d1", ActorID: "u1", Action: action}))
	}

	entries, err := s.ListAuditLogEntriesByDataset(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, action := range actions {
		assert.Equal(t, action, entries[i].Action)
	}
}
