package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkdx/pkdb-api/internal/models"
	appErrors "github.com/pkdx/pkdb-api/pkg/errors"
)

func TestCanCreateDataset(t *testing.T) {
	assert.NoError(t, CanCreateDataset(models.RoleAdmin))
	assert.NoError(t, CanCreateDataset(models.RoleResearcher))

	err := CanCreateDataset(models.RoleViewer)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCanEditDataset(t *testing.T) {
	owner := &models.JWTClaims{UserID: "u1", Role: models.RoleResearcher}
	admin := &models.JWTClaims{UserID: "u2", Role: models.RoleAdmin}
	stranger := &models.JWTClaims{UserID: "u3", Role: models.RoleResearcher}

	unlocked := &models.Dataset{ID: "d1", OwnerID: "u1"}
	locked := &models.Dataset{ID: "d1", OwnerID: "u1", Locked: true}

	assert.NoError(t, CanEditDataset(owner, unlocked))
	assert.NoError(t, CanEditDataset(admin, unlocked))
	assert.NoError(t, CanEditDataset(admin, locked), "admin may edit a locked dataset")

	err := CanEditDataset(owner, locked)
	require.Error(t, err)
	assert.Equal(t, "dataset is locked", appErrors.FromError(err).Message)

	err = CanEditDataset(stranger, unlocked)
	require.Error(t, err)
	assert.Equal(t, "not allowed to edit dataset", appErrors.FromError(err).Message)
}

func TestCanEditDatasetLockCheckPrecedesOwnership(t *testing.T) {
	stranger := &models.JWTClaims{UserID: "u3", Role: models.RoleViewer}
	locked := &models.Dataset{ID: "d1", OwnerID: "u1", Locked: true}

	err := CanEditDataset(stranger, locked)
	require.Error(t, err)
	assert.Equal(t, "dataset is locked", appErrors.FromError(err).Message)
}

func TestCanToggleLock(t *testing.T) {
	assert.NoError(t, CanToggleLock(models.RoleAdmin))
	assert.Error(t, CanToggleLock(models.RoleResearcher))
	assert.Error(t, CanToggleLock(models.RoleViewer))
}

func TestCanViewRequestsAndAuditLog(t *testing.T) {
	dataset := &models.Dataset{ID: "d1", OwnerID: "owner"}

	cases := []struct {
		name  string
		actor *models.JWTClaims
		allow bool
	}{
		{"admin", &models.JWTClaims{UserID: "a", Role: models.RoleAdmin}, true},
		{"owner", &models.JWTClaims{UserID: "owner", Role: models.RoleResearcher}, true},
		{"other researcher", &models.JWTClaims{UserID: "x", Role: models.RoleResearcher}, false},
		{"viewer", &models.JWTClaims{UserID: "v", Role: models.RoleViewer}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reqErr := CanViewRequests(tc.actor, dataset)
			auditErr := CanViewAuditLog(tc.actor, dataset)
			if tc.allow {
				assert.NoError(t, reqErr)
				assert.NoError(t, auditErr)
			} else {
				assert.Error(t, reqErr)
				assert.Error(t, auditErr)
			}
		})
	}
}

func TestCanRequestRoleUpgrade(t *testing.T) {
	assert.NoError(t, CanRequestRoleUpgrade(models.RoleViewer, models.RoleResearcher))

	err := CanRequestRoleUpgrade(models.RoleResearcher, models.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = CanRequestRoleUpgrade(models.RoleViewer, models.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "admin role requires manual assignment", appErrors.FromError(err).Message)

	err = CanRequestRoleUpgrade(models.RoleViewer, models.Role("owner"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCanManageRoleUpgrades(t *testing.T) {
	assert.NoError(t, CanManageRoleUpgrades(models.RoleAdmin))
	assert.Error(t, CanManageRoleUpgrades(models.RoleViewer))
	assert.Error(t, CanManageRoleUpgrades(models.RoleResearcher))
}
