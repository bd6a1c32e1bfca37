// Package policy centralizes the authorization rules of the registry as
// pure predicates over (actor, resource). Handlers and services never
// inline role or ownership checks; they call into this package so every
// endpoint applies the same rules.
package policy

import (
	"github.com/pkdx/pkdb-api/internal/models"
	appErrors "github.com/pkdx/pkdb-api/pkg/errors"
)

// CanCreateDataset allows admins and researchers to register datasets.
func CanCreateDataset(role models.Role) error {
	if role == models.RoleAdmin || role == models.RoleResearcher {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions to create datasets")
}

// CanEditDataset allows admins unconditionally; otherwise the actor must
// own the dataset and the dataset must be unlocked. The lock check runs
// before the ownership check so an owner editing a locked dataset is told
// about the lock, not about ownership.
func CanEditDataset(actor *models.JWTClaims, dataset *models.Dataset) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if dataset.Locked {
		return appErrors.Clone(appErrors.ErrForbidden, "dataset is locked")
	}
	if dataset.OwnerID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed to edit dataset")
	}
	return nil
}

// CanToggleLock restricts lock and unlock to admins.
func CanToggleLock(role models.Role) error {
	if role == models.RoleAdmin {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "only admins may lock or unlock datasets")
}

// CanViewRequests allows admins and the dataset owner to list access
// requests for a dataset.
func CanViewRequests(actor *models.JWTClaims, dataset *models.Dataset) error {
	if actor.Role == models.RoleAdmin || dataset.OwnerID == actor.UserID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to view requests")
}

// CanViewAuditLog allows admins and the dataset owner to read the audit
// trail for a dataset.
func CanViewAuditLog(actor *models.JWTClaims, dataset *models.Dataset) error {
	if actor.Role == models.RoleAdmin || dataset.OwnerID == actor.UserID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to view audit logs")
}

// CanRequestRoleUpgrade validates a role upgrade filing: only viewers may
// file, and the admin role is never grantable through this workflow. Both
// failures are input errors, not policy denials, since no resource lookup
// is involved.
func CanRequestRoleUpgrade(actorRole, requestedRole models.Role) error {
	if actorRole != models.RoleViewer {
		return appErrors.Clone(appErrors.ErrValidation, "role upgrade requests are only for viewers")
	}
	if requestedRole == models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrValidation, "admin role requires manual assignment")
	}
	if !requestedRole.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown requested role")
	}
	return nil
}

// CanManageRoleUpgrades restricts listing and resolving role upgrade
// requests to admins.
func CanManageRoleUpgrades(role models.Role) error {
	if role == models.RoleAdmin {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions to manage role requests")
}
