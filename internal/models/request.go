package models

import "time"

// RequestStatus enumerates workflow states shared by access and
// role-upgrade requests. Resolved states are terminal.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// AccessRequest records a user asking for access to a dataset. There is no
// uniqueness constraint: the same requester may file several requests for
// the same dataset.
type AccessRequest struct {
	ID          string        `db:"id" json:"id"`
	DatasetID   string        `db:"dataset_id" json:"dataset_id"`
	RequesterID string        `db:"requester_id" json:"requester_id"`
	Reason      string        `db:"reason" json:"reason"`
	Status      RequestStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// AccessRequestCreate is the payload for filing an access request.
type AccessRequestCreate struct {
	Reason string `json:"reason" validate:"required"`
}

// RoleUpgradeRequest records a viewer asking for role elevation.
type RoleUpgradeRequest struct {
	ID            string        `db:"id" json:"id"`
	RequesterID   string        `db:"requester_id" json:"requester_id"`
	RequestedRole Role          `db:"requested_role" json:"requested_role"`
	Reason        string        `db:"reason" json:"reason"`
	Status        RequestStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// RoleUpgradeRequestCreate is the payload for requesting a role upgrade.
type RoleUpgradeRequestCreate struct {
	RequestedRole Role   `json:"requested_role" validate:"required"`
	Reason        string `json:"reason" validate:"required"`
}
