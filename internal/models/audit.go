package models

import "time"

// Audit action names recorded against datasets.
const (
	AuditActionCreateDataset = "create_dataset"
	AuditActionUpdateDataset = "update_dataset"
	AuditActionLockDataset   = "lock_dataset"
	AuditActionUnlockDataset = "unlock_dataset"
	AuditActionRequestAccess = "request_access"
)

// AuditLogEntry is an append-only record of a state-changing action on a
// dataset. Entries are never mutated or deleted.
type AuditLogEntry struct {
	ID        string    `db:"id" json:"id"`
	DatasetID string    `db:"dataset_id" json:"dataset_id"`
	ActorID   string    `db:"actor_id" json:"actor_id"`
	Action    string    `db:"action" json:"action"`
	Details   JSONMap   `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
