package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONMap is an arbitrary key-value mapping stored as JSONB.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONMap source type %T", src)
	}
	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// Dataset represents a registered pharmacokinetic dataset.
type Dataset struct {
	ID          string    `db:"id" json:"id"`
	DrugName    string    `db:"drug_name" json:"drug_name"`
	StudyID     string    `db:"study_id" json:"study_id"`
	DatasetType string    `db:"dataset_type" json:"dataset_type"`
	Metadata    JSONMap   `db:"metadata" json:"metadata"`
	FileName    *string   `db:"file_name" json:"file_name,omitempty"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	Locked      bool      `db:"locked" json:"locked"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DatasetCreate holds the payload for registering a dataset.
type DatasetCreate struct {
	DrugName    string  `json:"drug_name" validate:"required"`
	StudyID     string  `json:"study_id" validate:"required"`
	DatasetType string  `json:"dataset_type" validate:"required"`
	Metadata    JSONMap `json:"metadata"`
	FileName    *string `json:"file_name,omitempty"`
}

// DatasetPatch carries a partial update. Nil fields are left untouched.
type DatasetPatch struct {
	DrugName    *string  `json:"drug_name,omitempty"`
	StudyID     *string  `json:"study_id,omitempty"`
	DatasetType *string  `json:"dataset_type,omitempty"`
	Metadata    *JSONMap `json:"metadata,omitempty"`
	FileName    *string  `json:"file_name,omitempty"`
}

// IsEmpty reports whether the patch carries no changes.
func (p DatasetPatch) IsEmpty() bool {
	return p.DrugName == nil && p.StudyID == nil && p.DatasetType == nil && p.Metadata == nil && p.FileName == nil
}

// ChangedFields lists the field names present in the patch.
func (p DatasetPatch) ChangedFields() []string {
	var fields []string
	if p.DrugName != nil {
		fields = append(fields, "drug_name")
	}
	if p.StudyID != nil {
		fields = append(fields, "study_id")
	}
	if p.DatasetType != nil {
		fields = append(fields, "dataset_type")
	}
	if p.Metadata != nil {
		fields = append(fields, "metadata")
	}
	if p.FileName != nil {
		fields = append(fields, "file_name")
	}
	return fields
}

// Apply overwrites the fields present in the patch and stamps updated_at.
func (p DatasetPatch) Apply(d *Dataset, now time.Time) {
	if p.DrugName != nil {
		d.DrugName = *p.DrugName
	}
	if p.StudyID != nil {
		d.StudyID = *p.StudyID
	}
	if p.DatasetType != nil {
		d.DatasetType = *p.DatasetType
	}
	if p.Metadata != nil {
		d.Metadata = *p.Metadata
	}
	if p.FileName != nil {
		d.FileName = p.FileName
	}
	d.UpdatedAt = now
}
