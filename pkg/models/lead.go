package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a sales contact. A lead may sit in a pipeline stage and may be
// linked to a company. CustomFields maps field-definition IDs to values
// validated against the definition's declared type at write time.
type Lead struct {
	ID           uuid.UUID      `db:"id"            json:"id"`
	TeamID       uuid.UUID      `db:"team_id"       json:"team_id"`
	CompanyID    *uuid.UUID     `db:"company_id"    json:"company_id,omitempty"`
	StageID      *uuid.UUID     `db:"stage_id"      json:"stage_id,omitempty"`
	Name         string         `db:"name"          json:"name"`
	Email        string         `db:"email"         json:"email,omitempty"`
	Phone        string         `db:"phone"         json:"phone,omitempty"`
	Source       string         `db:"source"        json:"source,omitempty"`
	Notes        string         `db:"notes"         json:"notes,omitempty"`
	LabelIDs     []uuid.UUID    `db:"label_ids"     json:"label_ids,omitempty"`
	CustomFields map[string]any `db:"custom_fields" json:"custom_fields,omitempty"`
	CreatedBy    uuid.UUID      `db:"created_by"    json:"created_by"`
	CreatedAt    time.Time      `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"    json:"updated_at"`
}
