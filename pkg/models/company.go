package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is an organization a lead belongs to.
type Company struct {
	ID           uuid.UUID      `db:"id"            json:"id"`
	TeamID       uuid.UUID      `db:"team_id"       json:"team_id"`
	Name         string         `db:"name"          json:"name"`
	Website      string         `db:"website"       json:"website,omitempty"`
	Phone        string         `db:"phone"         json:"phone,omitempty"`
	Industry     string         `db:"industry"      json:"industry,omitempty"`
	CustomFields map[string]any `db:"custom_fields" json:"custom_fields,omitempty"`
	CreatedBy    uuid.UUID      `db:"created_by"    json:"created_by"`
	CreatedAt    time.Time      `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"    json:"updated_at"`
}
