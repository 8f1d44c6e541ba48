package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldEntity names the record type a custom field attaches to.
type FieldEntity string

const (
	FieldEntityLead    FieldEntity = "lead"
	FieldEntityCompany FieldEntity = "company"
)

func (e FieldEntity) Valid() bool {
	return e == FieldEntityLead || e == FieldEntityCompany
}

// FieldType is the declared type of a custom field. Values written against a
// definition must match its type.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
	FieldSelect  FieldType = "select"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldBoolean, FieldSelect:
		return true
	}
	return false
}

// FieldDefinition declares a custom field for a team's leads or companies.
// Options applies only to select fields.
type FieldDefinition struct {
	ID        uuid.UUID   `db:"id"         json:"id"`
	TeamID    uuid.UUID   `db:"team_id"    json:"team_id"`
	Entity    FieldEntity `db:"entity"     json:"entity"`
	Name      string      `db:"name"       json:"name"`
	Type      FieldType   `db:"type"       json:"type"`
	Options   []string    `db:"options"    json:"options,omitempty"`
	Required  bool        `db:"required"   json:"required"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}
