package models

import (
	"time"

	"github.com/google/uuid"
)

// Label is a colored tag teams attach to leads.
type Label struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	TeamID    uuid.UUID `db:"team_id"    json:"team_id"`
	Name      string    `db:"name"       json:"name"`
	Color     string    `db:"color"      json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
