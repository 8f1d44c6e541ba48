package models

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline is an ordered sales funnel owned by a team.
type Pipeline struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	TeamID      uuid.UUID `db:"team_id"     json:"team_id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// PipelineStage is a column within a pipeline. Position orders stages left to
// right starting at zero.
type PipelineStage struct {
	ID         uuid.UUID `db:"id"          json:"id"`
	TeamID     uuid.UUID `db:"team_id"     json:"team_id"`
	PipelineID uuid.UUID `db:"pipeline_id" json:"pipeline_id"`
	Name       string    `db:"name"        json:"name"`
	Position   int       `db:"position"    json:"position"`
	Color      string    `db:"color"       json:"color,omitempty"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}
