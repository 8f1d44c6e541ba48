package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies an activity.
type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityTask    ActivityType = "task"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityMeeting, ActivityTask:
		return true
	}
	return false
}

// Activity is a scheduled or completed action against a lead.
type Activity struct {
	ID          uuid.UUID    `db:"id"           json:"id"`
	TeamID      uuid.UUID    `db:"team_id"      json:"team_id"`
	LeadID      *uuid.UUID   `db:"lead_id"      json:"lead_id,omitempty"`
	Type        ActivityType `db:"type"         json:"type"`
	Title       string       `db:"title"        json:"title"`
	Notes       string       `db:"notes"        json:"notes,omitempty"`
	DueAt       *time.Time   `db:"due_at"       json:"due_at,omitempty"`
	CompletedAt *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
	AssignedTo  *uuid.UUID   `db:"assigned_to"  json:"assigned_to,omitempty"`
	CreatedBy   uuid.UUID    `db:"created_by"   json:"created_by"`
	CreatedAt   time.Time    `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"   json:"updated_at"`
}
