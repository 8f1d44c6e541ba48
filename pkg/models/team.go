package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a member's role within a team.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

// CanManageTeam reports whether the role may invite, remove, or re-role members.
func (r Role) CanManageTeam() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Team is an isolated workspace. Every CRM record belongs to exactly one team.
// The slug is unique and immutable once claimed.
type Team struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Slug        string    `db:"slug"        json:"slug"`
	Description string    `db:"description" json:"description"`
	LogoURL     string    `db:"logo_url"    json:"logo_url,omitempty"`
	CreatedBy   uuid.UUID `db:"created_by"  json:"created_by"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// TeamMember joins a user to a team with a role. Exactly one row exists per
// (team, user) pair. UserName and UserEmail are populated from the users table
// on list queries.
type TeamMember struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	TeamID    uuid.UUID `db:"team_id"    json:"team_id"`
	UserID    uuid.UUID `db:"user_id"    json:"user_id"`
	Role      Role      `db:"role"       json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	UserName  string `db:"-" json:"user_name,omitempty"`
	UserEmail string `db:"-" json:"user_email,omitempty"`
}

// TeamInvitation is a single-use, expiring offer of membership. Raw tokens are
// shown once at creation; only the bcrypt hash is stored, looked up by prefix.
type TeamInvitation struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	TeamID      uuid.UUID `db:"team_id"      json:"team_id"`
	Email       string    `db:"email"        json:"email"`
	Role        Role      `db:"role"         json:"role"`
	InvitedBy   uuid.UUID `db:"invited_by"   json:"invited_by"`
	TokenHash   string    `db:"token_hash"   json:"-"`
	TokenPrefix string    `db:"token_prefix" json:"-"`
	ExpiresAt   time.Time `db:"expires_at"   json:"expires_at"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

// Expired reports whether the invitation is past its expiry.
func (i *TeamInvitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
