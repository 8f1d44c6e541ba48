package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform account. Passwords are stored as bcrypt hashes and never
// leave the server.
type User struct {
	ID              uuid.UUID  `db:"id"                json:"id"`
	Email           string     `db:"email"             json:"email"`
	Name            string     `db:"name"              json:"name"`
	PasswordHash    string     `db:"password_hash"     json:"-"`
	IsSuperAdmin    bool       `db:"is_super_admin"    json:"is_super_admin"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at"        json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"        json:"updated_at"`
}
