package entity

import (
	"time"
)

// StatusActive is the status assigned to users created without an explicit status.
const StatusActive = "active"

// User is the aggregate root for the user domain.
// PasswordHash is an opaque string supplied by the caller; this service
// never hashes or verifies it.
//
// A non-nil DeletedAt marks the row as soft-deleted; such rows stay in
// the store but are excluded from every read path.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Address      *string    `json:"address,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	DateOfBirth  *string    `json:"date_of_birth,omitempty"`
	Status       string     `json:"status"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}
