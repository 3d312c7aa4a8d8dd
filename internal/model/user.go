package model

import "time"

// User roles and account statuses as stored in the directory.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// User is a directory entry. The registry consumes it for uploader
// name resolution and access-policy decisions; account management
// itself lives in the user service.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Password   string    `json:"-"` // bcrypt hash, never serialized
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
