// Package users manages user accounts and their login credentials.
package users

import "time"

// User represents a user account. Deletion is a soft delete; rows are kept
// for audit attribution.
type User struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Handle    string     `json:"handle"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}
