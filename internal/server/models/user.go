// Package models defines server-side data models persisted in the database.
package models

import "time"

// Column limits shared by validation and the database schema.
const (
	MaxUsernameLength = 30
	MaxEmailLength    = 100
	MaxSubjectLength  = 50
	MaxContentLength  = 250
)

// User is a registered identity. Username and email are unique; the
// password is stored only as a bcrypt hash.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
