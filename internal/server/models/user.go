// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. Email is stored trimmed and lower-cased;
// PasswordHash is a bcrypt hash and never leaves the server.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
