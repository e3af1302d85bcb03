package domain

import "time"

// User represents a registered user of the application in the domain.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	FirstName    string `json:"firstName"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // bcrypt hash, never serialized
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}
