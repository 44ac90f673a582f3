package models

import (
	"time"
)

// User represents a registered participant. A user is permanently associated
// with the first post they comment on; the lock is enforced at submission.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}
