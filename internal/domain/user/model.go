package user

import (
	"time"
)

// Reference is the locally synced copy of a user record owned by the
// identity service. SyncedAt reflects local processing time, not event
// ordering across partitions.
type Reference struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Slug     string    `json:"slug"`
	Email    string    `json:"email"`
	IsActive bool      `json:"is_active"`
	SyncedAt time.Time `json:"synced_at"`
}
