package models

import (
	"time"
)

// RewardClaimStatus values for a claim record.
const (
	RewardClaimStatusGranted = "granted"
)

// RewardClaim records a one-time reward grant. The user_id uniqueness
// constraint is the concurrency-safety backstop against double granting;
// the service does not hold an in-process lock across check and grant.
type RewardClaim struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	PostID    int64     `json:"post_id" db:"post_id"`
	Status    string    `json:"status" db:"status"`
	ClaimedAt time.Time `json:"claimed_at" db:"claimed_at"`
}

// TableName returns the table name for the RewardClaim model
func (RewardClaim) TableName() string {
	return "reward_claims"
}
