package models

import (
	"time"
)

// ReactionType represents the kind of reaction a viewer left on a comment.
type ReactionType string

const (
	ReactionTypeLike ReactionType = "like"
	ReactionTypeHate ReactionType = "hate"
)

// Reaction is a per-viewer toggle on a comment. The (comment_id, user_id,
// reaction_type) uniqueness constraint makes each toggle single-valued.
type Reaction struct {
	ID           int64        `json:"id" db:"id"`
	CommentID    int64        `json:"comment_id" db:"comment_id"`
	UserID       string       `json:"user_id" db:"user_id"`
	ReactionType ReactionType `json:"reaction_type" db:"reaction_type"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty" db:"updated_at"`
}

// TableName returns the table name for the Reaction model
func (Reaction) TableName() string {
	return "reactions"
}

// ReactionStatus is the aggregated reaction view for one comment as seen by
// one viewer.
type ReactionStatus struct {
	CommentID int64 `json:"comment_id"`
	LikeCount int   `json:"like_count"`
	HateCount int   `json:"hate_count"`
	LikedByMe bool  `json:"liked_by_me"`
	HatedByMe bool  `json:"hated_by_me"`
}
