package models

import (
	"time"
)

// PolicyMode selects which moderation path governs submissions to a post.
type PolicyMode string

const (
	PolicyModeBlock         PolicyMode = "block"
	PolicyModePoliteOneEdit PolicyMode = "polite_one_edit"
	PolicyModeNoFilter      PolicyMode = "nofilter"
)

// Valid reports whether the mode is one of the three configured modes.
func (m PolicyMode) Valid() bool {
	switch m {
	case PolicyModeBlock, PolicyModePoliteOneEdit, PolicyModeNoFilter:
		return true
	}
	return false
}

// Post represents a content post with its moderation policy configuration.
// PolicyMode and Threshold are immutable once a comment has been submitted
// against the post.
type Post struct {
	ID           int64      `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Content      string     `json:"content" db:"content"`
	PasswordHash string     `json:"-" db:"password_hash"`
	PolicyMode   PolicyMode `json:"policy_mode" db:"policy_mode"`
	Threshold    float64    `json:"threshold" db:"threshold"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Post model
func (Post) TableName() string {
	return "posts"
}

// Section bounds for sub-posts. The section space is fixed.
const (
	SectionMin = 1
	SectionMax = 3
)

// SubPost represents one of the three article sections of a post.
type SubPost struct {
	ID          int64     `json:"id" db:"id"`
	PostID      int64     `json:"post_id" db:"post_id"`
	Ord         int       `json:"ord" db:"ord"` // 1..3
	TemplateKey string    `json:"template_key" db:"template_key"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the SubPost model
func (SubPost) TableName() string {
	return "sub_posts"
}
