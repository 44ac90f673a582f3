package models

import (
	"time"
)

// FinalSource records which text variant became the stored comment.
// Exactly one tag applies per outcome.
type FinalSource string

const (
	FinalSourceOriginal FinalSource = "original"
	FinalSourcePolite   FinalSource = "polite"
	FinalSourceUserEdit FinalSource = "user_edit"
	FinalSourceBlocked  FinalSource = "blocked"
	FinalSourceNoFilter FinalSource = "nofilter"
)

// Comment is the persisted submission outcome. A comment row is written once,
// at finalization, and never mutated afterwards; only soft deletion may later
// hide it.
type Comment struct {
	ID              int64  `json:"id" db:"id"`
	UserID          int64  `json:"user_id" db:"user_id"`
	PostID          int64  `json:"post_id" db:"post_id"`
	SubPostID       *int64 `json:"sub_post_id,omitempty" db:"sub_post_id"`
	Section         int    `json:"section" db:"article_ord"`
	ParentCommentID *int64 `json:"parent_comment_id,omitempty" db:"parent_comment_id"`

	TextOriginal        string  `json:"text_original" db:"text_original"`
	TextGeneratedPolite *string `json:"text_generated_polite,omitempty" db:"text_generated_polite"`
	TextUserEdit        *string `json:"text_user_edit,omitempty" db:"text_user_edit"`
	// TextFinal is nil only when the submission was blocked.
	TextFinal *string `json:"text_final" db:"text_final"`

	FinalSource FinalSource `json:"final_source" db:"final_source"`
	WasEdited   bool        `json:"was_edited" db:"was_edited"`

	OriginalLogit    float64  `json:"original_logit" db:"original_logit"`
	EditLogit        *float64 `json:"edit_logit,omitempty" db:"edit_logit"`
	FinalLogit       *float64 `json:"final_logit,omitempty" db:"final_logit"`
	ThresholdApplied float64  `json:"threshold_applied" db:"threshold_applied"`

	AttemptsCount int  `json:"attempts_count" db:"attempts_count"`
	SubmitSuccess bool `json:"submit_success" db:"submit_success"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`

	IsDeleted bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// TableName returns the table name for the Comment model
func (Comment) TableName() string {
	return "comments"
}
