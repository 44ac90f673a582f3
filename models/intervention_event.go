package models

import (
	"time"
)

// DecisionRule names the rule that forced a moderation decision.
type DecisionRule string

const (
	DecisionRuleNone                DecisionRule = "none"
	DecisionRuleForcedAcceptOneEdit DecisionRule = "forced_accept_one_edit"
)

// FinalChoiceHint is the client's best guess at the eventual outcome when the
// intervention was shown, before the submission was finalized.
type FinalChoiceHint string

const (
	FinalChoiceHintUnknown  FinalChoiceHint = "unknown"
	FinalChoiceHintPolite   FinalChoiceHint = "polite"
	FinalChoiceHintUserEdit FinalChoiceHint = "user_edit"
	FinalChoiceHintOriginal FinalChoiceHint = "original"
)

// InterventionEvent is an append-only telemetry record of a moderation
// intervention shown to the user before submission.
type InterventionEvent struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`
	PostID int64 `json:"post_id" db:"post_id"`

	Section   int    `json:"article_ord" db:"article_ord"` // 1..3
	TempUUID  string `json:"temp_uuid" db:"temp_uuid"`
	AttemptNo int    `json:"attempt_no" db:"attempt_no"`

	OriginalLogit    float64 `json:"original_logit" db:"original_logit"`
	ThresholdApplied float64 `json:"threshold_applied" db:"threshold_applied"`

	ShownAt   time.Time `json:"shown_at" db:"shown_at"`
	LatencyMs *int      `json:"latency_ms,omitempty" db:"latency_ms"`

	// Block-mode only.
	ActionApplied string `json:"action_applied" db:"action_applied"` // none | blocked

	// Polite-mode only.
	GeneratedPoliteText *string         `json:"generated_polite_text,omitempty" db:"generated_polite_text"`
	UserEditText        *string         `json:"user_edit_text,omitempty" db:"user_edit_text"`
	EditLogit           *float64        `json:"edit_logit,omitempty" db:"edit_logit"`
	DecisionRuleApplied DecisionRule    `json:"decision_rule_applied" db:"decision_rule_applied"`
	FinalChoiceHint     FinalChoiceHint `json:"final_choice_hint" db:"final_choice_hint"`
}

// TableName returns the table name for the InterventionEvent model
func (InterventionEvent) TableName() string {
	return "intervention_events"
}
