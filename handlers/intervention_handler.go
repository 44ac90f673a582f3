package handlers

import (
	"net/http"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/utils"
	"go.uber.org/zap"
)

// InterventionHandler handles intervention telemetry endpoints
type InterventionHandler struct {
	svc    CommentService
	logger *zap.Logger
}

// NewInterventionHandler creates a new InterventionHandler
func NewInterventionHandler(svc CommentService, logger *zap.Logger) *InterventionHandler {
	return &InterventionHandler{svc: svc, logger: logger}
}

// LogInterventionRequest is the request body for POST /interventions
type LogInterventionRequest struct {
	UserID           int64   `json:"user_id" validate:"required"`
	PostID           int64   `json:"post_id" validate:"required"`
	Section          int     `json:"section" validate:"required,min=1,max=3"`
	TempUUID         string  `json:"temp_uuid,omitempty"`
	AttemptNo        int     `json:"attempt_no,omitempty"`
	OriginalLogit    float64 `json:"original_logit"`
	ThresholdApplied float64 `json:"threshold_applied"`
	LatencyMs        *int    `json:"latency_ms,omitempty"`
	ActionApplied    string  `json:"action_applied,omitempty"`

	GeneratedPoliteText *string `json:"generated_polite_text,omitempty"`
	UserEditText        *string `json:"user_edit_text,omitempty"`
	EditLogit           *float64 `json:"edit_logit,omitempty"`
	DecisionRuleApplied string   `json:"decision_rule_applied,omitempty"`
	FinalChoiceHint     string   `json:"final_choice_hint,omitempty"`
}

// HandleLog handles POST /interventions
func (h *InterventionHandler) HandleLog(w http.ResponseWriter, r *http.Request) {
	var req LogInterventionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	event := &models.InterventionEvent{
		UserID:              req.UserID,
		PostID:              req.PostID,
		Section:             req.Section,
		TempUUID:            req.TempUUID,
		AttemptNo:           req.AttemptNo,
		OriginalLogit:       req.OriginalLogit,
		ThresholdApplied:    req.ThresholdApplied,
		LatencyMs:           req.LatencyMs,
		ActionApplied:       req.ActionApplied,
		GeneratedPoliteText: req.GeneratedPoliteText,
		UserEditText:        req.UserEditText,
		EditLogit:           req.EditLogit,
		DecisionRuleApplied: models.DecisionRule(req.DecisionRuleApplied),
		FinalChoiceHint:     models.FinalChoiceHint(req.FinalChoiceHint),
	}

	if err := h.svc.LogIntervention(r.Context(), event); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, event)
}
