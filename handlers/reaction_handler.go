package handlers

import (
	"context"
	"net/http"

	"github.com/polite-web/polite-backend/middleware"
	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/utils"
	"go.uber.org/zap"
)

// ReactionService is the slice of the reaction service the handlers need.
type ReactionService interface {
	Toggle(ctx context.Context, commentID int64, viewerID string, rtype models.ReactionType) (bool, error)
	Status(ctx context.Context, commentID int64, viewerID string) (*models.ReactionStatus, error)
	BatchStatus(ctx context.Context, commentIDs []int64, viewerID string) ([]*models.ReactionStatus, error)
}

// ReactionHandler handles like/hate endpoints. The viewer identity comes
// from the viewer middleware, not a registered account.
type ReactionHandler struct {
	svc    ReactionService
	logger *zap.Logger
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(svc ReactionService, logger *zap.Logger) *ReactionHandler {
	return &ReactionHandler{svc: svc, logger: logger}
}

// ToggleReactionRequest is the request body for POST /comments/{commentID}/reactions
type ToggleReactionRequest struct {
	ReactionType string `json:"reaction_type" validate:"required,oneof=like hate"`
}

// HandleToggle handles POST /comments/{commentID}/reactions
func (h *ReactionHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathInt64(r, "commentID")
	if err != nil {
		badRequest(w, err)
		return
	}

	var req ToggleReactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	viewerID := middleware.GetViewerIDFromContext(r.Context())
	active, err := h.svc.Toggle(r.Context(), commentID, viewerID, models.ReactionType(req.ReactionType))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, map[string]bool{"active": active})
}

// HandleStatus handles GET /comments/{commentID}/reactions
func (h *ReactionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathInt64(r, "commentID")
	if err != nil {
		badRequest(w, err)
		return
	}

	viewerID := middleware.GetViewerIDFromContext(r.Context())
	status, err := h.svc.Status(r.Context(), commentID, viewerID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, status)
}

// BatchReactionStatusRequest is the request body for POST /reactions/status
type BatchReactionStatusRequest struct {
	CommentIDs []int64 `json:"comment_ids" validate:"required,min=1"`
}

// HandleBatchStatus handles POST /reactions/status
func (h *ReactionHandler) HandleBatchStatus(w http.ResponseWriter, r *http.Request) {
	var req BatchReactionStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	viewerID := middleware.GetViewerIDFromContext(r.Context())
	statuses, err := h.svc.BatchStatus(r.Context(), req.CommentIDs, viewerID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, statuses)
}
