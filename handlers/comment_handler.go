package handlers

import (
	"context"
	"net/http"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/services/moderation"
	"github.com/polite-web/polite-backend/utils"
	"go.uber.org/zap"
)

// CommentService is the slice of the moderation service the comment
// endpoints need.
type CommentService interface {
	Suggest(ctx context.Context, req *moderation.SuggestRequest) (*moderation.SuggestResult, error)
	Submit(ctx context.Context, req *moderation.SubmitRequest) (*models.Comment, error)
	ListComments(ctx context.Context, postID int64, section int, includeDeleted bool) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) (alreadyDeleted bool, err error)
	LogIntervention(ctx context.Context, event *models.InterventionEvent) error
}

// CommentHandler handles comment submission and read endpoints
type CommentHandler struct {
	svc    CommentService
	logger *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(svc CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{svc: svc, logger: logger}
}

// SuggestCommentRequest is the request body for POST /comments/suggest
type SuggestCommentRequest struct {
	PostID  int64  `json:"post_id" validate:"required"`
	Section int    `json:"section" validate:"required,min=1,max=3"`
	Text    string `json:"text" validate:"required"`
}

// HandleSuggest handles POST /comments/suggest
func (h *CommentHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	res, err := h.svc.Suggest(r.Context(), &moderation.SuggestRequest{
		PostID:  req.PostID,
		Section: req.Section,
		Text:    req.Text,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, res)
}

// SubmitCommentRequest is the request body for POST /comments/submit
type SubmitCommentRequest struct {
	PostID              int64   `json:"post_id" validate:"required"`
	Section             int     `json:"section" validate:"required,min=1,max=3"`
	UserID              int64   `json:"user_id" validate:"required"`
	Text                string  `json:"text" validate:"required"`
	TextUserEdit        *string `json:"text_user_edit,omitempty"`
	GeneratedPoliteText *string `json:"generated_polite_text,omitempty"`
	ParentCommentID     *int64  `json:"parent_comment_id,omitempty"`
}

// HandleSubmit handles POST /comments/submit
func (h *CommentHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	comment, err := h.svc.Submit(r.Context(), &moderation.SubmitRequest{
		PostID:              req.PostID,
		Section:             req.Section,
		UserID:              req.UserID,
		TextOriginal:        req.Text,
		TextUserEdit:        req.TextUserEdit,
		GeneratedPoliteText: req.GeneratedPoliteText,
		ParentCommentID:     req.ParentCommentID,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, comment)
}

// HandleList handles GET /posts/{postID}/sections/{section}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	postID, err := pathInt64(r, "postID")
	if err != nil {
		badRequest(w, err)
		return
	}
	section, err := pathInt(r, "section")
	if err != nil {
		badRequest(w, err)
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	comments, err := h.svc.ListComments(r.Context(), postID, section, includeDeleted)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, comments)
}

// HandleDelete handles DELETE /comments/{commentID}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathInt64(r, "commentID")
	if err != nil {
		badRequest(w, err)
		return
	}

	alreadyDeleted, err := h.svc.DeleteComment(r.Context(), commentID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]bool{"already_deleted": alreadyDeleted})
}
