package handlers

import (
	"context"
	"net/http"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/utils"
	"go.uber.org/zap"
)

// PostService is the slice of the post catalog service the handlers need.
type PostService interface {
	List(ctx context.Context) ([]*models.Post, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	Enter(ctx context.Context, postID int64, password string) ([]*models.SubPost, error)
}

// PostHandler handles post catalog endpoints
type PostHandler struct {
	svc    PostService
	logger *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(svc PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{svc: svc, logger: logger}
}

// HandleList handles GET /posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, posts)
}

// HandleGet handles GET /posts/{postID}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	postID, err := pathInt64(r, "postID")
	if err != nil {
		badRequest(w, err)
		return
	}

	post, err := h.svc.Get(r.Context(), postID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, post)
}

// EnterPostRequest is the request body for POST /posts/{postID}/enter
type EnterPostRequest struct {
	Password string `json:"password"`
}

// HandleEnter handles POST /posts/{postID}/enter
func (h *PostHandler) HandleEnter(w http.ResponseWriter, r *http.Request) {
	postID, err := pathInt64(r, "postID")
	if err != nil {
		badRequest(w, err)
		return
	}

	var req EnterPostRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	subs, err := h.svc.Enter(r.Context(), postID, req.Password)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, subs)
}
