package handlers

import (
	"context"
	"net/http"

	"github.com/polite-web/polite-backend/services/reward"
	"github.com/polite-web/polite-backend/utils"
	"go.uber.org/zap"
)

// RewardService is the slice of the reward service the handlers need.
type RewardService interface {
	GetStatus(ctx context.Context, userID, postID int64) (*reward.Status, error)
	Claim(ctx context.Context, userID, postID int64) (*reward.ClaimResult, error)
}

// RewardHandler handles reward eligibility and claim endpoints
type RewardHandler struct {
	svc    RewardService
	logger *zap.Logger
}

// NewRewardHandler creates a new RewardHandler
func NewRewardHandler(svc RewardService, logger *zap.Logger) *RewardHandler {
	return &RewardHandler{svc: svc, logger: logger}
}

// HandleStatus handles GET /rewards/status?user_id=&post_id=
func (h *RewardHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		badRequest(w, err)
		return
	}
	postID, err := queryInt64(r, "post_id")
	if err != nil {
		badRequest(w, err)
		return
	}

	status, err := h.svc.GetStatus(r.Context(), userID, postID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, status)
}

// ClaimRewardRequest is the request body for POST /rewards/claim
type ClaimRewardRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
	PostID int64 `json:"post_id" validate:"required"`
}

// HandleClaim handles POST /rewards/claim
func (h *RewardHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRewardRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.svc.Claim(r.Context(), req.UserID, req.PostID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, result)
}
