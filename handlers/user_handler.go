package handlers

import (
	"context"
	"net/http"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/utils"
	"go.uber.org/zap"
)

// UserService is the slice of the user registry the handlers need.
type UserService interface {
	Register(ctx context.Context, username string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
}

// UserHandler handles the participant registry endpoints
type UserHandler struct {
	svc    UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(svc UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// RegisterUserRequest is the request body for POST /users
type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

// HandleRegister handles POST /users
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Username)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, user)
}

// HandleGet handles GET /users/{userID}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userID")
	if err != nil {
		badRequest(w, err)
		return
	}

	user, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, user)
}
