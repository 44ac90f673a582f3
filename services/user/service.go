package user

import (
	"context"
	"errors"
	"strings"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"github.com/polite-web/polite-backend/services"
	"go.uber.org/zap"
)

const maxUsernameLength = 64

// Service manages the lightweight participant registry. There is no
// authentication; a username is an identity.
type Service struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewService creates a new user service
func NewService(users repositories.UserRepository, logger *zap.Logger) *Service {
	return &Service{users: users, logger: logger}
}

// Register creates a user for the username, or returns the existing user
// when the name is already taken. Registration is idempotent per username.
func (s *Service) Register(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "username")
	}
	if len(username) > maxUsernameLength {
		return nil, services.ErrInvalidInput.WithDetail("field", "username").
			WithDetail("max_length", maxUsernameLength)
	}

	u := &models.User{Username: username}
	err := s.users.Create(ctx, u)
	if err == nil {
		s.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", username))
		return u, nil
	}
	if !errors.Is(err, repositories.ErrDuplicate) {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to create user", err)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to load user", err)
	}
	return existing, nil
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to load user", err)
	}
	return u, nil
}
