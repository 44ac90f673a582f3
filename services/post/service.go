package post

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"github.com/polite-web/polite-backend/services"
	"go.uber.org/zap"
)

// Service serves the post catalog and gates entry to a post behind its
// shared access password.
type Service struct {
	posts  repositories.PostRepository
	logger *zap.Logger
}

// NewService creates a new post service
func NewService(posts repositories.PostRepository, logger *zap.Logger) *Service {
	return &Service{posts: posts, logger: logger}
}

// List returns all posts.
func (s *Service) List(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to list posts", err)
	}
	return posts, nil
}

// Get retrieves a post by ID.
func (s *Service) Get(ctx context.Context, id int64) (*models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrPostNotFound
		}
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to load post", err)
	}
	return p, nil
}

// Enter verifies the post's access password and, on success, returns its
// sub-posts in section order. A post with no password configured is open.
func (s *Service) Enter(ctx context.Context, postID int64, password string) ([]*models.SubPost, error) {
	p, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	if p.PasswordHash != "" && !passwordMatches(p.PasswordHash, password) {
		return nil, services.NewDomainError(services.ErrorTypeForbidden, "invalid post password", nil)
	}

	subs, err := s.posts.ListSubPosts(ctx, postID)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to list sub-posts", err)
	}
	return subs, nil
}

// HashPassword derives the stored form of a post access password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func passwordMatches(storedHash, password string) bool {
	candidate := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(candidate)) == 1
}
