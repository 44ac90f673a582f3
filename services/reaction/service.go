package reaction

import (
	"context"
	"errors"
	"strings"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"github.com/polite-web/polite-backend/services"
	"go.uber.org/zap"
)

// Service handles like/hate toggles on comments. Viewers are identified by an
// opaque client-held ID, not a registered account.
type Service struct {
	reactions repositories.ReactionRepository
	comments  repositories.CommentRepository
	logger    *zap.Logger
}

// NewService creates a new reaction service
func NewService(reactions repositories.ReactionRepository, comments repositories.CommentRepository, logger *zap.Logger) *Service {
	return &Service{reactions: reactions, comments: comments, logger: logger}
}

// Toggle flips the viewer's reaction of the given type on a comment. Returns
// true when the reaction exists after the call.
func (s *Service) Toggle(ctx context.Context, commentID int64, viewerID string, rtype models.ReactionType) (bool, error) {
	if strings.TrimSpace(viewerID) == "" {
		return false, services.ErrInvalidInput.WithDetail("field", "user_id")
	}
	if rtype != models.ReactionTypeLike && rtype != models.ReactionTypeHate {
		return false, services.ErrInvalidInput.WithDetail("field", "reaction_type")
	}
	if err := s.requireComment(ctx, commentID); err != nil {
		return false, err
	}

	active, err := s.reactions.Toggle(ctx, commentID, viewerID, rtype)
	if err != nil {
		return false, services.NewDomainError(services.ErrorTypeInternal, "failed to toggle reaction", err)
	}
	return active, nil
}

// Status returns counts and the viewer's own flags for one comment.
func (s *Service) Status(ctx context.Context, commentID int64, viewerID string) (*models.ReactionStatus, error) {
	if err := s.requireComment(ctx, commentID); err != nil {
		return nil, err
	}

	status, err := s.reactions.Status(ctx, commentID, viewerID)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to load reaction status", err)
	}
	return status, nil
}

// BatchStatus resolves statuses for several comments at once, silently
// skipping IDs that no longer exist.
func (s *Service) BatchStatus(ctx context.Context, commentIDs []int64, viewerID string) ([]*models.ReactionStatus, error) {
	statuses := make([]*models.ReactionStatus, 0, len(commentIDs))
	for _, id := range commentIDs {
		status, err := s.Status(ctx, id, viewerID)
		if err != nil {
			if services.IsNotFoundError(err) {
				continue
			}
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *Service) requireComment(ctx context.Context, commentID int64) error {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrCommentNotFound
		}
		return services.NewDomainError(services.ErrorTypeInternal, "failed to load comment", err)
	}
	return nil
}
