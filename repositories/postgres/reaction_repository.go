package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"go.uber.org/zap"
)

// ReactionRepository implements the repositories.ReactionRepository interface
type ReactionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *DB, logger *zap.Logger) repositories.ReactionRepository {
	return &ReactionRepository{
		db:     db,
		logger: logger,
	}
}

// Toggle inserts the reaction if absent, removes it if present. Returns true
// when the reaction exists after the call.
func (r *ReactionRepository) Toggle(ctx context.Context, commentID int64, userID string, rtype models.ReactionType) (bool, error) {
	executor := GetExecutor(ctx, r.db)

	var existingID int64
	err := executor.QueryRowContext(ctx, `
		SELECT id FROM reactions
		WHERE comment_id = $1 AND user_id = $2 AND reaction_type = $3
	`, commentID, userID, rtype).Scan(&existingID)

	switch {
	case err == sql.ErrNoRows:
		_, err := executor.ExecContext(ctx, `
			INSERT INTO reactions (comment_id, user_id, reaction_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
		`, commentID, userID, rtype, time.Now())
		if err != nil {
			// A concurrent toggle may have won the insert race; the unique
			// constraint makes that equivalent to our insert succeeding.
			if isUniqueViolation(err) {
				return true, nil
			}
			return false, fmt.Errorf("failed to insert reaction: %w", err)
		}
		return true, nil

	case err != nil:
		return false, fmt.Errorf("failed to query reaction: %w", err)

	default:
		if _, err := executor.ExecContext(ctx, `DELETE FROM reactions WHERE id = $1`, existingID); err != nil {
			return false, fmt.Errorf("failed to delete reaction: %w", err)
		}
		return false, nil
	}
}

// Status returns counts and viewer flags for a comment
func (r *ReactionRepository) Status(ctx context.Context, commentID int64, userID string) (*models.ReactionStatus, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE reaction_type = 'like'),
			COUNT(*) FILTER (WHERE reaction_type = 'hate'),
			COUNT(*) FILTER (WHERE reaction_type = 'like' AND user_id = $2) > 0,
			COUNT(*) FILTER (WHERE reaction_type = 'hate' AND user_id = $2) > 0
		FROM reactions
		WHERE comment_id = $1
	`

	executor := GetExecutor(ctx, r.db)
	status := &models.ReactionStatus{CommentID: commentID}

	err := executor.QueryRowContext(ctx, query, commentID, userID).Scan(
		&status.LikeCount,
		&status.HateCount,
		&status.LikedByMe,
		&status.HatedByMe,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction status: %w", err)
	}

	return status, nil
}
