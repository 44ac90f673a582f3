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

// commentColumns is the scan order shared by comment queries
const commentColumns = `
	id, user_id, post_id, sub_post_id, article_ord, parent_comment_id,
	COALESCE(text_original, ''), text_generated_polite, text_user_edit, text_final,
	final_source, was_edited,
	COALESCE(original_logit, 0), edit_logit, final_logit, COALESCE(threshold_applied, 0),
	attempts_count, submit_success,
	created_at, updated_at, is_deleted, deleted_at
`

// CommentRepository implements the repositories.CommentRepository interface
type CommentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *DB, logger *zap.Logger) repositories.CommentRepository {
	return &CommentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new comment row
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (
			user_id, post_id, sub_post_id, article_ord, parent_comment_id,
			text_original, text_generated_polite, text_user_edit, text_final,
			final_source, was_edited,
			original_logit, edit_logit, final_logit, threshold_applied,
			attempts_count, submit_success, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		comment.UserID,
		comment.PostID,
		comment.SubPostID,
		comment.Section,
		comment.ParentCommentID,
		comment.TextOriginal,
		comment.TextGeneratedPolite,
		comment.TextUserEdit,
		comment.TextFinal,
		comment.FinalSource,
		comment.WasEdited,
		comment.OriginalLogit,
		comment.EditLogit,
		comment.FinalLogit,
		comment.ThresholdApplied,
		comment.AttemptsCount,
		comment.SubmitSuccess,
		comment.CreatedAt,
	).Scan(&comment.ID)

	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	r.logger.Debug("comment created",
		zap.Int64("id", comment.ID),
		zap.String("final_source", string(comment.FinalSource)))
	return nil
}

// scanComment scans one comment row in commentColumns order
func scanComment(row interface{ Scan(...interface{}) error }) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(
		&c.ID, &c.UserID, &c.PostID, &c.SubPostID, &c.Section, &c.ParentCommentID,
		&c.TextOriginal, &c.TextGeneratedPolite, &c.TextUserEdit, &c.TextFinal,
		&c.FinalSource, &c.WasEdited,
		&c.OriginalLogit, &c.EditLogit, &c.FinalLogit, &c.ThresholdApplied,
		&c.AttemptsCount, &c.SubmitSuccess,
		&c.CreatedAt, &c.UpdatedAt, &c.IsDeleted, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	c, err := scanComment(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("comment %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return c, nil
}

// ListBySubPost retrieves successfully submitted comments for a sub-post in
// submission order, optionally including soft-deleted rows
func (r *CommentRepository) ListBySubPost(ctx context.Context, subPostID int64, includeDeleted bool) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE sub_post_id = $1
		  AND submit_success = true
		  AND ($2 OR is_deleted = false)
		ORDER BY created_at, id
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, subPostID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

// FirstPostID returns the post the user first commented on, or nil if the
// user has not commented yet
func (r *CommentRepository) FirstPostID(ctx context.Context, userID int64) (*int64, error) {
	query := `
		SELECT post_id
		FROM comments
		WHERE user_id = $1
		ORDER BY id
		LIMIT 1
	`

	executor := GetExecutor(ctx, r.db)
	var postID int64

	err := executor.QueryRowContext(ctx, query, userID).Scan(&postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get first post for user: %w", err)
	}

	return &postID, nil
}

// CountBySection counts successful, non-deleted comments per section for a
// (user, post) pair. Every section of the fixed space appears in the result,
// zero-valued when the user has no comments there.
func (r *CommentRepository) CountBySection(ctx context.Context, userID, postID int64) (map[int]int, error) {
	query := `
		SELECT article_ord, COUNT(id)
		FROM comments
		WHERE user_id = $1
		  AND post_id = $2
		  AND submit_success = true
		  AND is_deleted = false
		GROUP BY article_ord
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments by section: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int, models.SectionMax)
	for ord := models.SectionMin; ord <= models.SectionMax; ord++ {
		counts[ord] = 0
	}

	for rows.Next() {
		var ord, cnt int
		if err := rows.Scan(&ord, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan section count: %w", err)
		}
		if ord >= models.SectionMin && ord <= models.SectionMax {
			counts[ord] = cnt
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate section counts: %w", err)
	}

	return counts, nil
}

// SoftDelete marks a comment as deleted; returns the comment's previous
// deleted state
func (r *CommentRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	executor := GetExecutor(ctx, r.db)

	var isDeleted bool
	err := executor.QueryRowContext(ctx, `SELECT is_deleted FROM comments WHERE id = $1`, id).Scan(&isDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("comment %d: %w", id, repositories.ErrNotFound)
		}
		return false, fmt.Errorf("failed to get comment: %w", err)
	}

	if isDeleted {
		return true, nil
	}

	query := `
		UPDATE comments
		SET is_deleted = true, deleted_at = $2
		WHERE id = $1
	`

	if _, err := executor.ExecContext(ctx, query, id, time.Now()); err != nil {
		return false, fmt.Errorf("failed to soft delete comment: %w", err)
	}

	r.logger.Debug("comment soft deleted", zap.Int64("id", id))
	return false, nil
}
