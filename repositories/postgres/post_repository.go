package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"go.uber.org/zap"
)

// PostRepository implements the repositories.PostRepository interface
type PostRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *DB, logger *zap.Logger) repositories.PostRepository {
	return &PostRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `
		SELECT id, title, COALESCE(content, ''), COALESCE(password_hash, ''), policy_mode, threshold, created_at
		FROM posts
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	post := &models.Post{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.PasswordHash,
		&post.PolicyMode,
		&post.Threshold,
		&post.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("post %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// List retrieves all posts
func (r *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	query := `
		SELECT id, title, COALESCE(content, ''), COALESCE(password_hash, ''), policy_mode, threshold, created_at
		FROM posts
		ORDER BY id
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post := &models.Post{}
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.PasswordHash,
			&post.PolicyMode,
			&post.Threshold,
			&post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// GetSubPost retrieves the sub-post of a post at the given section ord
func (r *PostRepository) GetSubPost(ctx context.Context, postID int64, ord int) (*models.SubPost, error) {
	query := `
		SELECT id, post_id, ord, template_key, created_at
		FROM sub_posts
		WHERE post_id = $1 AND ord = $2
	`

	executor := GetExecutor(ctx, r.db)
	sp := &models.SubPost{}

	err := executor.QueryRowContext(ctx, query, postID, ord).Scan(
		&sp.ID,
		&sp.PostID,
		&sp.Ord,
		&sp.TemplateKey,
		&sp.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sub-post (post %d, ord %d): %w", postID, ord, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sub-post: %w", err)
	}

	return sp, nil
}

// ListSubPosts retrieves all sub-posts of a post in section order
func (r *PostRepository) ListSubPosts(ctx context.Context, postID int64) ([]*models.SubPost, error) {
	query := `
		SELECT id, post_id, ord, template_key, created_at
		FROM sub_posts
		WHERE post_id = $1
		ORDER BY ord
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-posts: %w", err)
	}
	defer rows.Close()

	var subPosts []*models.SubPost
	for rows.Next() {
		sp := &models.SubPost{}
		if err := rows.Scan(&sp.ID, &sp.PostID, &sp.Ord, &sp.TemplateKey, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sub-post: %w", err)
		}
		subPosts = append(subPosts, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sub-posts: %w", err)
	}

	return subPosts, nil
}
