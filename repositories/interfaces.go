package repositories

import (
	"context"
	"errors"

	"github.com/polite-web/polite-backend/models"
)

// Sentinel errors returned by repository implementations. Services translate
// these into domain errors.
var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// PostRepository handles post and sub-post data operations
type PostRepository interface {
	// GetByID retrieves a post by ID
	GetByID(ctx context.Context, id int64) (*models.Post, error)

	// List retrieves all posts
	List(ctx context.Context) ([]*models.Post, error)

	// GetSubPost retrieves the sub-post of a post at the given section ord
	GetSubPost(ctx context.Context, postID int64, ord int) (*models.SubPost, error)

	// ListSubPosts retrieves all sub-posts of a post in section order
	ListSubPosts(ctx context.Context, postID int64) ([]*models.SubPost, error)
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// CommentRepository handles comment data operations
type CommentRepository interface {
	// Create inserts a new comment row
	Create(ctx context.Context, comment *models.Comment) error

	// GetByID retrieves a comment by ID
	GetByID(ctx context.Context, id int64) (*models.Comment, error)

	// ListBySubPost retrieves successfully submitted comments for a sub-post
	// in submission order, optionally including soft-deleted rows
	ListBySubPost(ctx context.Context, subPostID int64, includeDeleted bool) ([]*models.Comment, error)

	// FirstPostID returns the post the user first commented on, or nil if the
	// user has not commented yet
	FirstPostID(ctx context.Context, userID int64) (*int64, error)

	// CountBySection counts successful, non-deleted comments per section for a
	// (user, post) pair over the fixed section space
	CountBySection(ctx context.Context, userID, postID int64) (map[int]int, error)

	// SoftDelete marks a comment as deleted; returns the comment's previous
	// deleted state
	SoftDelete(ctx context.Context, id int64) (alreadyDeleted bool, err error)
}

// RewardRepository handles reward claim data operations
type RewardRepository interface {
	// GetClaimByUserID retrieves a user's claim, or nil if none exists
	GetClaimByUserID(ctx context.Context, userID int64) (*models.RewardClaim, error)

	// CreateClaim inserts a claim record. Returns a conflict error when the
	// user already holds a claim (unique user_id constraint).
	CreateClaim(ctx context.Context, claim *models.RewardClaim) error
}

// ReactionRepository handles reaction data operations
type ReactionRepository interface {
	// Toggle inserts the reaction if absent, removes it if present. Returns
	// true when the reaction exists after the call.
	Toggle(ctx context.Context, commentID int64, userID string, rtype models.ReactionType) (bool, error)

	// Status returns counts and viewer flags for a comment
	Status(ctx context.Context, commentID int64, userID string) (*models.ReactionStatus, error)
}

// InterventionRepository handles intervention event data operations
type InterventionRepository interface {
	// Insert appends an intervention event
	Insert(ctx context.Context, event *models.InterventionEvent) error
}

// Repositories holds all repository instances
type Repositories struct {
	Posts         PostRepository
	Users         UserRepository
	Comments      CommentRepository
	Rewards       RewardRepository
	Reactions     ReactionRepository
	Interventions InterventionRepository
}
