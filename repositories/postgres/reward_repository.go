package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"go.uber.org/zap"
)

// RewardRepository implements the repositories.RewardRepository interface
type RewardRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *DB, logger *zap.Logger) repositories.RewardRepository {
	return &RewardRepository{
		db:     db,
		logger: logger,
	}
}

// GetClaimByUserID retrieves a user's claim, or nil if none exists
func (r *RewardRepository) GetClaimByUserID(ctx context.Context, userID int64) (*models.RewardClaim, error) {
	query := `
		SELECT id, user_id, post_id, status, claimed_at
		FROM reward_claims
		WHERE user_id = $1
	`

	executor := GetExecutor(ctx, r.db)
	claim := &models.RewardClaim{}

	err := executor.QueryRowContext(ctx, query, userID).Scan(
		&claim.ID,
		&claim.UserID,
		&claim.PostID,
		&claim.Status,
		&claim.ClaimedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reward claim: %w", err)
	}

	return claim, nil
}

// CreateClaim inserts a claim record. The unique user_id index rejects a
// concurrent second grant; that case surfaces as ErrDuplicate.
func (r *RewardRepository) CreateClaim(ctx context.Context, claim *models.RewardClaim) error {
	query := `
		INSERT INTO reward_claims (user_id, post_id, status, claimed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		claim.UserID,
		claim.PostID,
		claim.Status,
		claim.ClaimedAt,
	).Scan(&claim.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reward claim for user %d: %w", claim.UserID, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create reward claim: %w", err)
	}

	r.logger.Debug("reward claim created", zap.Int64("user_id", claim.UserID))
	return nil
}
