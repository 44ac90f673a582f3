package reward

import (
	"context"
	"errors"
	"time"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"github.com/polite-web/polite-backend/services"
	"go.uber.org/zap"
)

// Participation requirements. Only successful, non-deleted comments count.
const (
	perSectionMin = 3
	totalMin      = 9
)

// RedeemInfo is the out-of-band redemption channel revealed once a claim is
// granted.
type RedeemInfo struct {
	OpenchatURL      string `json:"openchat_url"`
	OpenchatPassword string `json:"openchat_password"`
}

// Status is the reward progress snapshot for a (user, post) pair.
type Status struct {
	Counts        map[int]int `json:"counts"`
	PerSectionMin int         `json:"per_section_min"`
	TotalMin      int         `json:"total_min"`
	Eligible      bool        `json:"eligible"`
	Claimed       bool        `json:"claimed"`
	ClaimedAt     *time.Time  `json:"claimed_at,omitempty"`
	Redeem        *RedeemInfo `json:"redeem,omitempty"`
}

// ClaimResult is the outcome of one claim call. Granted marks a fresh grant;
// AlreadyClaimed marks a repeat call that found the stored grant. The
// redemption channel is revealed in both cases.
type ClaimResult struct {
	Granted        bool                `json:"granted"`
	AlreadyClaimed bool                `json:"already_claimed"`
	Claim          *models.RewardClaim `json:"claim"`
	Redeem         RedeemInfo          `json:"redeem"`
}

// Service evaluates reward eligibility and grants one-time claims.
type Service struct {
	comments repositories.CommentRepository
	rewards  repositories.RewardRepository
	users    repositories.UserRepository
	posts    repositories.PostRepository
	redeem   RedeemInfo
	logger   *zap.Logger
}

// NewService creates a new reward service
func NewService(
	comments repositories.CommentRepository,
	rewards repositories.RewardRepository,
	users repositories.UserRepository,
	posts repositories.PostRepository,
	redeem RedeemInfo,
	logger *zap.Logger,
) *Service {
	return &Service{
		comments: comments,
		rewards:  rewards,
		users:    users,
		posts:    posts,
		redeem:   redeem,
		logger:   logger,
	}
}

// eligible applies the participation rule: every section at the minimum and
// the overall total at the minimum.
func eligible(counts map[int]int) bool {
	total := 0
	for ord := models.SectionMin; ord <= models.SectionMax; ord++ {
		if counts[ord] < perSectionMin {
			return false
		}
		total += counts[ord]
	}
	return total >= totalMin
}

// GetStatus reports the user's per-section progress, eligibility and claim
// state. Redemption details are only included once a claim exists.
func (s *Service) GetStatus(ctx context.Context, userID, postID int64) (*Status, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	counts, err := s.comments.CountBySection(ctx, userID, postID)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to count comments", err)
	}

	status := &Status{
		Counts:        counts,
		PerSectionMin: perSectionMin,
		TotalMin:      totalMin,
		Eligible:      eligible(counts),
	}

	claim, err := s.rewards.GetClaimByUserID(ctx, userID)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to load reward claim", err)
	}
	if claim != nil {
		status.Claimed = true
		status.ClaimedAt = &claim.ClaimedAt
		redeem := s.redeem
		status.Redeem = &redeem
	}

	return status, nil
}

// Claim grants the one-time reward. Claiming is idempotent: a repeat call
// reports already_claimed over the existing grant instead of inserting. The
// unique user_id constraint resolves concurrent first claims, so exactly one
// row ever exists per user.
func (s *Service) Claim(ctx context.Context, userID, postID int64) (*ClaimResult, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	existing, err := s.rewards.GetClaimByUserID(ctx, userID)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to load reward claim", err)
	}
	if existing != nil {
		return s.repeatClaim(existing), nil
	}

	counts, err := s.comments.CountBySection(ctx, userID, postID)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to count comments", err)
	}
	if !eligible(counts) {
		return nil, services.NewDomainError(services.ErrorTypeForbidden,
			"reward requirements not met", nil).WithDetail("counts", counts)
	}

	claim := &models.RewardClaim{
		UserID:    userID,
		PostID:    postID,
		Status:    models.RewardClaimStatusGranted,
		ClaimedAt: time.Now(),
	}
	if err := s.rewards.CreateClaim(ctx, claim); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// Lost the race to a concurrent claim; the stored grant wins.
			existing, err := s.rewards.GetClaimByUserID(ctx, userID)
			if err != nil {
				return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to load reward claim", err)
			}
			return s.repeatClaim(existing), nil
		}
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to create reward claim", err)
	}

	s.logger.Info("reward claim granted",
		zap.Int64("user_id", userID),
		zap.Int64("post_id", postID))

	return &ClaimResult{Granted: true, Claim: claim, Redeem: s.redeem}, nil
}

func (s *Service) repeatClaim(claim *models.RewardClaim) *ClaimResult {
	return &ClaimResult{AlreadyClaimed: true, Claim: claim, Redeem: s.redeem}
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrUserNotFound
		}
		return services.NewDomainError(services.ErrorTypeInternal, "failed to load user", err)
	}
	return nil
}

func (s *Service) requirePost(ctx context.Context, postID int64) error {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrPostNotFound
		}
		return services.NewDomainError(services.ErrorTypeInternal, "failed to load post", err)
	}
	return nil
}
