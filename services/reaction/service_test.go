package reaction

import (
	"context"
	"fmt"
	"testing"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"github.com/polite-web/polite-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReactionRepo struct {
	active map[string]bool // commentID:user:type -> active
}

func key(commentID int64, userID string, rtype models.ReactionType) string {
	return fmt.Sprintf("%d:%s:%s", commentID, userID, rtype)
}

func (f *fakeReactionRepo) Toggle(_ context.Context, commentID int64, userID string, rtype models.ReactionType) (bool, error) {
	if f.active == nil {
		f.active = map[string]bool{}
	}
	k := key(commentID, userID, rtype)
	f.active[k] = !f.active[k]
	return f.active[k], nil
}

func (f *fakeReactionRepo) Status(_ context.Context, commentID int64, userID string) (*models.ReactionStatus, error) {
	status := &models.ReactionStatus{CommentID: commentID}
	if f.active[key(commentID, userID, models.ReactionTypeLike)] {
		status.LikeCount = 1
		status.LikedByMe = true
	}
	if f.active[key(commentID, userID, models.ReactionTypeHate)] {
		status.HateCount = 1
		status.HatedByMe = true
	}
	return status, nil
}

type fakeCommentLookup struct {
	existing map[int64]bool
}

func (f *fakeCommentLookup) Create(_ context.Context, _ *models.Comment) error { return nil }
func (f *fakeCommentLookup) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	if !f.existing[id] {
		return nil, repositories.ErrNotFound
	}
	return &models.Comment{ID: id}, nil
}
func (f *fakeCommentLookup) ListBySubPost(_ context.Context, _ int64, _ bool) ([]*models.Comment, error) {
	return nil, nil
}
func (f *fakeCommentLookup) FirstPostID(_ context.Context, _ int64) (*int64, error) { return nil, nil }
func (f *fakeCommentLookup) CountBySection(_ context.Context, _, _ int64) (map[int]int, error) {
	return nil, nil
}
func (f *fakeCommentLookup) SoftDelete(_ context.Context, _ int64) (bool, error) {
	return false, repositories.ErrNotFound
}

func newService(existing ...int64) *Service {
	lookup := &fakeCommentLookup{existing: map[int64]bool{}}
	for _, id := range existing {
		lookup.existing[id] = true
	}
	return NewService(&fakeReactionRepo{}, lookup, zap.NewNop())
}

func TestToggleFlips(t *testing.T) {
	svc := newService(5)

	active, err := svc.Toggle(context.Background(), 5, "viewer-1", models.ReactionTypeLike)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = svc.Toggle(context.Background(), 5, "viewer-1", models.ReactionTypeLike)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestToggleValidation(t *testing.T) {
	svc := newService(5)

	_, err := svc.Toggle(context.Background(), 5, "  ", models.ReactionTypeLike)
	assert.True(t, services.IsValidationError(err))

	_, err = svc.Toggle(context.Background(), 5, "viewer-1", models.ReactionType("love"))
	assert.True(t, services.IsValidationError(err))

	_, err = svc.Toggle(context.Background(), 404, "viewer-1", models.ReactionTypeLike)
	assert.True(t, services.IsNotFoundError(err))
}

func TestStatusReflectsViewer(t *testing.T) {
	svc := newService(5)

	_, err := svc.Toggle(context.Background(), 5, "viewer-1", models.ReactionTypeHate)
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), 5, "viewer-1")
	require.NoError(t, err)
	assert.True(t, status.HatedByMe)
	assert.False(t, status.LikedByMe)
	assert.Equal(t, 1, status.HateCount)

	other, err := svc.Status(context.Background(), 5, "viewer-2")
	require.NoError(t, err)
	assert.False(t, other.HatedByMe)
}

func TestBatchStatusSkipsMissing(t *testing.T) {
	svc := newService(5, 6)

	statuses, err := svc.BatchStatus(context.Background(), []int64{5, 404, 6}, "viewer-1")
	require.NoError(t, err)

	require.Len(t, statuses, 2)
	assert.Equal(t, int64(5), statuses[0].CommentID)
	assert.Equal(t, int64(6), statuses[1].CommentID)
}
