package post

import (
	"context"
	"testing"

	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"github.com/polite-web/polite-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePostRepo struct {
	post *models.Post
	subs []*models.SubPost
}

func (f *fakePostRepo) GetByID(_ context.Context, id int64) (*models.Post, error) {
	if f.post == nil || f.post.ID != id {
		return nil, repositories.ErrNotFound
	}
	return f.post, nil
}

func (f *fakePostRepo) List(_ context.Context) ([]*models.Post, error) {
	return []*models.Post{f.post}, nil
}

func (f *fakePostRepo) GetSubPost(_ context.Context, _ int64, _ int) (*models.SubPost, error) {
	return nil, repositories.ErrNotFound
}

func (f *fakePostRepo) ListSubPosts(_ context.Context, _ int64) ([]*models.SubPost, error) {
	return f.subs, nil
}

func TestEnterWithCorrectPassword(t *testing.T) {
	repo := &fakePostRepo{
		post: &models.Post{ID: 10, PasswordHash: HashPassword("sesame")},
		subs: []*models.SubPost{{ID: 1, PostID: 10, Ord: 1}, {ID: 2, PostID: 10, Ord: 2}},
	}
	svc := NewService(repo, zap.NewNop())

	subs, err := svc.Enter(context.Background(), 10, "sesame")
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestEnterWithWrongPassword(t *testing.T) {
	repo := &fakePostRepo{post: &models.Post{ID: 10, PasswordHash: HashPassword("sesame")}}
	svc := NewService(repo, zap.NewNop())

	_, err := svc.Enter(context.Background(), 10, "guess")
	assert.True(t, services.IsForbiddenError(err))
}

func TestEnterOpenPost(t *testing.T) {
	repo := &fakePostRepo{
		post: &models.Post{ID: 10},
		subs: []*models.SubPost{{ID: 1, PostID: 10, Ord: 1}},
	}
	svc := NewService(repo, zap.NewNop())

	subs, err := svc.Enter(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestEnterUnknownPost(t *testing.T) {
	svc := NewService(&fakePostRepo{}, zap.NewNop())

	_, err := svc.Enter(context.Background(), 404, "sesame")
	assert.True(t, services.IsNotFoundError(err))
}
