package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/polite-web/polite-backend/internal/observability"
	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"github.com/polite-web/polite-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClassifier struct {
	scores map[string]float64
	calls  []string
	err    error
}

func (f *fakeClassifier) Classify(_ context.Context, text string, threshold float64) (bool, float64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.calls = append(f.calls, text)
	score := f.scores[text]
	return score > threshold, score, nil
}

type fakeRewriter struct {
	out   string
	calls int
	err   error
}

func (f *fakeRewriter) Rewrite(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakePostRepo struct {
	post *models.Post
	sub  *models.SubPost
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

func (f *fakePostRepo) GetSubPost(_ context.Context, postID int64, ord int) (*models.SubPost, error) {
	if f.sub == nil || f.sub.PostID != postID || f.sub.Ord != ord {
		return nil, repositories.ErrNotFound
	}
	return f.sub, nil
}

func (f *fakePostRepo) ListSubPosts(_ context.Context, _ int64) ([]*models.SubPost, error) {
	return []*models.SubPost{f.sub}, nil
}

type fakeCommentRepo struct {
	created     *models.Comment
	firstPostID *int64
	deleted     map[int64]bool
}

func (f *fakeCommentRepo) Create(_ context.Context, c *models.Comment) error {
	c.ID = 1
	f.created = c
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, _ int64) (*models.Comment, error) {
	return nil, repositories.ErrNotFound
}

func (f *fakeCommentRepo) ListBySubPost(_ context.Context, _ int64, _ bool) ([]*models.Comment, error) {
	if f.created == nil {
		return nil, nil
	}
	return []*models.Comment{f.created}, nil
}

func (f *fakeCommentRepo) FirstPostID(_ context.Context, _ int64) (*int64, error) {
	return f.firstPostID, nil
}

func (f *fakeCommentRepo) CountBySection(_ context.Context, _, _ int64) (map[int]int, error) {
	return map[int]int{1: 0, 2: 0, 3: 0}, nil
}

func (f *fakeCommentRepo) SoftDelete(_ context.Context, id int64) (bool, error) {
	if f.deleted == nil {
		return false, repositories.ErrNotFound
	}
	prev, ok := f.deleted[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	f.deleted[id] = true
	return prev, nil
}

type fakeInterventionRepo struct {
	events []*models.InterventionEvent
}

func (f *fakeInterventionRepo) Insert(_ context.Context, e *models.InterventionEvent) error {
	e.ID = int64(len(f.events) + 1)
	f.events = append(f.events, e)
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) Begin(_ context.Context) (repositories.Transaction, error) {
	return nil, errors.New("not supported")
}

func (fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, nil)
}

type fixture struct {
	svc           *Service
	classifier    *fakeClassifier
	rewriter      *fakeRewriter
	posts         *fakePostRepo
	comments      *fakeCommentRepo
	interventions *fakeInterventionRepo
	metrics       *observability.Metrics
}

func newFixture(mode models.PolicyMode, threshold float64) *fixture {
	f := &fixture{
		classifier: &fakeClassifier{scores: map[string]float64{}},
		rewriter:   &fakeRewriter{out: "polite version"},
		posts: &fakePostRepo{
			post: &models.Post{ID: 10, PolicyMode: mode, Threshold: threshold},
			sub:  &models.SubPost{ID: 100, PostID: 10, Ord: 2},
		},
		comments:      &fakeCommentRepo{},
		interventions: &fakeInterventionRepo{},
	}
	f.metrics = observability.NewMetrics()
	f.svc = NewService(f.posts, f.comments, f.interventions, fakeTxManager{},
		f.classifier, f.rewriter, f.metrics, zap.NewNop())
	return f
}

func baseRequest(text string) *SubmitRequest {
	return &SubmitRequest{PostID: 10, Section: 2, UserID: 7, TextOriginal: text}
}

func TestSubmitCleanOriginalPoliteMode(t *testing.T) {
	f := newFixture(models.PolicyModePoliteOneEdit, 0.5)
	f.classifier.scores["hello"] = 0.2

	c, err := f.svc.Submit(context.Background(), baseRequest("hello"))
	require.NoError(t, err)

	assert.Equal(t, models.FinalSourceOriginal, c.FinalSource)
	assert.True(t, c.SubmitSuccess)
	assert.False(t, c.WasEdited)
	require.NotNil(t, c.TextFinal)
	assert.Equal(t, "hello", *c.TextFinal)
	assert.Equal(t, 0, f.rewriter.calls, "clean text must not be rewritten")
	assert.Len(t, f.classifier.calls, 1)
	assert.NotNil(t, f.comments.created)
}

func TestSubmitForcedPoliteWithoutEdit(t *testing.T) {
	f := newFixture(models.PolicyModePoliteOneEdit, 0.5)
	f.classifier.scores["rude text"] = 0.8
	f.classifier.scores["polite version"] = 0.1

	c, err := f.svc.Submit(context.Background(), baseRequest("rude text"))
	require.NoError(t, err)

	assert.Equal(t, models.FinalSourcePolite, c.FinalSource)
	assert.True(t, c.SubmitSuccess)
	assert.False(t, c.WasEdited)
	assert.Equal(t, 1, f.rewriter.calls)
	require.NotNil(t, c.TextFinal)
	assert.Equal(t, "polite version", *c.TextFinal)
	require.NotNil(t, c.FinalLogit)
	assert.Equal(t, 0.1, *c.FinalLogit)
	assert.Equal(t, []string{"rude text", "polite version"}, f.classifier.calls)
}

func TestSubmitAcceptedEdit(t *testing.T) {
	f := newFixture(models.PolicyModePoliteOneEdit, 0.5)
	f.classifier.scores["rude text"] = 0.8
	f.classifier.scores["softer text"] = 0.3

	req := baseRequest("rude text")
	edit := "softer text"
	req.TextUserEdit = &edit

	c, err := f.svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.FinalSourceUserEdit, c.FinalSource)
	assert.True(t, c.WasEdited)
	assert.True(t, c.SubmitSuccess)
	require.NotNil(t, c.TextFinal)
	assert.Equal(t, "softer text", *c.TextFinal)
	require.NotNil(t, c.FinalLogit)
	assert.Equal(t, 0.3, *c.FinalLogit)
	require.NotNil(t, c.EditLogit)
	assert.Equal(t, 0.3, *c.EditLogit)

	// The polite rendition is still produced and stored, but never scored.
	assert.Equal(t, 1, f.rewriter.calls)
	require.NotNil(t, c.TextGeneratedPolite)
	assert.Equal(t, "polite version", *c.TextGeneratedPolite)
	assert.Equal(t, []string{"rude text", "softer text"}, f.classifier.calls)
}

func TestSubmitRejectedEditForcesPolite(t *testing.T) {
	f := newFixture(models.PolicyModePoliteOneEdit, 0.5)
	f.classifier.scores["rude text"] = 0.8
	f.classifier.scores["still rude"] = 0.7
	f.classifier.scores["polite version"] = 0.1

	req := baseRequest("rude text")
	edit := "still rude"
	req.TextUserEdit = &edit

	c, err := f.svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.FinalSourcePolite, c.FinalSource)
	assert.False(t, c.WasEdited, "forced polite must not claim the edit was accepted")
	assert.True(t, c.SubmitSuccess)
	require.NotNil(t, c.TextFinal)
	assert.Equal(t, "polite version", *c.TextFinal)
	require.NotNil(t, c.EditLogit)
	assert.Equal(t, 0.7, *c.EditLogit)
	require.NotNil(t, c.FinalLogit)
	assert.Equal(t, 0.1, *c.FinalLogit)
}

func TestSubmitEditScoreAtThresholdIsAccepted(t *testing.T) {
	f := newFixture(models.PolicyModePoliteOneEdit, 0.5)
	f.classifier.scores["rude text"] = 0.8
	f.classifier.scores["boundary edit"] = 0.5

	req := baseRequest("rude text")
	edit := "boundary edit"
	req.TextUserEdit = &edit

	c, err := f.svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.FinalSourceUserEdit, c.FinalSource)
	assert.True(t, c.WasEdited)
}

func TestSubmitPreGeneratedPoliteSkipsRewriter(t *testing.T) {
	f := newFixture(models.PolicyModePoliteOneEdit, 0.5)
	f.classifier.scores["rude text"] = 0.8
	f.classifier.scores["client suggestion"] = 0.2

	req := baseRequest("rude text")
	pre := "client suggestion"
	req.GeneratedPoliteText = &pre

	c, err := f.svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0, f.rewriter.calls)
	require.NotNil(t, c.TextFinal)
	assert.Equal(t, "client suggestion", *c.TextFinal)
}

func TestSubmitBlockMode(t *testing.T) {
	f := newFixture(models.PolicyModeBlock, 0.5)
	f.classifier.scores["rude text"] = 0.8

	c, err := f.svc.Submit(context.Background(), baseRequest("rude text"))
	require.NoError(t, err)

	assert.Equal(t, models.FinalSourceBlocked, c.FinalSource)
	assert.False(t, c.SubmitSuccess)
	assert.Nil(t, c.TextFinal, "blocked rows carry no final text")
	assert.Nil(t, c.FinalLogit)
	assert.Equal(t, 0, f.rewriter.calls)
	assert.NotNil(t, f.comments.created, "blocked outcomes are still persisted")
}

func TestSubmitNoFilterMode(t *testing.T) {
	f := newFixture(models.PolicyModeNoFilter, 0.5)
	f.classifier.scores["rude text"] = 0.99

	c, err := f.svc.Submit(context.Background(), baseRequest("rude text"))
	require.NoError(t, err)

	assert.Equal(t, models.FinalSourceNoFilter, c.FinalSource)
	assert.True(t, c.SubmitSuccess)
	require.NotNil(t, c.TextFinal)
	assert.Equal(t, "rude text", *c.TextFinal)
	assert.Equal(t, 0.99, c.OriginalLogit, "the score is recorded even when ignored")
	assert.Equal(t, 0, f.rewriter.calls)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(models.PolicyModeBlock, 0.5)

	_, err := f.svc.Submit(context.Background(), baseRequest("   "))
	assert.ErrorIs(t, err, services.ErrEmptyText)

	req := baseRequest("hello")
	req.Section = 4
	_, err = f.svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, services.ErrInvalidSection)

	req = baseRequest("hello")
	req.PostID = 999
	_, err = f.svc.Submit(context.Background(), req)
	assert.True(t, services.IsNotFoundError(err))
}

func TestSubmitUserLockedToFirstPost(t *testing.T) {
	f := newFixture(models.PolicyModeBlock, 0.5)
	other := int64(99)
	f.comments.firstPostID = &other

	_, err := f.svc.Submit(context.Background(), baseRequest("hello"))
	assert.True(t, services.IsForbiddenError(err))
	assert.Nil(t, f.comments.created)
}

func TestSubmitRecordsOutcomeMetrics(t *testing.T) {
	f := newFixture(models.PolicyModeBlock, 0.5)
	f.classifier.scores["hello"] = 0.1

	_, err := f.svc.Submit(context.Background(), baseRequest("hello"))
	require.NoError(t, err)

	snap := f.metrics.Snapshot()
	assert.Equal(t, int64(1), snap.SubmissionsByOutcome["original"])
}

func TestSubmitClassifierFailureAbortsBeforePersist(t *testing.T) {
	f := newFixture(models.PolicyModeBlock, 0.5)
	f.classifier.err = services.ErrInferenceUnavailable

	_, err := f.svc.Submit(context.Background(), baseRequest("hello"))
	assert.True(t, services.IsExternalError(err))
	assert.Nil(t, f.comments.created, "no row may be written on inference failure")
	assert.Equal(t, int64(1), f.metrics.Snapshot().InferenceFailures)
}

func TestSuggestPoliteMode(t *testing.T) {
	f := newFixture(models.PolicyModePoliteOneEdit, 0.5)
	f.classifier.scores["rude text"] = 0.8

	res, err := f.svc.Suggest(context.Background(), &SuggestRequest{PostID: 10, Section: 2, Text: "rude text"})
	require.NoError(t, err)

	assert.True(t, res.OverThreshold)
	require.NotNil(t, res.PoliteText)
	assert.Equal(t, "polite version", *res.PoliteText)
	assert.Nil(t, res.Logit)
	assert.Nil(t, f.comments.created, "suggest must not persist anything")
}

func TestSuggestBlockMode(t *testing.T) {
	f := newFixture(models.PolicyModeBlock, 0.5)
	f.classifier.scores["rude text"] = 0.8

	res, err := f.svc.Suggest(context.Background(), &SuggestRequest{PostID: 10, Section: 2, Text: "rude text"})
	require.NoError(t, err)

	assert.True(t, res.OverThreshold)
	assert.Nil(t, res.PoliteText)
	assert.Nil(t, res.Logit, "block previews do not expose the raw score")
	assert.Equal(t, 0, f.rewriter.calls)
	assert.Contains(t, res.Message, "blocked")
}

func TestSuggestNoFilterExposesScore(t *testing.T) {
	f := newFixture(models.PolicyModeNoFilter, 0.5)
	f.classifier.scores["rude text"] = 0.8

	res, err := f.svc.Suggest(context.Background(), &SuggestRequest{PostID: 10, Section: 2, Text: "rude text"})
	require.NoError(t, err)

	require.NotNil(t, res.Logit)
	assert.Equal(t, 0.8, *res.Logit)
	assert.Equal(t, 0, f.rewriter.calls)
}

func TestSuggestRejectsUnknownSection(t *testing.T) {
	f := newFixture(models.PolicyModeBlock, 0.5)
	f.posts.sub = nil

	_, err := f.svc.Suggest(context.Background(), &SuggestRequest{PostID: 10, Section: 2, Text: "hello"})
	assert.ErrorIs(t, err, services.ErrSectionNotFound)
}

func TestDeleteCommentIdempotent(t *testing.T) {
	f := newFixture(models.PolicyModeBlock, 0.5)
	f.comments.deleted = map[int64]bool{5: false}

	already, err := f.svc.DeleteComment(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, already)

	already, err = f.svc.DeleteComment(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, already)

	_, err = f.svc.DeleteComment(context.Background(), 404)
	assert.True(t, services.IsNotFoundError(err))
}

func TestLogInterventionDefaults(t *testing.T) {
	f := newFixture(models.PolicyModeBlock, 0.5)

	event := &models.InterventionEvent{UserID: 7, PostID: 10, Section: 2, OriginalLogit: 0.8, ThresholdApplied: 0.5}
	require.NoError(t, f.svc.LogIntervention(context.Background(), event))

	assert.NotEmpty(t, event.TempUUID)
	assert.Equal(t, 1, event.AttemptNo)
	assert.Equal(t, "none", event.ActionApplied)
	assert.Equal(t, models.DecisionRuleNone, event.DecisionRuleApplied)
	assert.Equal(t, models.FinalChoiceHintUnknown, event.FinalChoiceHint)
	assert.False(t, event.ShownAt.IsZero())
	assert.Len(t, f.interventions.events, 1)
}
