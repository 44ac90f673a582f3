package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/polite-web/polite-backend/models"
	"github.com/polite-web/polite-backend/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockRepo(t *testing.T) (repositories.CommentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	wrapped := &DB{DB: db, logger: zap.NewNop()}
	repo := NewCommentRepository(wrapped, zap.NewNop())

	return repo, mock, func() { db.Close() }
}

func commentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "post_id", "sub_post_id", "article_ord", "parent_comment_id",
		"text_original", "text_generated_polite", "text_user_edit", "text_final",
		"final_source", "was_edited",
		"original_logit", "edit_logit", "final_logit", "threshold_applied",
		"attempts_count", "submit_success",
		"created_at", "updated_at", "is_deleted", "deleted_at",
	})
}

func TestCommentRepositoryCreate(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	final := "nice text"
	comment := &models.Comment{
		UserID:           7,
		PostID:           10,
		SubPostID:        ptrInt64(100),
		Section:          2,
		TextOriginal:     "nice text",
		TextFinal:        &final,
		FinalSource:      models.FinalSourceOriginal,
		OriginalLogit:    0.1,
		FinalLogit:       ptrFloat64(0.1),
		ThresholdApplied: 0.5,
		AttemptsCount:    1,
		SubmitSuccess:    true,
		CreatedAt:        time.Now(),
	}

	mock.ExpectQuery("INSERT INTO comments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(33)))

	err := repo.Create(context.Background(), comment)
	require.NoError(t, err)
	assert.Equal(t, int64(33), comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryGetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		now := time.Now()
		rows := commentRows().AddRow(
			int64(33), int64(7), int64(10), int64(100), 2, nil,
			"nice text", nil, nil, "nice text",
			"original", false,
			0.1, nil, 0.1, 0.5,
			1, true,
			now, nil, false, nil,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM comments WHERE id = $1")).
			WithArgs(int64(33)).
			WillReturnRows(rows)

		got, err := repo.GetByID(context.Background(), 33)
		require.NoError(t, err)
		assert.Equal(t, int64(33), got.ID)
		assert.Equal(t, models.FinalSourceOriginal, got.FinalSource)
		assert.Equal(t, "nice text", got.TextOriginal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found maps to ErrNotFound", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta("FROM comments WHERE id = $1")).
			WithArgs(int64(999)).
			WillReturnRows(commentRows())

		_, err := repo.GetByID(context.Background(), 999)
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCommentRepositoryListBySubPost(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	now := time.Now()
	rows := commentRows().
		AddRow(int64(1), int64(7), int64(10), int64(100), 2, nil,
			"first", nil, nil, "first", "original", false,
			0.1, nil, 0.1, 0.5, 1, true, now, nil, false, nil).
		AddRow(int64(2), int64(8), int64(10), int64(100), 2, nil,
			"second", nil, nil, "second", "original", false,
			0.2, nil, 0.2, 0.5, 1, true, now, nil, false, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE sub_post_id = $1")).
		WithArgs(int64(100), false).
		WillReturnRows(rows)

	comments, err := repo.ListBySubPost(context.Background(), 100, false)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, int64(1), comments[0].ID)
	assert.Equal(t, int64(2), comments[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryFirstPostID(t *testing.T) {
	t.Run("returns first post", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT post_id")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"post_id"}).AddRow(int64(10)))

		postID, err := repo.FirstPostID(context.Background(), 7)
		require.NoError(t, err)
		require.NotNil(t, postID)
		assert.Equal(t, int64(10), *postID)
	})

	t.Run("nil when user has no comments", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT post_id")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"post_id"}))

		postID, err := repo.FirstPostID(context.Background(), 7)
		require.NoError(t, err)
		assert.Nil(t, postID)
	})
}

func TestCommentRepositoryCountBySection(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	rows := sqlmock.NewRows([]string{"article_ord", "count"}).
		AddRow(1, 4).
		AddRow(3, 2)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY article_ord")).
		WithArgs(int64(7), int64(10)).
		WillReturnRows(rows)

	counts, err := repo.CountBySection(context.Background(), 7, 10)
	require.NoError(t, err)

	// Sections the user never commented on still appear, zero-valued.
	assert.Equal(t, map[int]int{1: 4, 2: 0, 3: 2}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositorySoftDelete(t *testing.T) {
	t.Run("deletes a live comment", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT is_deleted FROM comments WHERE id = $1")).
			WithArgs(int64(33)).
			WillReturnRows(sqlmock.NewRows([]string{"is_deleted"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE comments")).
			WithArgs(int64(33), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		alreadyDeleted, err := repo.SoftDelete(context.Background(), 33)
		require.NoError(t, err)
		assert.False(t, alreadyDeleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("idempotent on an already deleted comment", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT is_deleted FROM comments WHERE id = $1")).
			WithArgs(int64(33)).
			WillReturnRows(sqlmock.NewRows([]string{"is_deleted"}).AddRow(true))

		alreadyDeleted, err := repo.SoftDelete(context.Background(), 33)
		require.NoError(t, err)
		assert.True(t, alreadyDeleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown comment maps to ErrNotFound", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT is_deleted FROM comments WHERE id = $1")).
			WithArgs(int64(999)).
			WillReturnRows(sqlmock.NewRows([]string{"is_deleted"}))

		_, err := repo.SoftDelete(context.Background(), 999)
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
	})
}

func ptrInt64(v int64) *int64       { return &v }
func ptrFloat64(v float64) *float64 { return &v }
