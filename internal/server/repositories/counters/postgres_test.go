package counters

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Extra154/spectra-data-server/internal/common"
	"github.com/Extra154/spectra-data-server/internal/server/models"
)

var post = models.TargetRef{Kind: models.TargetPost, ID: "p1"}

var counterCols = []string{"like_num", "dislike_num", "view_count", "comment_num", "rating_sum", "rating_count", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestEnsure(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`INSERT INTO engagement_targets .* ON CONFLICT \(target_kind, target_id\) DO NOTHING`).
		WithArgs("posts", "p1", int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Ensure(context.Background(), post, 77))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLock(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT like_num, .* FROM engagement_targets .* FOR UPDATE`).
		WithArgs("posts", "p1").
		WillReturnRows(sqlmock.NewRows(counterCols).AddRow(2, 1, 10, 3, 9, 2, 100))

	c, err := repo.Lock(context.Background(), post)
	require.NoError(t, err)
	assert.Equal(t, &models.Counters{
		Target: post, Likes: 2, Dislikes: 1, Views: 10, Comments: 3,
		RatingSum: 9, RatingCount: 2, CreatedAt: 100,
	}, c)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT like_num`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), post)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestIncrement(t *testing.T) {
	tests := []struct {
		counter models.Counter
		column  string
	}{
		{models.CounterLikes, "like_num"},
		{models.CounterDislikes, "dislike_num"},
		{models.CounterViews, "view_count"},
		{models.CounterComments, "comment_num"},
	}
	for _, tt := range tests {
		t.Run(string(tt.counter), func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(`UPDATE engagement_targets SET ` + tt.column + ` = ` + tt.column + ` \+ \$3 .* RETURNING ` + tt.column).
				WithArgs("posts", "p1", int64(-1)).
				WillReturnRows(sqlmock.NewRows([]string{tt.column}).AddRow(int64(4)))

			v, err := repo.Increment(context.Background(), post, tt.counter, -1)
			require.NoError(t, err)
			assert.Equal(t, int64(4), v)
		})
	}
}

func TestIncrement_UnknownCounter(t *testing.T) {
	repo, _ := newRepoWithMock(t)
	_, err := repo.Increment(context.Background(), post, models.Counter("shares"), 1)
	require.Error(t, err)
}

func TestAddRating(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`UPDATE engagement_targets\s+SET rating_sum = rating_sum \+ \$3, rating_count = rating_count \+ 1`).
		WithArgs("posts", "p1", int64(5)).
		WillReturnRows(sqlmock.NewRows(counterCols).AddRow(0, 0, 0, 0, 5, 1, 100))

	c, err := repo.AddRating(context.Background(), post, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.RatingSum)
	assert.Equal(t, int64(1), c.RatingCount)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`DELETE FROM engagement_targets`).
		WithArgs("posts", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Delete(context.Background(), post)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDelete_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`DELETE FROM engagement_targets`).WillReturnError(errors.New("down"))

	_, err := repo.Delete(context.Background(), post)
	require.ErrorContains(t, err, "db error")
}

func TestDrift(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`CROSS JOIN LATERAL .* HAVING COUNT\(m\.user_id\) <> k\.stored`).
		WillReturnRows(sqlmock.NewRows([]string{"target_kind", "target_id", "counter", "stored", "count"}).
			AddRow("posts", "p1", "likes", int64(3), int64(2)))

	got, err := repo.Drift(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.CounterDrift{{Target: post, Counter: models.CounterLikes, Stored: 3, Actual: 2}}, got)
}
