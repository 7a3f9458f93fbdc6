package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Extra154/spectra-data-server/internal/common"
	"github.com/Extra154/spectra-data-server/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT seq, payload, updated_at, client_updated_at FROM records`).
		WithArgs("chats", "c1", "m1").
		WillReturnRows(sqlmock.NewRows([]string{"seq", "payload", "updated_at", "client_updated_at"}).
			AddRow(int64(3), []byte(`{"senderName":"a","recName":"b"}`), int64(2000), int64(1900)))

	rec, err := repo.Get(context.Background(), "chats", "c1", "m1")
	require.NoError(t, err)
	assert.Equal(t, &models.Record{
		Collection: "chats", ContainerID: "c1", ID: "m1",
		Seq: 3, UpdatedAt: 2000, ClientUpdatedAt: 1900,
		Payload: json.RawMessage(`{"senderName":"a","recName":"b"}`),
	}, rec)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT seq`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "chats", "c1", "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`INSERT INTO records .* ON CONFLICT \(collection, container_id, id\) DO UPDATE SET`).
		WithArgs("providers", "", "p1", int64(9), []byte(`{"username":"x"}`), int64(5000), int64(4000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.Record{
		Collection: "providers", ID: "p1", Seq: 9,
		UpdatedAt: 5000, ClientUpdatedAt: 4000,
		Payload: json.RawMessage(`{"username":"x"}`),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr string
	}{
		{
			name: "exec error",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO records`).WillReturnError(errors.New("down"))
			},
			wantErr: "db error: down",
		},
		{
			name: "rows affected error",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO records`).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))
			},
			wantErr: "rows affected error: rows-err",
		},
		{
			name: "no row written",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO records`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: "unexpected rows affected: 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			tt.setup(mock)
			err := repo.Upsert(context.Background(), &models.Record{Collection: "chats", ContainerID: "c", ID: "m"})
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestSelectAfter(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT id, seq, payload, updated_at, client_updated_at FROM records .* seq > \$3 ORDER BY seq ASC`).
		WithArgs("chats", "c1", int64(4), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "seq", "payload", "updated_at", "client_updated_at"}).
			AddRow("m5", int64(5), []byte(`{}`), int64(10), int64(9)).
			AddRow("m6", int64(6), []byte(`{}`), int64(11), int64(10)))

	got, err := repo.SelectAfter(context.Background(), "chats", "c1", 4, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m5", got[0].ID)
	assert.Equal(t, int64(6), got[1].Seq)
	assert.Equal(t, "c1", got[1].ContainerID)
}

func TestSelectAfter_NegativeLimitMeansAll(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT id, seq`).
		WithArgs("chats", "c1", int64(0), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "seq", "payload", "updated_at", "client_updated_at"}))

	got, err := repo.SelectAfter(context.Background(), "chats", "c1", 0, -5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectAfter_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT id, seq`).WillReturnError(errors.New("timeout"))

	_, err := repo.SelectAfter(context.Background(), "chats", "c1", 0, 0)
	require.ErrorContains(t, err, "failed to select records")
}
