package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Extra154/spectra-data-server/internal/common"
	"github.com/Extra154/spectra-data-server/internal/logging"
	"github.com/Extra154/spectra-data-server/internal/server/config"
	"github.com/Extra154/spectra-data-server/internal/server/models"
	"github.com/Extra154/spectra-data-server/internal/testutil"
)

func chat(id, text string, clientTS int64) *models.Record {
	return &models.Record{
		ID:              id,
		ClientUpdatedAt: clientTS,
		Payload:         json.RawMessage(fmt.Sprintf(`{"senderName":"ann","recName":"bob","sentText":%q}`, text)),
	}
}

func provider(id, username string) *models.Record {
	return &models.Record{ID: id, Payload: json.RawMessage(fmt.Sprintf(`{"username":%q,"latitude":1.5}`, username))}
}

func TestParseCursor(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"", 0, true},
		{"0", 0, true},
		{" 42 ", 42, true},
		{"-3", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseCursor(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func TestPush_FirstContactCreatesContainerOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.sync.Push(ctx, "chats", "ann-bob", []*models.Record{chat("m1", "hi", 0)})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Zero(t, res.Accepted)

	page, err := e.sync.Pull(ctx, "chats", "ann-bob", "0", 0)
	require.NoError(t, err)
	assert.Empty(t, page.Records)

	res, err = e.sync.Push(ctx, "chats", "ann-bob", []*models.Record{chat("m1", "hi", 0)})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 1, res.Accepted)
}

func TestPush_FlatCollectionIngestsImmediately(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.sync.Push(ctx, "providers", "", []*models.Record{provider("p1", "plumber"), provider("p2", "painter")})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 2, res.Accepted)

	page, err := e.sync.Pull(ctx, "providers", "", "", 0)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, int64(2), page.Cursor)
}

func TestPull_StrictlyAfterCursor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.sync.Push(ctx, "chats", "c", nil)
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err := e.sync.Upsert(ctx, "chats", "c", chat(fmt.Sprintf("m%d", i), "x", 0))
		require.NoError(t, err)
	}

	page, err := e.sync.Pull(ctx, "chats", "c", "2", 0)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "m3", page.Records[0].ID)
	assert.Equal(t, int64(3), page.Cursor)
	assert.Equal(t, e.clock.Now().UnixMilli(), page.ServerTime)

	page, err = e.sync.Pull(ctx, "chats", "c", "3", 0)
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Equal(t, int64(3), page.Cursor, "cursor is kept when nothing is delivered")
}

func TestPull_MalformedCursorMeansBeginning(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.sync.Push(ctx, "providers", "", []*models.Record{provider("p1", "a")})
	require.NoError(t, err)

	for _, cursor := range []string{"garbage", "-7"} {
		page, err := e.sync.Pull(ctx, "providers", "", cursor, 0)
		require.NoError(t, err)
		assert.Len(t, page.Records, 1, cursor)
	}
}

func TestPull_RepeatedPagesHaveNoGaps(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	var batch []*models.Record
	for i := 0; i < 10; i++ {
		batch = append(batch, provider(fmt.Sprintf("p%02d", i), "u"))
	}
	_, err := e.sync.Push(ctx, "providers", "", batch)
	require.NoError(t, err)

	seen := map[string]bool{}
	cursor := "0"
	last := int64(0)
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10, "pagination did not terminate")
		page, err := e.sync.Pull(ctx, "providers", "", cursor, 3)
		require.NoError(t, err)
		for _, r := range page.Records {
			require.Greater(t, r.Seq, last)
			last = r.Seq
			seen[r.ID] = true
		}
		cursor = fmt.Sprint(page.Cursor)
		if !page.HasMore {
			break
		}
	}
	assert.Len(t, seen, 10)
}

func TestPull_ServerCapAppliesToUnlimitedRequests(t *testing.T) {
	e := newEnv(t, func(c *config.Config) { c.PullLimit = 2 })
	ctx := context.Background()
	_, err := e.sync.Push(ctx, "providers", "", []*models.Record{provider("a", "a"), provider("b", "b"), provider("c", "c")})
	require.NoError(t, err)

	page, err := e.sync.Pull(ctx, "providers", "", "", 0)
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)
	assert.True(t, page.HasMore)

	page, err = e.sync.Pull(ctx, "providers", "", "", 50)
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)
}

func TestUpsert_LastWriterWinsIsMonotonic(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.sync.Upsert(ctx, "chats", "c", chat("m1", "v1", 0))
	require.NoError(t, err)
	require.True(t, first.Accepted)
	t1 := first.Record.UpdatedAt

	e.clock.Advance(time.Minute)
	stale, err := e.sync.Upsert(ctx, "chats", "c", chat("m1", "offline edit", t1-1))
	require.NoError(t, err)
	assert.False(t, stale.Accepted)
	assert.Equal(t, t1, stale.Record.UpdatedAt)
	assert.JSONEq(t, string(first.Record.Payload), string(stale.Record.Payload))

	fresh, err := e.sync.Upsert(ctx, "chats", "c", chat("m1", "v2", t1))
	require.NoError(t, err)
	assert.True(t, fresh.Accepted)
	assert.Greater(t, fresh.Record.UpdatedAt, t1)
	assert.Greater(t, fresh.Record.Seq, first.Record.Seq)

	again, err := e.sync.Upsert(ctx, "chats", "c", chat("m1", "late", t1))
	require.NoError(t, err)
	assert.False(t, again.Accepted, "a stamp older than the latest accepted write is rejected")
}

func TestUpsert_ClockStepBackKeepsStamp(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.sync.Upsert(ctx, "providers", "", provider("p1", "a"))
	require.NoError(t, err)

	e.clock.Advance(-time.Hour)
	second, err := e.sync.Upsert(ctx, "providers", "", &models.Record{
		ID: "p1", ClientUpdatedAt: first.Record.UpdatedAt, Payload: json.RawMessage(`{"username":"b"}`),
	})
	require.NoError(t, err)
	require.True(t, second.Accepted)
	assert.Equal(t, first.Record.UpdatedAt, second.Record.UpdatedAt)
}

func TestUpsert_GeneratesMissingID(t *testing.T) {
	e := newEnv(t)
	res, err := e.sync.Upsert(context.Background(), "providers", "", provider("", "a"))
	require.NoError(t, err)
	assert.Equal(t, "id-1", res.Record.ID)
}

func TestPush_RejectsInvalidInputBeforeStore(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		collection string
		container  string
		batch      []*models.Record
		field      string
	}{
		{"unknown collection", "posts", "", nil, "collection"},
		{"chat without container", "chats", "", nil, "containerId"},
		{"container with slash", "chats", "a/b", nil, "containerId"},
		{"flat collection with container", "providers", "x", nil, "containerId"},
		{"unknown payload field", "providers", "", []*models.Record{{ID: "p", Payload: json.RawMessage(`{"username":"a","rating":5}`)}}, "records[0].payload"},
		{"missing required field", "chats", "c", []*models.Record{{ID: "m", Payload: json.RawMessage(`{"senderName":"a"}`)}}, "records[0].payload"},
		{"bad id", "providers", "", []*models.Record{provider("a/b", "a")}, "records[0].id"},
		{"null record", "providers", "", []*models.Record{nil}, "records[0].record"},
		{"nul in container", "chats", "c\x00", nil, "containerId"},
		{"nul in id", "providers", "", []*models.Record{provider("a\x00b", "a")}, "records[0].id"},
		{"nul escape in payload", "chats", "c", []*models.Record{{ID: "m", Payload: json.RawMessage(`{"senderName":"a","recName":"b","sentText":"x\u0000y"}`)}}, "records[0].payload"},
		{"invalid utf8 in payload", "providers", "", []*models.Record{{ID: "p", Payload: json.RawMessage("{\"username\":\"\xff\"}")}}, "records[0].payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.sync.Push(ctx, tt.collection, tt.container, tt.batch)
			require.ErrorIs(t, err, common.ErrorInvalidInput)
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	ok, err := e.store.Repositories().Containers().Exists(ctx, "chats", "c")
	require.NoError(t, err)
	assert.False(t, ok, "invalid pushes must not touch the store")
}

func TestGet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.sync.Get(ctx, "chats", "c", "m1")
	require.ErrorIs(t, err, common.ErrorNotFound, "unknown container")

	_, err = e.sync.Push(ctx, "chats", "c", nil)
	require.NoError(t, err)
	_, err = e.sync.Get(ctx, "chats", "c", "m1")
	require.ErrorIs(t, err, common.ErrorNotFound, "unknown record")

	stored, err := e.sync.Upsert(ctx, "chats", "c", chat("m1", "hello", 0))
	require.NoError(t, err)
	got, err := e.sync.Get(ctx, "chats", "c", "m1")
	require.NoError(t, err)
	assert.Equal(t, stored.Record, got)

	_, err = e.sync.Upsert(ctx, "providers", "", provider("p1", "plumber"))
	require.NoError(t, err)
	got, err = e.sync.Get(ctx, "providers", "", "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"plumber","latitude":1.5}`, string(got.Payload))

	_, err = e.sync.Get(ctx, "providers", "", "")
	require.ErrorIs(t, err, common.ErrorInvalidInput)
	_, err = e.sync.Get(ctx, "providers", "x", "p1")
	require.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestPush_PartialSuccessKeepsEarlierResults(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.sync.Upsert(ctx, "chats", "c", chat("m1", "server", 0))
	require.NoError(t, err)

	res, err := e.sync.Push(ctx, "chats", "c", []*models.Record{
		chat("m1", "stale", first.Record.UpdatedAt-1),
		chat("m2", "new", 0),
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.False(t, res.Results[0].Accepted)
	assert.True(t, res.Results[1].Accepted)
	assert.Equal(t, 1, res.Accepted)
}

func TestUpsert_ConcurrentWritersGetDistinctContiguousSeqs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.sync.Push(ctx, "chats", "room", nil)
	require.NoError(t, err)

	const writers = 25
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.sync.Upsert(ctx, "chats", "room", chat(fmt.Sprintf("m%d", i), "x", 0))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	page, err := e.sync.Pull(ctx, "chats", "room", "0", 0)
	require.NoError(t, err)
	require.Len(t, page.Records, writers)
	for i, r := range page.Records {
		assert.Equal(t, int64(i+1), r.Seq)
	}
}

func TestSync_StoreFailureIsUnavailable(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	s := NewSyncService(brokenManager{}, testutil.FixedClock(), testutil.NewStubIDGenerator(), cfg, logging.Nop{})

	_, err := s.Pull(context.Background(), "providers", "", "", 0)
	require.ErrorIs(t, err, common.ErrorStoreUnavailable)
	assert.True(t, isBoom(err))

	_, err = s.Pull(context.Background(), "nope", "", "", 0)
	require.ErrorIs(t, err, common.ErrorInvalidInput)
	assert.NotErrorIs(t, err, common.ErrorStoreUnavailable)
}
