package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houseoflove/pkg/database"
)

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewSQLite(db)
}

func exerciseLocalStorage(t *testing.T, s LocalStorage) {
	ctx := context.Background()

	_, ok, err := s.GetItem(ctx, "p1", KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem(ctx, "p1", KeyCart, `[1]`))
	require.NoError(t, s.SetItem(ctx, "p1", KeyCart, `[1,2]`))
	require.NoError(t, s.SetItem(ctx, "p2", KeyCart, `[]`))

	v, ok, err := s.GetItem(ctx, "p1", KeyCart)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, v)

	v, _, err = s.GetItem(ctx, "p2", KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.RemoveItem(ctx, "p1", KeyCart))
	_, ok, err = s.GetItem(ctx, "p1", KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.SetItem(ctx, "", KeyCart, "x"), ErrEmptyProfile)
}

func TestMemory(t *testing.T) {
	exerciseLocalStorage(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	exerciseLocalStorage(t, newSQLite(t))
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("HOUSEOFLOVE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HOUSEOFLOVE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	r := NewRedis(client)
	r.Prefix = "houseoflove:test:" + t.Name() + ":"
	exerciseLocalStorage(t, r)
}

type brokenStorage struct{ err error }

func (b brokenStorage) GetItem(context.Context, string, string) (string, bool, error) {
	return "", false, b.err
}
func (b brokenStorage) SetItem(context.Context, string, string, string) error { return b.err }
func (b brokenStorage) RemoveItem(context.Context, string, string) error      { return b.err }

func TestBucketJSON(t *testing.T) {
	ctx := context.Background()
	b := For(NewMemory(), "p1")

	var out []string
	ok, err := b.LoadJSON(ctx, KeyFavorites, &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.SaveJSON(ctx, KeyFavorites, []string{"1", "2"}))
	ok, err = b.LoadJSON(ctx, KeyFavorites, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, out)
}

func TestBucketParseFailure(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.SetItem(ctx, "p1", KeyBookState, "{not json"))

	var out map[string]any
	ok, err := For(mem, "p1").LoadJSON(ctx, KeyBookState, &out)
	assert.False(t, ok)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, OpLoad, perr.Op)
	assert.Equal(t, KeyBookState, perr.Key)
}

func TestBucketWriteFailure(t *testing.T) {
	quota := errors.New("quota exceeded")
	err := For(brokenStorage{err: quota}, "p1").SaveJSON(context.Background(), KeyCart, []int{1})

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "save", perr.Op)
	assert.ErrorIs(t, err, quota)
	assert.Contains(t, err.Error(), "may not survive a reload")
}
