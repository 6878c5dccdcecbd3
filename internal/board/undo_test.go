package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUndoStore_TakeOnce(t *testing.T) {
	clock := &testClock{now: baseTime()}
	store := NewMemoryUndoStore()
	store.now = clock.Now
	ctx := context.Background()

	_, err := store.Take(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)

	require.NoError(t, store.Put(ctx, Snapshot{Label: "move", JobID: "1"}, 5*time.Second))
	clock.Advance(4 * time.Second)

	snap, err := store.Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", snap.JobID)

	_, err = store.Take(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestMemoryUndoStore_LastPutWins(t *testing.T) {
	store := NewMemoryUndoStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Snapshot{JobID: "1"}, time.Minute))
	require.NoError(t, store.Put(ctx, Snapshot{JobID: "2"}, time.Minute))

	snap, err := store.Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", snap.JobID)
}

func TestMemoryUndoStore_Expires(t *testing.T) {
	clock := &testClock{now: baseTime()}
	store := NewMemoryUndoStore()
	store.now = clock.Now
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Snapshot{JobID: "1"}, 5*time.Second))
	clock.Advance(5 * time.Second)

	_, err := store.Take(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestRedisUndoStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisUndoStore(client, "test")
	ctx := context.Background()

	before := createJob("1", "Acme Corp", "Backend", "Applied", baseTime())
	require.NoError(t, store.Put(ctx, Snapshot{Label: "move", JobID: "1", Before: &before}, 5*time.Second))
	assert.True(t, mr.Exists("test:agent:undo:last"))

	snap, err := store.Take(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.Before)
	assert.Equal(t, "Acme Corp", snap.Before.Company)
	assert.False(t, mr.Exists("test:agent:undo:last"))

	_, err = store.Take(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestRedisUndoStore_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisUndoStore(client, "")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Snapshot{JobID: "1"}, 5*time.Second))
	mr.FastForward(6 * time.Second)

	_, err := store.Take(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestRedisUndoStore_PutFailsWhenServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	store := NewRedisUndoStore(client, "")
	err := store.Put(context.Background(), Snapshot{JobID: "1"}, time.Second)
	assert.ErrorIs(t, err, ErrUndoStoreFailed)
}

func TestRedisUndoStore_TakeErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisUndoStore(db, "")
	ctx := context.Background()

	mock.ExpectGetDel(defaultUndoKey).SetErr(errors.New("READONLY replica"))
	_, err := store.Take(ctx)
	assert.ErrorIs(t, err, ErrUndoStoreFailed)

	mock.ExpectGetDel(defaultUndoKey).SetVal("{not json")
	_, err = store.Take(ctx)
	assert.ErrorIs(t, err, ErrUndoStoreFailed)

	mock.ExpectGetDel(defaultUndoKey).RedisNil()
	_, err = store.Take(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)

	assert.NoError(t, mock.ExpectationsWereMet())
}
