// internal/board/undo.go
package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNothingToUndo   = errors.New("UNDO_UNAVAILABLE")
	ErrUndoStoreFailed = errors.New("UNDO_STORE_FAILED")
)

// Snapshot is a job as it was before one mutation. A nil Before means the
// mutation created the job, so undoing it deletes the job.
type Snapshot struct {
	Label   string    `json:"label"`
	JobID   string    `json:"jobId"`
	Before  *Job      `json:"before,omitempty"`
	TakenAt time.Time `json:"takenAt"`
}

// UndoStore holds at most one snapshot. Put replaces any previous snapshot;
// Take returns it once and clears it.
type UndoStore interface {
	Put(ctx context.Context, snap Snapshot, ttl time.Duration) error
	Take(ctx context.Context) (*Snapshot, error)
}

// MemoryUndoStore keeps the snapshot in process.
type MemoryUndoStore struct {
	mu      sync.Mutex
	snap    *Snapshot
	expires time.Time
	now     func() time.Time
}

func NewMemoryUndoStore() *MemoryUndoStore {
	return &MemoryUndoStore{now: time.Now}
}

func (m *MemoryUndoStore) Put(_ context.Context, snap Snapshot, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &snap
	m.expires = m.now().Add(ttl)
	return nil
}

func (m *MemoryUndoStore) Take(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snap
	m.snap = nil
	if snap == nil || !m.now().Before(m.expires) {
		return nil, ErrNothingToUndo
	}
	return snap, nil
}

const defaultUndoKey = "agent:undo:last"

// RedisUndoStore keeps the snapshot under one key and lets Redis expire it.
type RedisUndoStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisUndoStore(client redis.Cmdable, prefix string) *RedisUndoStore {
	key := defaultUndoKey
	if prefix != "" {
		key = prefix + ":" + defaultUndoKey
	}
	return &RedisUndoStore{client: client, key: key}
}

func (r *RedisUndoStore) Put(ctx context.Context, snap Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrUndoStoreFailed, err)
	}
	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUndoStoreFailed, err)
	}
	return nil
}

func (r *RedisUndoStore) Take(ctx context.Context) (*Snapshot, error) {
	val, err := r.client.GetDel(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNothingToUndo
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndoStoreFailed, err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUndoStoreFailed, err)
	}
	return &snap, nil
}
