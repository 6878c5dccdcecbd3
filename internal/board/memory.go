// internal/board/memory.go
package board

import (
	"context"
	"sync"
	"time"

	"jobboard-agent/internal/common/logger"
)

// Listener receives a snapshot of the board after every change.
type Listener func(jobs []Job)

// MemoryStore is an in-process board state container. Writers are serialized;
// the last write wins.
type MemoryStore struct {
	mu        sync.RWMutex
	jobs      []Job
	listeners map[int]Listener
	nextSub   int
}

func NewMemoryStore(initial []Job) *MemoryStore {
	s := &MemoryStore{listeners: make(map[int]Listener)}
	s.jobs = cloneJobs(initial)
	sortByRecent(s.jobs)
	return s
}

// Snapshot returns a copy of the current board.
func (s *MemoryStore) Snapshot() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneJobs(s.jobs)
}

// Replace swaps the whole board.
func (s *MemoryStore) Replace(jobs []Job) {
	s.mu.Lock()
	s.jobs = cloneJobs(jobs)
	sortByRecent(s.jobs)
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers fn and returns a func that removes it.
func (s *MemoryStore) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *MemoryStore) notify() {
	s.mu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	snap := cloneJobs(s.jobs)
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(cloneJobs(snap))
	}
}

func (s *MemoryStore) List(_ context.Context) ([]Job, error) {
	return s.Snapshot(), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jobs {
		if j.ID == id {
			c := j.Clone()
			return &c, nil
		}
	}
	return nil, ErrJobNotFound
}

func (s *MemoryStore) Save(_ context.Context, job Job) error {
	s.mu.Lock()
	replaced := false
	for i := range s.jobs {
		if s.jobs[i].ID == job.ID {
			s.jobs[i] = job.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		s.jobs = append(s.jobs, job.Clone())
	}
	sortByRecent(s.jobs)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrJobNotFound
	}
	s.jobs = append(s.jobs[:idx], s.jobs[idx+1:]...)
	s.mu.Unlock()

	s.notify()
	return nil
}

func cloneJobs(jobs []Job) []Job {
	out := make([]Job, len(jobs))
	for i, j := range jobs {
		out[i] = j.Clone()
	}
	return out
}

// LogChanges debug-logs the board size after every change.
func LogChanges(s *MemoryStore, log logger.Logger) (unsubscribe func()) {
	return s.Subscribe(func(jobs []Job) {
		log.Debug("board changed", map[string]interface{}{"jobs": len(jobs)})
	})
}

// ReloadSeed replaces the whole board with the jobs in a seed file. The board
// is left untouched when the file cannot be loaded.
func (s *MemoryStore) ReloadSeed(path string, now time.Time) (int, error) {
	jobs, err := LoadSeedFile(path, now)
	if err != nil {
		return 0, err
	}
	s.Replace(jobs)
	return len(jobs), nil
}
