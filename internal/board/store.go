// internal/board/store.go
package board

import (
	"context"
	"errors"
	"sort"
)

var (
	ErrJobNotFound = errors.New("JOB_NOT_FOUND")
	ErrStoreFailed = errors.New("BOARD_STORE_FAILED")
)

// Store persists jobs. List returns the most recently updated job first;
// that order decides which job a company lookup hits.
type Store interface {
	List(ctx context.Context) ([]Job, error)
	Get(ctx context.Context, id string) (*Job, error)
	Save(ctx context.Context, job Job) error
	Delete(ctx context.Context, id string) error
}

func sortByRecent(jobs []Job) {
	sort.SliceStable(jobs, func(i, k int) bool {
		if !jobs[i].UpdatedAt.Equal(jobs[k].UpdatedAt) {
			return jobs[i].UpdatedAt.After(jobs[k].UpdatedAt)
		}
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
}
