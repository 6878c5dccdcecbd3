// internal/board/board.go
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/intent"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus = errors.New("INVALID_STATUS")
	ErrInvalidDate   = errors.New("INVALID_DATE")
	ErrEmptyNote     = errors.New("EMPTY_NOTE")
)

// DateLayout is the only follow-up date format accepted from commands.
const DateLayout = "2006-01-02"

type Options struct {
	UndoTTL      time.Duration
	FollowUpHour int
	Location     *time.Location
	Now          func() time.Time
}

// Board applies edits to the store and records an undo snapshot before each.
type Board struct {
	store  Store
	undo   UndoStore
	opts   Options
	logger logger.Logger
}

func NewBoard(store Store, undo UndoStore, opts Options, log logger.Logger) *Board {
	if opts.UndoTTL <= 0 {
		opts.UndoTTL = 5 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Board{
		store:  store,
		undo:   undo,
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "board"}),
	}
}

// Now is the board clock in the configured location.
func (b *Board) Now() time.Time {
	return b.opts.Now().In(b.opts.Location)
}

func (b *Board) List(ctx context.Context) ([]Job, error) {
	return b.store.List(ctx)
}

func (b *Board) Get(ctx context.Context, id string) (*Job, error) {
	return b.store.Get(ctx, id)
}

// FindByCompany returns the first job, in store order, whose normalized
// company contains the normalized query. It returns nil when nothing matches.
func (b *Board) FindByCompany(ctx context.Context, company string) (*Job, error) {
	q := intent.Normalize(company)
	if q == "" {
		return nil, nil
	}

	jobs, err := b.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		if strings.Contains(intent.Normalize(j.Company), q) {
			hit := j
			return &hit, nil
		}
	}
	return nil, nil
}

func (b *Board) Move(ctx context.Context, id string, to Status) (*Job, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	return b.mutate(ctx, id, "move", func(j *Job) error {
		j.Status = to
		return nil
	})
}

// AppendNote adds text below any existing notes, separated by a blank line.
func (b *Board) AppendNote(ctx context.Context, id, text string) (*Job, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyNote
	}
	return b.mutate(ctx, id, "note", func(j *Job) error {
		if j.Notes == "" {
			j.Notes = text
		} else {
			j.Notes = j.Notes + "\n\n" + text
		}
		return nil
	})
}

// SetFollowUp schedules a follow-up at the configured hour of date.
func (b *Board) SetFollowUp(ctx context.Context, id, date string) (*Job, error) {
	at, err := b.FollowUpTime(date)
	if err != nil {
		return nil, err
	}
	return b.mutate(ctx, id, "followup", func(j *Job) error {
		j.FollowUpAt = &at
		return nil
	})
}

// FollowUpTime parses a YYYY-MM-DD date into the follow-up instant.
func (b *Board) FollowUpTime(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), b.opts.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), b.opts.FollowUpHour, 0, 0, 0, b.opts.Location), nil
}

// Create validates and stores a new job.
func (b *Board) Create(ctx context.Context, in NewJobInput) (*Job, error) {
	now := b.Now()
	job := Job{
		ID:         uuid.NewString(),
		Company:    strings.TrimSpace(in.Company),
		Role:       strings.TrimSpace(in.Role),
		Location:   strings.TrimSpace(in.Location),
		Link:       strings.TrimSpace(in.Link),
		Notes:      strings.TrimSpace(in.Notes),
		Status:     in.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
		FollowUpAt: in.FollowUpAt,
	}
	if job.Status == "" {
		job.Status = intent.StatusApplied
	}
	if err := ValidateJob(job); err != nil {
		return nil, err
	}

	b.remember(ctx, Snapshot{Label: "create", JobID: job.ID, TakenAt: now})
	if err := b.store.Save(ctx, job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (b *Board) Delete(ctx context.Context, id string) error {
	prev, err := b.store.Get(ctx, id)
	if err != nil {
		return err
	}
	b.remember(ctx, Snapshot{Label: "delete", JobID: id, Before: prev, TakenAt: b.Now()})
	return b.store.Delete(ctx, id)
}

// Undo restores the job touched by the last edit, once, within the TTL.
func (b *Board) Undo(ctx context.Context) (*Snapshot, error) {
	snap, err := b.undo.Take(ctx)
	if err != nil {
		return nil, err
	}

	if snap.Before == nil {
		if err := b.store.Delete(ctx, snap.JobID); err != nil && !errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
	} else if err := b.store.Save(ctx, *snap.Before); err != nil {
		return nil, err
	}

	b.logger.Info("edit undone", map[string]interface{}{
		"jobId": snap.JobID,
		"label": snap.Label,
	})
	return snap, nil
}

func (b *Board) mutate(ctx context.Context, id, label string, apply func(*Job) error) (*Job, error) {
	job, err := b.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := job.Clone()

	if err := apply(job); err != nil {
		return nil, err
	}
	job.UpdatedAt = b.Now()

	b.remember(ctx, Snapshot{Label: label, JobID: id, Before: &before, TakenAt: job.UpdatedAt})
	if err := b.store.Save(ctx, *job); err != nil {
		return nil, err
	}
	return job, nil
}

// remember stores the undo snapshot. A failing undo store never blocks the
// edit itself.
func (b *Board) remember(ctx context.Context, snap Snapshot) {
	if b.undo == nil {
		return
	}
	if err := b.undo.Put(ctx, snap, b.opts.UndoTTL); err != nil {
		b.logger.Warn("undo snapshot not stored", map[string]interface{}{
			"jobId": snap.JobID,
			"label": snap.Label,
			"error": err.Error(),
		})
	}
}
