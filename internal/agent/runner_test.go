package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"jobboard-agent/internal/board"
	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== Test Helper Functions =====

var testNow = time.Date(2025, 1, 8, 14, 30, 0, 0, time.UTC)

func sampleBoard() []board.Job {
	day := func(offset int) *time.Time {
		t := time.Date(2025, 1, 8+offset, 9, 0, 0, 0, time.UTC)
		return &t
	}
	return []board.Job{
		{ID: "acme", Company: "Acme Corp", Role: "Backend Engineer", Status: intent.StatusApplied,
			CreatedAt: testNow.Add(-time.Hour), UpdatedAt: testNow.Add(-time.Hour), FollowUpAt: day(-1)},
		{ID: "startup", Company: "Startup X", Role: "Frontend Engineer", Status: intent.StatusInterview,
			CreatedAt: testNow.Add(-2 * time.Hour), UpdatedAt: testNow.Add(-2 * time.Hour), FollowUpAt: day(0),
			Notes: "Portfolio reviewed."},
		{ID: "globex", Company: "Globex", Role: "SRE", Status: intent.StatusOffer,
			CreatedAt: testNow.Add(-3 * time.Hour), UpdatedAt: testNow.Add(-3 * time.Hour), FollowUpAt: day(3)},
	}
}

func createTestRunner(t *testing.T, opts Options) (*Runner, *board.MemoryStore) {
	t.Helper()
	store := board.NewMemoryStore(sampleBoard())
	b := board.NewBoard(store, board.NewMemoryUndoStore(), board.Options{
		UndoTTL:      5 * time.Second,
		FollowUpHour: 9,
		Location:     time.UTC,
		Now:          func() time.Time { return testNow },
	}, logger.NewTestLogger(t))
	return NewRunner(b, opts, logger.NewTestLogger(t)), store
}

func getJob(t *testing.T, store *board.MemoryStore, id string) *board.Job {
	t.Helper()
	job, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	return job
}

type brokenStore struct{ board.Store }

func (brokenStore) List(context.Context) ([]board.Job, error) {
	return nil, fmt.Errorf("%w: connection refused", board.ErrStoreFailed)
}

// ===== Summaries =====

func TestRunner_Today(t *testing.T) {
	r, _ := createTestRunner(t, Options{})

	res, err := r.Run(context.Background(), "bugün")
	require.NoError(t, err)
	assert.Equal(t, intent.IntentToday, res.Intent)
	assert.Equal(t, "Today snapshot", res.UI.Title)
	assert.Equal(t, []string{
		"Overdue follow-ups: 1",
		"Follow-ups today: 1",
		"In Interview: 1",
		"Top priorities:",
		"- Acme Corp (Backend Engineer)",
		"- Startup X (Frontend Engineer)",
		"- Startup X (Frontend Engineer)",
	}, res.UI.Lines)
	assert.NotEmpty(t, res.UI.Tips)
	assert.False(t, res.UndoAvailable)
}

func TestRunner_Today_EmptyBoard(t *testing.T) {
	store := board.NewMemoryStore(nil)
	b := board.NewBoard(store, board.NewMemoryUndoStore(), board.Options{}, logger.NewTestLogger(t))
	r := NewRunner(b, Options{}, logger.NewTestLogger(t))

	res, err := r.Run(context.Background(), "today")
	require.NoError(t, err)
	assert.Contains(t, res.UI.Lines, "No urgent items 🎉")
}

func TestRunner_WeeklyPlan(t *testing.T) {
	r, _ := createTestRunner(t, Options{})

	res, err := r.Run(context.Background(), "weekly plan")
	require.NoError(t, err)
	assert.Equal(t, "Weekly plan", res.UI.Title)
	assert.Equal(t, "Week 2025-01-08 → 2025-01-14", res.UI.Lines[0])
	assert.Contains(t, res.UI.Lines, "2025-01-08: Startup X (Frontend Engineer)")
	assert.Contains(t, res.UI.Lines, "2025-01-11: Globex (SRE)")
	assert.Contains(t, res.UI.Lines, "Total 3 · Interview rate 33% · Offer rate 33%")
}

func TestRunner_SummaryStoreFailure(t *testing.T) {
	b := board.NewBoard(brokenStore{}, board.NewMemoryUndoStore(), board.Options{}, logger.NewTestLogger(t))
	r := NewRunner(b, Options{}, logger.NewTestLogger(t))

	_, err := r.Run(context.Background(), "today")
	assert.ErrorIs(t, err, board.ErrStoreFailed)
}

// ===== Directives =====

func TestRunner_Move(t *testing.T) {
	r, store := createTestRunner(t, Options{})

	res, err := r.Run(context.Background(), "move acme to Interview")
	require.NoError(t, err)

	require.Len(t, res.Executions, 1)
	assert.True(t, res.Executions[0].Applied)
	assert.Equal(t, "acme", res.Executions[0].JobID)
	assert.True(t, res.UndoAvailable)
	assert.Equal(t, "Move executed ✅", res.UI.Title)
	assert.Equal(t, []string{"Acme Corp moved to Interview."}, res.UI.Lines)
	assert.Equal(t, intent.StatusInterview, getJob(t, store, "acme").Status)
}

func TestRunner_Followup(t *testing.T) {
	r, store := createTestRunner(t, Options{})

	res, err := r.Run(context.Background(), "followup Globex 2025-01-20")
	require.NoError(t, err)

	assert.Equal(t, "Follow-up set ✅", res.UI.Title)
	assert.Equal(t, []string{"Globex follow-up → 2025-01-20"}, res.UI.Lines)
	job := getJob(t, store, "globex")
	require.NotNil(t, job.FollowUpAt)
	assert.Equal(t, time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC), *job.FollowUpAt)
}

func TestRunner_Note(t *testing.T) {
	r, store := createTestRunner(t, Options{})

	res, err := r.Run(context.Background(), "note startup: recruiter asked for portfolio")
	require.NoError(t, err)

	assert.Equal(t, "Note saved ✅", res.UI.Title)
	assert.Equal(t, "Portfolio reviewed.\n\nrecruiter asked for portfolio", getJob(t, store, "startup").Notes)
}

func TestRunner_NotExecuted(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		title  string
		reason string
	}{
		{"unknown company", "move Initech to Offer", "Move not executed", `no job matches "Initech"`},
		{"move without params", "taşı", "Move not executed", "no company or target"},
		{"followup without date", "followup Globex", "Follow-up not set", "date is missing"},
		{"followup with impossible date", "followup Globex 2025-02-30", "Follow-up not set", "2025-02-30 is not a valid date"},
		{"followup without company", "followup 2025-01-20", "Follow-up not set", "company is missing"},
		{"note without text", "note Globex", "Note not saved", "note text is missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := createTestRunner(t, Options{})
			before := store.Snapshot()

			res, err := r.Run(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.title, res.UI.Title)
			assert.Contains(t, strings.Join(res.UI.Lines, "\n"), tt.reason)
			assert.False(t, res.UndoAvailable)
			assert.Equal(t, before, store.Snapshot())
		})
	}
}

func TestRunner_ReadOnly(t *testing.T) {
	r, store := createTestRunner(t, Options{ReadOnly: true})
	before := store.Snapshot()

	res, err := r.Run(context.Background(), "move Acme to Offer")
	require.NoError(t, err)
	assert.Equal(t, intent.IntentMove, res.Intent)
	assert.Equal(t, "Read-only board", res.UI.Title)
	assert.Empty(t, res.Executions)
	assert.Equal(t, before, store.Snapshot())

	res, err = r.Run(context.Background(), "today")
	require.NoError(t, err)
	assert.Equal(t, "Today snapshot", res.UI.Title)

	_, err = r.Undo(context.Background())
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestRunner_Unknown(t *testing.T) {
	r, _ := createTestRunner(t, Options{})

	res, err := r.Run(context.Background(), "asdkjasd")
	require.NoError(t, err)
	assert.Equal(t, "I didn't understand", res.UI.Title)
	assert.Contains(t, res.UI.Tips, "today / bugun")
	assert.Len(t, res.UI.Tips, 5)
}

// ===== Undo =====

func TestRunner_Undo(t *testing.T) {
	r, store := createTestRunner(t, Options{})
	ctx := context.Background()

	_, err := r.Run(ctx, "Acme Corp -> Rejected")
	require.NoError(t, err)
	require.Equal(t, intent.StatusRejected, getJob(t, store, "acme").Status)

	undone, err := r.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme", undone.JobID)
	assert.Equal(t, "move", undone.Label)
	assert.Equal(t, intent.StatusApplied, getJob(t, store, "acme").Status)

	_, err = r.Undo(ctx)
	assert.ErrorIs(t, err, board.ErrNothingToUndo)
}

// ===== Wire shape =====

func TestResult_JSONFlattensCommand(t *testing.T) {
	r, _ := createTestRunner(t, Options{})

	res, err := r.Run(context.Background(), "move Acme to Offer")
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "MOVE", body["intent"])
	assert.Equal(t, "Acme", body["company"])
	assert.Equal(t, "Offer", body["to"])
	assert.Len(t, body["actions"], 1)
	assert.Equal(t, true, body["undoAvailable"])
	assert.Contains(t, body, "ui")
}

func TestParse_RecordsEveryIntent(t *testing.T) {
	log := logger.NewTestLogger(t)
	for _, input := range []string{"today", "weekly plan", "move A to Offer", "followup A 2025-01-01", "note A: hi", "?"} {
		parsed := Parse(input, log)
		require.NotNil(t, parsed)
		assert.NotNil(t, parsed.Actions)
	}
}
