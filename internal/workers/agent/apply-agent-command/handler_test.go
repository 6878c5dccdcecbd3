package applyagentcommand

import (
	"context"
	"testing"
	"time"

	"jobboard-agent/internal/agent"
	"jobboard-agent/internal/board"
	commonerrors "jobboard-agent/internal/common/errors"
	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Runner
// ==========================

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, input string) (*agent.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.Result), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

var testNow = time.Date(2025, 1, 8, 14, 30, 0, 0, time.UTC)

func createValidConfig() *Config {
	return &Config{Enabled: true, MaxJobsActive: 5, Timeout: 5 * time.Second}
}

func createBoardRunner(t *testing.T, readOnly bool) (*agent.Runner, *board.MemoryStore) {
	store := board.NewMemoryStore([]board.Job{{
		ID: "acme", Company: "Acme Corp", Role: "Backend Engineer", Status: intent.StatusApplied,
		CreatedAt: testNow, UpdatedAt: testNow,
	}})
	log := logger.NewTestLogger(t)
	b := board.NewBoard(store, board.NewMemoryUndoStore(), board.Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	}, log)
	return agent.NewRunner(b, agent.Options{ReadOnly: readOnly}, log), store
}

func strPtr(s string) *string { return &s }

// ==========================
// Tests
// ==========================

func TestHandler_Execute_AppliesMove(t *testing.T) {
	runner, store := createBoardRunner(t, false)
	h := NewHandler(createValidConfig(), runner, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{Input: strPtr("move Acme Corp to Offer")})
	require.NoError(t, err)
	assert.Equal(t, intent.IntentMove, output.Intent)
	assert.True(t, output.UndoAvailable)
	require.Len(t, output.Executions, 1)
	assert.True(t, output.Executions[0].Applied)

	job, err := store.Get(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, intent.StatusOffer, job.Status)
}

func TestHandler_Execute_ReadOnlyCompletes(t *testing.T) {
	runner, store := createBoardRunner(t, true)
	h := NewHandler(createValidConfig(), runner, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{Message: strPtr("move Acme Corp to Offer")})
	require.NoError(t, err)
	assert.Equal(t, "Read-only board", output.UI.Title)
	assert.False(t, output.UndoAvailable)

	job, _ := store.Get(context.Background(), "acme")
	assert.Equal(t, intent.StatusApplied, job.Status)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		runErr   error
		wantCode commonerrors.ErrorCode
	}{
		{"store failure", board.ErrStoreFailed, commonerrors.ErrCodeBoardStoreFailed},
		{"deadline", context.DeadlineExceeded, commonerrors.ErrCodeWorkflowEngineFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(MockRunner)
			runner.On("Run", mock.Anything, "today").Return(nil, tt.runErr)
			h := NewHandler(createValidConfig(), runner, logger.NewTestLogger(t))

			_, err := h.Execute(context.Background(), &Input{Input: strPtr("today")})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, commonerrors.AsStandardError(err).Code)
			runner.AssertExpectations(t)
		})
	}
}

func TestDecodeInput(t *testing.T) {
	input, err := DecodeInput(`{"message":"today"}`)
	require.NoError(t, err)
	assert.Equal(t, "today", input.Text())

	_, err = DecodeInput(`{"input":true}`)
	require.Error(t, err)
	assert.Equal(t, commonerrors.ErrCodeIntentParsingFailed, commonerrors.AsStandardError(err).Code)
}
