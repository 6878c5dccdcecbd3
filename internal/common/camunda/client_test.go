package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"jobboard-agent/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fastRetry(), "topology", func(context.Context) error {
		calls++
		if calls < 2 {
			return stderrors.New("rpc error: code = Unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fastRetry(), "topology", func(context.Context) error {
		calls++
		return stderrors.New("permission denied")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, errors.ErrCodeWorkflowEngineFailed, errors.AsStandardError(err).Code)
}

func TestExecuteWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fastRetry(), "topology", func(context.Context) error {
		calls++
		return stderrors.New("connection refused")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, errors.AsStandardError(err).Details, "connection refused")
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := &RetryConfig{MaxRetries: 3, BaseDelay: time.Hour, MaxDelay: time.Hour}
	err := ExecuteWithRetry(ctx, rc, "topology", func(context.Context) error {
		return stderrors.New("deadline exceeded")
	})

	require.Error(t, err)
	assert.Contains(t, errors.AsStandardError(err).Details, "context canceled")
}
