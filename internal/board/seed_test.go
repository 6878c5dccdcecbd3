package board

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobboard-agent/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	path := writeSeed(t, `
jobs:
  - company: Company A
    role: Front-end Engineer
    location: London UK.
    status: Applied
    follow_up_in_days: 2
  - company: Startup X
    role: Frontend Engineer
    status: Interview
    notes: Portfolio reviewed.
  - company: Company B
    role: React Developer
`)
	now := baseTime()

	jobs, err := LoadSeedFile(path, now)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.NotEmpty(t, jobs[0].ID)
	assert.NotEqual(t, jobs[0].ID, jobs[1].ID)
	require.NotNil(t, jobs[0].FollowUpAt)
	assert.Equal(t, now.AddDate(0, 0, 2), *jobs[0].FollowUpAt)
	assert.Nil(t, jobs[1].FollowUpAt)
	assert.Equal(t, intent.StatusApplied, jobs[2].Status)

	// file order survives the most-recent-first sort
	store := NewMemoryStore(jobs)
	listed := store.Snapshot()
	assert.Equal(t, "Company A", listed[0].Company)
	assert.Equal(t, "Company B", listed[2].Company)
}

func TestLoadSeedFile_Errors(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"), baseTime())
	assert.Error(t, err)

	_, err = LoadSeedFile(writeSeed(t, "jobs: [[["), baseTime())
	assert.Error(t, err)

	_, err = LoadSeedFile(writeSeed(t, "jobs:\n  - company: A\n    status: Waiting\n"), baseTime())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoadSeedFile_SampleBoard(t *testing.T) {
	now := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)

	jobs, err := LoadSeedFile("../../configs/seed.yaml", now)
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	assert.Equal(t, "Company A", jobs[0].Company)
	require.NotNil(t, jobs[0].FollowUpAt)
	assert.Equal(t, now.AddDate(0, 0, 2), *jobs[0].FollowUpAt)
	assert.Equal(t, intent.StatusRejected, jobs[3].Status)
	assert.Nil(t, jobs[3].FollowUpAt)
}
