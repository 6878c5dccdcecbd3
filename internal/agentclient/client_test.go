package agentclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	commonerrors "jobboard-agent/internal/common/errors"
	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== Test Helper Functions =====

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 2*time.Second, logger.NewTestLogger(t))
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// ===== Tests =====

func TestClient_Intent_SendsInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/agent-intent", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "move Acme Corp to Interview", body["input"])

		respond(http.StatusOK, `{"intent":"MOVE","company":"Acme Corp","to":"Interview",
			"actions":[{"type":"MOVE","company":"Acme Corp","to":"Interview"}]}`)(w, r)
	})

	cmd, err := client.Intent(context.Background(), "move Acme Corp to Interview")
	require.NoError(t, err)
	assert.Equal(t, intent.IntentMove, cmd.Intent)
	require.NotNil(t, cmd.Company)
	assert.Equal(t, "Acme Corp", *cmd.Company)
	require.Len(t, cmd.Actions, 1)
	assert.Equal(t, intent.StatusInterview, *cmd.Actions[0].To)
}

func TestClient_Intent_NormalizesIntent(t *testing.T) {
	tests := []struct {
		body     string
		expected intent.Intent
	}{
		{`{"intent":"today"}`, intent.IntentToday},
		{`{"intent":" weekly "}`, intent.IntentWeeklyPlan},
		{`{"intent":"MOVE_JOB"}`, intent.IntentMove},
		{`{"intent":"RISK"}`, intent.IntentUnknown},
		{`{}`, intent.IntentUnknown},
		{`"FOLLOWUP"`, intent.IntentFollowup},
		{`not json`, intent.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			client := newTestClient(t, respond(http.StatusOK, tt.body))
			cmd, err := client.Intent(context.Background(), "x")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cmd.Intent)
			assert.NotNil(t, cmd.Actions)
		})
	}
}

func TestClient_Intent_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"error":"INVALID_REQUEST_BODY","message":"Request body is not valid JSON"}`, "Request body is not valid JSON"},
		{"error field only", http.StatusForbidden, `{"error":"READ_ONLY_BOARD"}`, "READ_ONLY_BOARD"},
		{"no body", http.StatusBadGateway, ``, "Agent server error (502)"},
		{"html body", http.StatusInternalServerError, `<html>oops</html>`, "Agent server error (500)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respond(tt.status, tt.body))

			_, err := client.Intent(context.Background(), "today")
			require.Error(t, err)

			var srvErr *ServerError
			require.ErrorAs(t, err, &srvErr)
			assert.Equal(t, tt.status, srvErr.StatusCode)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestClient_Intent_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, time.Second, logger.NewTestLogger(t))
	_, err := client.Intent(context.Background(), "today")

	stdErr := commonerrors.AsStandardError(err)
	assert.Equal(t, commonerrors.ErrCodeAgentTransportFailed, stdErr.Code)
}

func TestClient_Run(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/agent-run", r.URL.Path)
		respond(http.StatusOK, `{"intent":"NOTE","company":"Acme","text":"hi",
			"actions":[{"type":"NOTE","company":"Acme","text":"hi"}],
			"ui":{"title":"Note saved ✅","lines":["Acme Corp: note added."]},
			"executions":[{"type":"NOTE","applied":true,"jobId":"1","company":"Acme Corp"}],
			"undoAvailable":true}`)(w, r)
	})

	res, err := client.Run(context.Background(), "note Acme: hi")
	require.NoError(t, err)
	assert.Equal(t, intent.IntentNote, res.Intent)
	assert.Equal(t, "Note saved ✅", res.UI.Title)
	assert.True(t, res.UndoAvailable)
	require.Len(t, res.Executions, 1)
	assert.True(t, res.Executions[0].Applied)
}

func TestClient_UndoAndHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/agent-undo":
			respond(http.StatusOK, `{"jobId":"1","label":"move","ui":{"title":"Undone ↩","lines":[]}}`)(w, r)
		case "/health":
			respond(http.StatusOK, `{"ok":true}`)(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	undone, err := client.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "move", undone.Label)

	assert.NoError(t, client.Health(context.Background()))
}

func TestNew_DefaultBaseURL(t *testing.T) {
	client := New("  ", time.Second, logger.NewNoOpLogger())
	assert.Equal(t, DefaultBaseURL, client.baseURL)
}
