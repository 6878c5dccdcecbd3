// internal/agentclient/client.go
package agentclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobboard-agent/internal/agent"
	commonerrors "jobboard-agent/internal/common/errors"
	commonhttp "jobboard-agent/internal/common/http"
	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/intent"
)

const DefaultBaseURL = "http://localhost:5174"

// ServerError is a non-2xx answer from the agent server.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Client calls the agent server. It never retries.
type Client struct {
	http    *commonhttp.Client
	baseURL string
	logger  logger.Logger
}

func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    commonhttp.NewClient(timeout),
		baseURL: baseURL,
		logger:  log.WithFields(map[string]interface{}{"component": "agentclient"}),
	}
}

type commandRequest struct {
	Input string `json:"input"`
}

// Intent classifies input on the server.
func (c *Client) Intent(ctx context.Context, input string) (*intent.ParsedCommand, error) {
	data, err := c.post(ctx, "/api/agent-intent", commandRequest{Input: input})
	if err != nil {
		return nil, err
	}
	return decodeCommand(data), nil
}

// Run classifies and executes input on the server's board.
func (c *Client) Run(ctx context.Context, input string) (*agent.Result, error) {
	data, err := c.post(ctx, "/api/agent-run", commandRequest{Input: input})
	if err != nil {
		return nil, err
	}

	var res agent.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, commonerrors.NewAgentTransportFailedError(fmt.Errorf("decode run result: %w", err))
	}
	if res.ParsedCommand == nil {
		res.ParsedCommand = &intent.ParsedCommand{}
	}
	res.Intent = canonicalIntent(string(res.Intent))
	if res.Actions == nil {
		res.Actions = []intent.Directive{}
	}
	return &res, nil
}

// Undo reverts the server's last board edit.
func (c *Client) Undo(ctx context.Context) (*agent.UndoResult, error) {
	data, err := c.post(ctx, "/api/agent-undo", struct{}{})
	if err != nil {
		return nil, err
	}
	var res agent.UndoResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, commonerrors.NewAgentTransportFailedError(fmt.Errorf("decode undo result: %w", err))
	}
	return &res, nil
}

// Health reports whether the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.GetJSON(ctx, c.baseURL+"/health")
	if err != nil {
		return commonerrors.NewAgentTransportFailedError(err)
	}
	if !resp.OK() {
		return serverError(resp.StatusCode, resp.Body)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	resp, err := c.http.PostJSON(ctx, c.baseURL+path, payload)
	if err != nil {
		c.logger.Warn("agent server unreachable", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return nil, commonerrors.NewAgentTransportFailedError(err)
	}
	if !resp.OK() {
		return nil, serverError(resp.StatusCode, resp.Body)
	}
	return resp.Body, nil
}

// serverError prefers the body's message, then its error code.
func serverError(status int, body []byte) *ServerError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("Agent server error (%d)", status)
	}
	return &ServerError{StatusCode: status, Message: msg}
}

// decodeCommand accepts either a command object or a bare intent string.
func decodeCommand(data []byte) *intent.ParsedCommand {
	var cmd intent.ParsedCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		var bareIntent string
		_ = json.Unmarshal(data, &bareIntent)
		cmd = intent.ParsedCommand{Intent: intent.Intent(bareIntent)}
	}

	cmd.Intent = canonicalIntent(string(cmd.Intent))
	if cmd.Actions == nil {
		cmd.Actions = []intent.Directive{}
	}
	return &cmd
}

func canonicalIntent(raw string) intent.Intent {
	s := intent.Intent(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case "WEEKLY":
		return intent.IntentWeeklyPlan
	case "MOVE_JOB":
		return intent.IntentMove
	case intent.IntentToday, intent.IntentWeeklyPlan, intent.IntentMove,
		intent.IntentFollowup, intent.IntentNote:
		return s
	}
	return intent.IntentUnknown
}
