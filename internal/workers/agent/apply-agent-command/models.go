// internal/workers/agent/apply-agent-command/models.go
package applyagentcommand

import "jobboard-agent/internal/agent"

type Input struct {
	Input   *string `json:"input"`
	Message *string `json:"message"`
}

func (i Input) Text() string {
	if i.Input != nil {
		return *i.Input
	}
	if i.Message != nil {
		return *i.Message
	}
	return ""
}

// Output carries the parsed command, the result card and the executions.
type Output struct {
	*agent.Result
}
