// internal/workers/agent/parse-agent-command/models.go
package parseagentcommand

import "jobboard-agent/internal/intent"

// Input is read from the process variables. Message is the fallback when
// input is absent.
type Input struct {
	Input   *string `json:"input"`
	Message *string `json:"message"`
}

func (i Input) Text() string {
	switch {
	case i.Input != nil:
		return *i.Input
	case i.Message != nil:
		return *i.Message
	}
	return ""
}

// Output is the parsed command written back as process variables.
type Output struct {
	*intent.ParsedCommand
}
