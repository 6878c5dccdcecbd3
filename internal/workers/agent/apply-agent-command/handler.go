// internal/workers/agent/apply-agent-command/handler.go
package applyagentcommand

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"jobboard-agent/internal/agent"
	"jobboard-agent/internal/board"
	commonerrors "jobboard-agent/internal/common/errors"
	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/common/metrics"
)

const (
	TaskType = "apply-agent-command"
)

// Runner is satisfied by *agent.Runner.
type Runner interface {
	Run(ctx context.Context, input string) (*agent.Result, error)
}

type Handler struct {
	config       *Config
	runner       Runner
	errorHandler *commonerrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, runner Runner, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		runner:       runner,
		errorHandler: commonerrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := DecodeInput(job.Variables)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// DecodeInput parses job variables into Input.
func DecodeInput(variables string) (*Input, error) {
	var input Input
	if variables == "" {
		return &input, nil
	}
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, commonerrors.NewIntentParsingFailedError(err)
	}
	return &input, nil
}

// Execute runs the command against the board. Commands that cannot be
// applied still complete; the card explains why.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.runner.Run(ctx, input.Text())
	if err != nil {
		switch {
		case errors.Is(err, board.ErrStoreFailed):
			return nil, commonerrors.NewBoardStoreFailedError("run", err)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return nil, commonerrors.NewWorkflowEngineFailedError("run", err)
		}
		return nil, err
	}

	h.logger.Info("command applied", map[string]interface{}{
		"intent":        string(result.Intent),
		"executions":    len(result.Executions),
		"undoAvailable": result.UndoAvailable,
	})
	return &Output{Result: result}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.fail(ctx, client, job, commonerrors.NewInternalError(err))
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := commonerrors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
