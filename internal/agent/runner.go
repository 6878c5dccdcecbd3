// internal/agent/runner.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobboard-agent/internal/board"
	"jobboard-agent/internal/common/logger"
	"jobboard-agent/internal/common/metrics"
	"jobboard-agent/internal/intent"
)

var ErrReadOnly = errors.New("READ_ONLY_BOARD")

// Result is a classified command plus what the runner did with it.
type Result struct {
	*intent.ParsedCommand
	UI            UI          `json:"ui"`
	Executions    []Execution `json:"executions,omitempty"`
	UndoAvailable bool        `json:"undoAvailable"`
}

// Execution reports one directive. Reason is set when it was not applied.
type Execution struct {
	Type    intent.DirectiveType `json:"type"`
	Applied bool                 `json:"applied"`
	JobID   string               `json:"jobId,omitempty"`
	Company string               `json:"company,omitempty"`
	Reason  string               `json:"reason,omitempty"`
}

type Options struct {
	ReadOnly bool
}

// Runner applies classified commands to a board.
type Runner struct {
	board  *board.Board
	opts   Options
	logger logger.Logger
}

func NewRunner(b *board.Board, opts Options, log logger.Logger) *Runner {
	return &Runner{
		board:  b,
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "agent"}),
	}
}

// Parse classifies input and records the classification.
func Parse(input string, log logger.Logger) *intent.ParsedCommand {
	start := time.Now()
	parsed := intent.Classify(input)
	elapsed := time.Since(start)

	metrics.CommandsClassified.WithLabelValues(string(parsed.Intent)).Inc()
	metrics.ClassificationDuration.Observe(elapsed.Seconds())

	log.Info("command classified", map[string]interface{}{
		"intent":      string(parsed.Intent),
		"actionCount": len(parsed.Actions),
		"inputLength": len(input),
		"latencyMs":   float64(elapsed.Microseconds()) / 1000,
	})
	return parsed
}

// Run classifies input, enriches summaries and executes board directives.
// Only storage failures are returned as errors; a directive that cannot be
// executed is reported in the result.
func (r *Runner) Run(ctx context.Context, input string) (*Result, error) {
	parsed := Parse(input, r.logger)
	res := &Result{ParsedCommand: parsed}

	switch parsed.Intent {
	case intent.IntentToday:
		jobs, err := r.board.List(ctx)
		if err != nil {
			return nil, err
		}
		res.UI = todayUI(board.TodaySnapshot(jobs, r.board.Now()))

	case intent.IntentWeeklyPlan:
		jobs, err := r.board.List(ctx)
		if err != nil {
			return nil, err
		}
		res.UI = weeklyUI(board.WeeklyPlan(jobs, r.board.Now()))

	case intent.IntentMove, intent.IntentFollowup, intent.IntentNote:
		if r.opts.ReadOnly {
			for _, d := range parsed.Actions {
				metrics.DirectivesApplied.WithLabelValues(string(d.Type), metrics.ResultSkipped).Inc()
			}
			res.UI = readOnlyUI(parsed.Intent)
			return res, nil
		}
		if err := r.execute(ctx, res); err != nil {
			return nil, err
		}

	default:
		res.UI = helpUI()
	}

	return res, nil
}

func (r *Runner) execute(ctx context.Context, res *Result) error {
	if len(res.Actions) == 0 {
		res.UI = notExecutedUI(res.Intent, "the command had no company or target")
		return nil
	}

	for _, d := range res.Actions {
		exec, err := r.apply(ctx, d)
		if err != nil {
			metrics.DirectivesApplied.WithLabelValues(string(d.Type), metrics.ResultFailed).Inc()
			r.logger.Error("directive failed", map[string]interface{}{
				"type":  string(d.Type),
				"error": err.Error(),
			})
			return err
		}

		result := metrics.ResultApplied
		if !exec.Applied {
			result = metrics.ResultSkipped
		}
		metrics.DirectivesApplied.WithLabelValues(string(d.Type), result).Inc()
		r.logger.Info("directive handled", map[string]interface{}{
			"type":    string(d.Type),
			"applied": exec.Applied,
			"jobId":   exec.JobID,
			"reason":  exec.Reason,
		})
		res.Executions = append(res.Executions, exec)
	}

	last := res.Executions[len(res.Executions)-1]
	if last.Applied {
		res.UndoAvailable = true
		res.UI = executedUI(res.ParsedCommand, last)
	} else {
		res.UI = notExecutedUI(res.Intent, last.Reason)
	}
	return nil
}

// apply executes one directive. Missing or unresolvable fields produce an
// unapplied Execution, never a guess.
func (r *Runner) apply(ctx context.Context, d intent.Directive) (Execution, error) {
	exec := Execution{Type: d.Type}
	if d.Company == nil || *d.Company == "" {
		exec.Reason = "company is missing"
		return exec, nil
	}
	exec.Company = *d.Company

	job, err := r.board.FindByCompany(ctx, *d.Company)
	if err != nil {
		return exec, err
	}
	if job == nil {
		exec.Reason = fmt.Sprintf("no job matches %q", *d.Company)
		return exec, nil
	}
	exec.JobID = job.ID
	exec.Company = job.Company

	switch d.Type {
	case intent.DirectiveMove:
		if d.To == nil {
			exec.Reason = "target status is missing"
			return exec, nil
		}
		_, err = r.board.Move(ctx, job.ID, *d.To)
	case intent.DirectiveFollowup:
		if d.Date == nil {
			exec.Reason = "date is missing (use YYYY-MM-DD)"
			return exec, nil
		}
		_, err = r.board.SetFollowUp(ctx, job.ID, *d.Date)
		if errors.Is(err, board.ErrInvalidDate) {
			exec.Reason = fmt.Sprintf("%s is not a valid date", *d.Date)
			return exec, nil
		}
	case intent.DirectiveNote:
		if d.Text == nil {
			exec.Reason = "note text is missing"
			return exec, nil
		}
		_, err = r.board.AppendNote(ctx, job.ID, *d.Text)
		if errors.Is(err, board.ErrEmptyNote) {
			exec.Reason = "note text is missing"
			return exec, nil
		}
	default:
		exec.Reason = fmt.Sprintf("unsupported directive %s", d.Type)
		return exec, nil
	}

	if errors.Is(err, board.ErrJobNotFound) {
		exec.Reason = fmt.Sprintf("%s was removed from the board", job.Company)
		return exec, nil
	}
	if err != nil {
		return exec, err
	}
	exec.Applied = true
	return exec, nil
}

// UndoResult describes a reverted edit.
type UndoResult struct {
	JobID string `json:"jobId"`
	Label string `json:"label"`
	UI    UI     `json:"ui"`
}

// Undo reverts the last board edit if its snapshot is still alive.
func (r *Runner) Undo(ctx context.Context) (*UndoResult, error) {
	if r.opts.ReadOnly {
		return nil, ErrReadOnly
	}
	snap, err := r.board.Undo(ctx)
	if err != nil {
		return nil, err
	}
	return &UndoResult{
		JobID: snap.JobID,
		Label: snap.Label,
		UI: UI{
			Title: "Undone ↩",
			Lines: []string{fmt.Sprintf("Reverted the last %s.", snap.Label)},
		},
	}, nil
}
