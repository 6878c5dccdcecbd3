// internal/agent/ui.go
package agent

import (
	"fmt"
	"strings"

	"jobboard-agent/internal/board"
	"jobboard-agent/internal/intent"
)

// UI is the card shown to the user for one command.
type UI struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
	Tips  []string `json:"tips,omitempty"`
}

var exampleTips = []string{
	"today / bugun",
	"weekly plan",
	"move Company A to Interview",
	"followup Company A 2025-01-10",
	"note Company A: recruiter asked for portfolio",
}

func helpUI() UI {
	return UI{
		Title: "I didn't understand",
		Lines: []string{"Try one of these:"},
		Tips:  append([]string(nil), exampleTips...),
	}
}

func todayUI(s board.TodaySummary) UI {
	lines := []string{
		fmt.Sprintf("Overdue follow-ups: %d", len(s.Overdue)),
		fmt.Sprintf("Follow-ups today: %d", len(s.DueToday)),
		fmt.Sprintf("In Interview: %d", len(s.InInterview)),
	}
	if len(s.Priorities) == 0 {
		lines = append(lines, "No urgent items 🎉")
	} else {
		lines = append(lines, "Top priorities:")
		lines = append(lines, bullets(s.Priorities)...)
	}

	return UI{
		Title: "Today snapshot",
		Lines: lines,
		Tips: []string{
			`Try: "weekly plan"`,
			`Try: "move Company A to Interview"`,
			`Try: "followup Company A 2025-01-10"`,
			`Try: "note Company A: recruiter asked for portfolio"`,
		},
	}
}

func weeklyUI(w board.WeeklySummary) UI {
	last := w.End.AddDate(0, 0, -1)
	lines := []string{
		fmt.Sprintf("Week %s → %s", w.Start.Format(board.DateLayout), last.Format(board.DateLayout)),
		fmt.Sprintf("Overdue follow-ups: %d", len(w.Overdue)),
	}
	lines = append(lines, bullets(w.Overdue)...)

	if len(w.FollowUps) == 0 {
		lines = append(lines, "No follow-ups scheduled this week")
	} else {
		lines = append(lines, "Follow-ups:")
		for _, day := range w.FollowUps {
			labels := make([]string, len(day.Jobs))
			for i, j := range day.Jobs {
				labels[i] = j.Label()
			}
			lines = append(lines, fmt.Sprintf("%s: %s", day.Date, strings.Join(labels, ", ")))
		}
	}

	lines = append(lines, fmt.Sprintf("Interviews to prepare: %d", len(w.Interviews)))
	lines = append(lines, bullets(w.Interviews)...)
	if len(w.Stale) > 0 {
		lines = append(lines, fmt.Sprintf("No news for two weeks: %d", len(w.Stale)))
		lines = append(lines, bullets(w.Stale)...)
	}
	lines = append(lines, fmt.Sprintf("Total %d · Interview rate %d%% · Offer rate %d%%",
		w.KPIs.Total, w.KPIs.InterviewRate, w.KPIs.OfferRate))

	var tips []string
	if len(w.Stale) > 0 {
		tips = append(tips, `Try: "followup <company> <YYYY-MM-DD>" for stale applications`)
	}
	tips = append(tips, `Try: "today"`)

	return UI{Title: "Weekly plan", Lines: lines, Tips: tips}
}

func executedUI(parsed *intent.ParsedCommand, exec Execution) UI {
	switch exec.Type {
	case intent.DirectiveMove:
		return UI{
			Title: "Move executed ✅",
			Lines: []string{fmt.Sprintf("%s moved to %s.", exec.Company, *parsed.To)},
			Tips:  []string{`Try: "today"`},
		}
	case intent.DirectiveFollowup:
		return UI{
			Title: "Follow-up set ✅",
			Lines: []string{fmt.Sprintf("%s follow-up → %s", exec.Company, *parsed.Date)},
		}
	default:
		return UI{
			Title: "Note saved ✅",
			Lines: []string{fmt.Sprintf("%s: note added.", exec.Company)},
		}
	}
}

func notExecutedUI(i intent.Intent, reason string) UI {
	title := map[intent.Intent]string{
		intent.IntentMove:     "Move not executed",
		intent.IntentFollowup: "Follow-up not set",
		intent.IntentNote:     "Note not saved",
	}[i]

	lines := []string{fmt.Sprintf("I recognized %s, but %s.", i, reason)}
	switch i {
	case intent.IntentMove:
		lines = append(lines, "Tip: use exact company name or a unique part of it.")
	case intent.IntentFollowup:
		lines = append(lines, "Tip: followup <company> <YYYY-MM-DD>")
	case intent.IntentNote:
		lines = append(lines, "Tip: note <company>: <text>")
	}
	return UI{Title: title, Lines: lines}
}

func readOnlyUI(i intent.Intent) UI {
	return UI{
		Title: "Read-only board",
		Lines: []string{fmt.Sprintf("I recognized %s, but this board is read-only.", i)},
	}
}

func bullets(jobs []board.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = "- " + j.Label()
	}
	return out
}
