// internal/intent/classifier.go
package intent

import (
	"regexp"
	"strings"
)

var (
	todayKeywords  = normalizeAll("today", "bugun", "bugün", "gunluk", "günlük")
	weeklyKeywords = normalizeAll("weekly", "weekly plan", "week plan", "haftalik plan", "haftalık plan")

	fallbackToday  = normalizeAll("today", "bugun", "bugün")
	fallbackWeekly = normalizeAll("week", "weekly", "hafta")
	fallbackMove   = normalizeAll("move", "tasi", "tas")
)

var (
	moveToPattern    = regexp.MustCompile(`(?i)^move\s+(.+?)\s+(?:to|into)\s+(applied|interview|offer|rejected)\s*$`)
	moveArrowPattern = regexp.MustCompile(`(?i)^(.+?)\s*(?:->|→)\s*(applied|interview|offer|rejected)\s*$`)
	moveTRPattern    = regexp.MustCompile(`(?i)^(.+?)\s+(mulakat|mülakat|interview|teklif|offer|red|rejected|basvur|başvur)(?:a|e)?\s*(?:tasi|tas?i|gecir|al)\s*$`)

	followupPrefix  = regexp.MustCompile(`(?i)^(?:follow\s*up|followup)`)
	followupKeyword = regexp.MustCompile(`(?i)follow\s*up|followup`)
	isoDatePattern  = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

	notePrefix = regexp.MustCompile(`(?i)^(?:note|not)\s+`)
)

// recognizer returns nil when it does not apply to the input.
type recognizer func(raw, normalized string) *ParsedCommand

// recognizers run in precedence order; the first match wins.
var recognizers = []recognizer{
	recognizeToday,
	recognizeWeeklyPlan,
	recognizeMove,
	recognizeFollowup,
	recognizeNote,
	recognizeFallback,
}

// Classify maps one free-text command onto exactly one intent. It never
// fails: input no recognizer accepts yields UNKNOWN. Safe for concurrent use.
func Classify(input string) *ParsedCommand {
	raw := strings.TrimSpace(input)
	normalized := Normalize(raw)

	for _, recognize := range recognizers {
		if cmd := recognize(raw, normalized); cmd != nil {
			return cmd
		}
	}
	return bare(IntentUnknown)
}

func recognizeToday(_, message string) *ParsedCommand {
	if message == "" {
		return nil
	}
	for _, w := range todayKeywords {
		if message == w || IsCloseMatch(message, w) {
			return bare(IntentToday)
		}
	}
	return nil
}

func recognizeWeeklyPlan(_, message string) *ParsedCommand {
	if message == "" {
		return nil
	}
	for _, w := range weeklyKeywords {
		if strings.Contains(message, w) || IsCloseMatch(message, w) {
			return bare(IntentWeeklyPlan)
		}
	}
	return nil
}

func recognizeMove(raw, _ string) *ParsedCommand {
	for _, re := range []*regexp.Regexp{moveToPattern, moveArrowPattern, moveTRPattern} {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		company := optional(strings.TrimSpace(m[1]))
		to := resolveStatusPtr(m[2])
		return &ParsedCommand{
			Intent:  IntentMove,
			Company: company,
			To:      to,
			Actions: []Directive{{Type: DirectiveMove, Company: company, To: to}},
		}
	}
	return nil
}

func recognizeFollowup(raw, _ string) *ParsedCommand {
	if !followupPrefix.MatchString(raw) {
		return nil
	}

	date := isoDatePattern.FindString(raw)
	rest := raw
	if date != "" {
		rest = strings.Replace(rest, date, "", 1)
	}
	if loc := followupKeyword.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]] + rest[loc[1]:]
	}

	company := optional(strings.TrimSpace(rest))
	datePtr := optional(date)
	return &ParsedCommand{
		Intent:  IntentFollowup,
		Company: company,
		Date:    datePtr,
		Actions: []Directive{{Type: DirectiveFollowup, Company: company, Date: datePtr}},
	}
}

func recognizeNote(raw, _ string) *ParsedCommand {
	loc := notePrefix.FindStringIndex(raw)
	if loc == nil {
		return nil
	}
	after := strings.TrimSpace(raw[loc[1]:])

	var company, text string
	if idx := strings.Index(after, ":"); idx >= 0 {
		company = strings.TrimSpace(after[:idx])
		text = strings.TrimSpace(after[idx+1:])
	} else {
		if fields := strings.Fields(after); len(fields) > 0 {
			company = fields[0]
		}
		text = strings.TrimSpace(strings.Replace(after, company, "", 1))
	}

	companyPtr, textPtr := optional(company), optional(text)
	return &ParsedCommand{
		Intent:  IntentNote,
		Company: companyPtr,
		Text:    textPtr,
		Actions: []Directive{{Type: DirectiveNote, Company: companyPtr, Text: textPtr}},
	}
}

// recognizeFallback gives a coarse signal for commands that almost match one
// of the structured forms. It never extracts parameters.
func recognizeFallback(_, message string) *ParsedCommand {
	switch {
	case containsAny(message, fallbackToday):
		return bare(IntentToday)
	case containsAny(message, fallbackWeekly):
		return bare(IntentWeeklyPlan)
	case containsAny(message, fallbackMove):
		return bare(IntentMove)
	}
	return nil
}

func bare(i Intent) *ParsedCommand {
	return &ParsedCommand{Intent: i, Actions: []Directive{}}
}

func containsAny(s string, words []string) bool {
	if s == "" {
		return false
	}
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func normalizeAll(words ...string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Normalize(w)
	}
	return out
}
