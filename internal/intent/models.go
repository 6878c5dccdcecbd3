// internal/intent/models.go
package intent

// Intent is the classified purpose of a single command.
type Intent string

const (
	IntentToday      Intent = "TODAY"
	IntentWeeklyPlan Intent = "WEEKLY_PLAN"
	IntentMove       Intent = "MOVE"
	IntentFollowup   Intent = "FOLLOWUP"
	IntentNote       Intent = "NOTE"
	IntentUnknown    Intent = "UNKNOWN"
)

// Status is one of the four canonical application-pipeline stages.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
)

// Statuses lists the canonical statuses in board column order.
var Statuses = []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// Valid reports whether s is a canonical status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type DirectiveType string

const (
	DirectiveMove     DirectiveType = "MOVE"
	DirectiveFollowup DirectiveType = "FOLLOWUP"
	DirectiveNote     DirectiveType = "NOTE"
)

// Directive is an instruction for the board. A nil field means extraction
// failed for it; the caller decides how to report that.
type Directive struct {
	Type    DirectiveType `json:"type"`
	Company *string       `json:"company,omitempty"`
	To      *Status       `json:"to,omitempty"`
	Date    *string       `json:"date,omitempty"`
	Text    *string       `json:"text,omitempty"`
}

// ParsedCommand is the result of one classification. Actions is never nil.
type ParsedCommand struct {
	Intent  Intent      `json:"intent"`
	Actions []Directive `json:"actions"`
	Company *string     `json:"company,omitempty"`
	To      *Status     `json:"to,omitempty"`
	Date    *string     `json:"date,omitempty"`
	Text    *string     `json:"text,omitempty"`
}

// Complete reports whether every field the directive's type needs is present.
func (d Directive) Complete() bool {
	if d.Company == nil || *d.Company == "" {
		return false
	}
	switch d.Type {
	case DirectiveMove:
		return d.To != nil
	case DirectiveFollowup:
		return d.Date != nil
	case DirectiveNote:
		return d.Text != nil
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
