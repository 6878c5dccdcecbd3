// internal/followup/followup.go
package followup

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"jobboard-agent/internal/board"
	"jobboard-agent/internal/intent"
)

var ErrUnknownTone = errors.New("UNKNOWN_TONE")

type Tone string

const (
	ToneFriendly     Tone = "Friendly"
	ToneProfessional Tone = "Professional"
	ToneShort        Tone = "Short"
)

// ParseTone accepts a tone name in any case. Empty input selects Professional.
func ParseTone(s string) (Tone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "professional":
		return ToneProfessional, nil
	case "friendly":
		return ToneFriendly, nil
	case "short":
		return ToneShort, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTone, s)
}

type Message struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var sentenceBreak = regexp.MustCompile(`[\n.]`)

// Draft writes a follow-up email for one job. Placeholders in square brackets
// are left for the user to fill in.
func Draft(job board.Job, tone Tone) Message {
	if tone == "" {
		tone = ToneProfessional
	}
	company := strings.TrimSpace(job.Company)
	role := strings.TrimSpace(job.Role)
	location := strings.TrimSpace(job.Location)

	var b strings.Builder
	b.WriteString("Hi [Name],\n")
	if tone != ToneShort {
		b.WriteString("\n")
	}

	status := statusLine(job.Status)
	if company != "" && role != "" {
		fmt.Fprintf(&b, "I hope you're doing well. %s for the %s position at %s.\n",
			strings.TrimSuffix(status, "."), role, company)
	} else {
		fmt.Fprintf(&b, "I hope you're doing well. %s\n", status)
	}

	b.WriteString(interestLine(tone))
	b.WriteString("\n")
	if tone == ToneShort {
		b.WriteString("Would you be able to share any updates?")
	} else {
		b.WriteString("Would you be able to share any updates on the timeline and next steps?")
	}

	if first := firstSentence(job.Notes); first != "" {
		fmt.Fprintf(&b, "\n\nAs mentioned earlier, %s.", first)
	}
	if location != "" && tone != ToneShort {
		fmt.Fprintf(&b, "\n\nRegarding location, %s works well for me, and I'm also open to other options.", location)
	}
	b.WriteString("\n\nBest regards,\n[Your Name]")

	return Message{Subject: subject(company, role), Body: b.String()}
}

func subject(company, role string) string {
	switch {
	case role != "" && company != "":
		return fmt.Sprintf("Following up on my %s application at %s", role, company)
	case role != "":
		return fmt.Sprintf("Following up on my %s application", role)
	}
	return "Following up on my application"
}

func statusLine(status intent.Status) string {
	switch status {
	case intent.StatusApplied:
		return "I wanted to follow up on my application."
	case intent.StatusInterview:
		return "I wanted to follow up regarding the interview process."
	case intent.StatusOffer:
		return "Thank you again for the offer. I'm excited about the opportunity and wanted to ask about the next steps."
	case intent.StatusRejected:
		return "Thank you again for your time. I wanted to stay in touch regarding future opportunities."
	}
	return "I wanted to follow up and check in."
}

func interestLine(tone Tone) string {
	switch tone {
	case ToneShort:
		return "I remain very interested in the role."
	case ToneProfessional:
		return "I remain very interested in the role and would appreciate any updates you can share."
	}
	return "I'm still very interested and would love to hear if there are any updates."
}

func firstSentence(notes string) string {
	for _, part := range sentenceBreak.Split(notes, -1) {
		if s := strings.TrimSpace(part); s != "" {
			return s
		}
	}
	return ""
}
