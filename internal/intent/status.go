// internal/intent/status.go
package intent

import "strings"

// statusKeywords is checked in order; the first status with a keyword
// contained in the text wins.
var statusKeywords = []struct {
	status   Status
	keywords []string
}{
	{StatusApplied, []string{"applied", "basvur"}},
	{StatusInterview, []string{"interview", "mulakat"}},
	{StatusOffer, []string{"offer", "teklif"}},
	{StatusRejected, []string{"rejected", "red"}},
}

// ResolveStatus maps free text in English or Turkish onto a canonical status.
// ok is false when no keyword occurs anywhere in the normalized text.
func ResolveStatus(text string) (status Status, ok bool) {
	x := Normalize(text)
	if x == "" {
		return "", false
	}
	for _, entry := range statusKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(x, kw) {
				return entry.status, true
			}
		}
	}
	return "", false
}

func resolveStatusPtr(text string) *Status {
	s, ok := ResolveStatus(text)
	if !ok {
		return nil
	}
	return &s
}
