// internal/intent/fuzzy.go
package intent

import "github.com/agnivade/levenshtein"

// maxTypoDistance is the largest edit distance still treated as a typo of a
// short control keyword.
const maxTypoDistance = 2

// EditDistance is the Levenshtein distance between a and b, counted in runes.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// IsCloseMatch normalizes both sides and reports whether they are equal or
// within maxTypoDistance edits of each other.
func IsCloseMatch(input, target string) bool {
	a, b := Normalize(input), Normalize(target)
	if a == b {
		return true
	}
	return EditDistance(a, b) <= maxTypoDistance
}
