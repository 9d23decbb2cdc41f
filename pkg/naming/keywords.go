package naming

import (
	"errors"
	"fmt"
	"strings"
)

// MinKeywords is the fewest words a rename request accepts
const MinKeywords = 2

// ErrTooFewKeywords is returned when a rename request has fewer than MinKeywords words
var ErrTooFewKeywords = errors.New("naming: at least 2 keywords are required")

// ParseKeywords splits free text on whitespace
func ParseKeywords(text string) []string {
	return strings.Fields(text)
}

// Summary describes a rename request before it is applied
type Summary struct {
	Keywords  []string
	Estimate  int
	Required  int
	Names     []string
	Preview   []string
	Remaining int
}

// Sufficient reports whether the estimate covers the required count
func (s Summary) Sufficient() bool {
	return s.Estimate >= s.Required
}

// Numbered returns how many names the estimate says will need a number
func (s Summary) Numbered() int {
	if s.Sufficient() {
		return 0
	}
	return s.Required - s.Estimate
}

// Status renders the one-line feedback shown under the keyword field
func (s Summary) Status() string {
	if s.Sufficient() {
		return fmt.Sprintf("%d words → ~%d combinations (need %d)", len(s.Keywords), s.Estimate, s.Required)
	}
	return fmt.Sprintf("%d words → ~%d combinations, the remaining %d will be numbered",
		len(s.Keywords), s.Estimate, s.Numbered())
}

// Summarize generates required names from keyword text and keeps the first
// preview of them for display. Fewer than MinKeywords words is an error.
// Keywords and Estimate describe the words left after normalization.
func Summarize(text string, required, preview int) (Summary, error) {
	words := ParseKeywords(text)
	if len(words) < MinKeywords {
		return Summary{Keywords: words, Required: required}, ErrTooFewKeywords
	}

	used := NormalizeWords(words)
	names := Generate(words, required)
	if preview < 0 || preview > len(names) {
		preview = len(names)
	}
	return Summary{
		Keywords:  used,
		Estimate:  EstimateCombinations(len(used)),
		Required:  required,
		Names:     names,
		Preview:   names[:preview],
		Remaining: len(names) - preview,
	}, nil
}
