package catalog

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SuggestCutoff is the minimum similarity ratio for a spelling suggestion.
const SuggestCutoff = 0.6

// SuggestLanguage returns the canonical spelling of input. An exact match
// ignoring case wins; otherwise the most similar language scoring at least
// SuggestCutoff is returned. Input with no close match comes back unchanged
// and empty input yields "".
func (c *Catalog) SuggestLanguage(input string) string {
	if input == "" {
		return ""
	}
	needle := strings.ToLower(input)
	for _, lang := range c.Languages {
		if strings.ToLower(lang) == needle {
			return lang
		}
	}
	if i := closestMatch(needle, c.Languages, SuggestCutoff); i >= 0 {
		return c.Languages[i]
	}
	return input
}

// closestMatch returns the index of the candidate most similar to word, or
// -1 when none reaches cutoff. Ties go to the lexically greater candidate.
func closestMatch(word string, candidates []string, cutoff float64) int {
	target := strings.Split(word, "")
	m := difflib.NewMatcher(nil, target)

	best, bestScore, bestKey := -1, 0.0, ""
	for i, cand := range candidates {
		key := strings.ToLower(cand)
		m.SetSeq1(strings.Split(key, ""))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		score := m.Ratio()
		if score < cutoff {
			continue
		}
		if best < 0 || score > bestScore || (score == bestScore && key > bestKey) {
			best, bestScore, bestKey = i, score, key
		}
	}
	return best
}
