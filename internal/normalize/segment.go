package normalize

import (
	"html"
	"regexp"
	"strings"
)

var (
	// codeRegion is deliberately a single non-greedy match; only the first
	// region is ever taken.
	codeRegion = regexp.MustCompile(`(?is)<code(?:\s[^>]*)?>(.*?)</code>`)
	anyTag     = regexp.MustCompile(`<[^>]*>`)
)

// Segment is the lightweight splitter for call sites that do not need the
// full tree parse. The first <code> region becomes the body and everything
// else, stripped of markup, becomes the description.
func Segment(text string) ParsedResult {
	loc := codeRegion.FindStringSubmatchIndex(text)
	if loc == nil {
		return ParsedResult{
			Description: stripMarkup(text),
			Body:        NoCodePlaceholder,
		}
	}
	body := angleUnescaper.Replace(strings.TrimSpace(text[loc[2]:loc[3]]))
	rest := text[:loc[0]] + " " + text[loc[1]:]
	return ParsedResult{
		Description: stripMarkup(rest),
		Body:        body,
	}
}

// stripMarkup removes tags, decodes entities and collapses whitespace runs.
func stripMarkup(s string) string {
	s = anyTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
