package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	headingTags       = []string{"h1", "h2", "h3"}
	structuralTags    = []string{"h1", "h2", "p", "pre"}
	descriptionWord   = regexp.MustCompile(`(?i)description`)
	descriptionMarker = regexp.MustCompile(`(?i)description:`)
	conclusionWord    = regexp.MustCompile(`(?i)conclusion`)
	conclusionMarker  = regexp.MustCompile(`(?i)conclusion:`)
	codeWord          = regexp.MustCompile(`(?i)code`)

	angleUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">")
)

// rule extracts one candidate field from a document. An empty string means
// the rule did not match and the next rule in the chain is tried.
type rule func(doc Document) string

// firstMatch runs rules in order and returns the first non-empty result
// that accept allows.
func firstMatch(doc Document, rules []rule, accept func(string) bool) string {
	for _, r := range rules {
		if s := r(doc); s != "" && (accept == nil || accept(s)) {
			return s
		}
	}
	return ""
}

func textOf(n Node) string {
	if n == nil {
		return ""
	}
	return n.Text()
}

// paragraphAfterHeading finds a heading whose text matches pattern and
// takes the paragraph that follows it.
func paragraphAfterHeading(pattern *regexp.Regexp) rule {
	return func(doc Document) string {
		h := doc.FindElement(pattern, headingTags...)
		if h == nil {
			return ""
		}
		return textOf(h.Next("p"))
	}
}

// paragraphAtMarker finds inline marker text such as "Conclusion:" and takes
// its enclosing paragraph, or the next paragraph when it is not inside one.
func paragraphAtMarker(pattern *regexp.Regexp) rule {
	return func(doc Document) string {
		s := doc.FindString(pattern)
		if s == nil {
			return ""
		}
		if p := s.Parent(); p != nil && p.Tag() == "p" {
			return p.Text()
		}
		return textOf(s.Next("p"))
	}
}

func firstParagraph(doc Document) string {
	return textOf(doc.Find("p"))
}

func lastParagraph(doc Document) string {
	ps := doc.FindAll("p")
	if len(ps) < 2 {
		return ""
	}
	return ps[len(ps)-1].Text()
}

// preText prefers a nested code element over the pre's own text.
func preText(pre Node) string {
	if pre == nil {
		return ""
	}
	if code := pre.Find("code"); code != nil {
		return code.Text()
	}
	return pre.Text()
}

func preCode(doc Document) string {
	pre := doc.Find("pre")
	if pre == nil {
		return ""
	}
	return textOf(pre.Find("code"))
}

func preOwn(doc Document) string {
	return textOf(doc.Find("pre"))
}

func standaloneCode(doc Document) string {
	return textOf(doc.Find("code"))
}

func preAfterCodeHeading(doc Document) string {
	h := doc.FindElement(codeWord, headingTags...)
	if h == nil {
		return ""
	}
	return preText(h.Next("pre"))
}

var (
	descriptionRules = []rule{
		paragraphAfterHeading(descriptionWord),
		paragraphAtMarker(descriptionMarker),
		firstParagraph,
	}
	bodyRules = []rule{
		preCode,
		preOwn,
		standaloneCode,
		preAfterCodeHeading,
	}
	conclusionRules = []rule{
		paragraphAfterHeading(conclusionWord),
		paragraphAtMarker(conclusionMarker),
		lastParagraph,
	}
)

// substantialBlock scans paragraphs and divs for the first block longer
// than minRunes that accept allows. reverse scans from the end.
func substantialBlock(doc Document, minRunes int, reverse bool, accept func(string) bool) string {
	blocks := doc.FindAll("p", "div")
	for i := range blocks {
		idx := i
		if reverse {
			idx = len(blocks) - 1 - i
		}
		text := blocks[idx].Text()
		if utf8.RuneCountInString(text) > minRunes && accept(text) {
			return text
		}
	}
	return ""
}

func hasStructure(doc Document) bool {
	for _, tag := range structuralTags {
		if doc.Find(tag) != nil {
			return true
		}
	}
	return false
}
