package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var blankLine = regexp.MustCompile(`\n\s*\n`)

// Parser normalizes raw model output. A Parser holds no mutable state and is
// safe for concurrent use.
type Parser struct {
	opts  Options
	parse ParseFunc
}

// NewParser returns a Parser backed by the HTML5 tree parser.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts, parse: ParseHTML}
}

var defaultParser = NewParser(Options{})

// Normalize runs the full pipeline with default options.
func Normalize(raw string) ParsedResult {
	return defaultParser.Normalize(raw).Result
}

// Normalize tries the fence, HTML and plain-text stages in order. It never
// fails: an unexpected error or panic becomes a diagnostic result that
// carries the raw text as its body.
func (p *Parser) Normalize(raw string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = diagnostic(raw, fmt.Errorf("%v", r))
		}
	}()

	text := strings.ToValidUTF8(raw, "\uFFFD")
	if p.opts.StripReasoning {
		text = StripThinkingTags(text)
	}

	res, ok, err := p.fromFence(text)
	if err != nil {
		return diagnostic(raw, err)
	}
	if ok {
		return Outcome{Result: res, Source: SourceFence}
	}

	doc, err := p.parse(text)
	if err != nil {
		return diagnostic(raw, err)
	}
	res = p.fromDocument(doc, text)
	if res == (ParsedResult{}) {
		if strings.TrimSpace(text) != "" {
			res = splitParagraphs(text)
		}
		return Outcome{Result: res, Source: SourcePlain}
	}
	return Outcome{Result: res, Source: SourceHTML}
}

// fromFence short-circuits plain fenced code. Blank fences and fenced
// content that itself looks like HTML are left to the full parse.
func (p *Parser) fromFence(text string) (ParsedResult, bool, error) {
	code, ok := ExtractFencedBlocks(text)
	if !ok || strings.TrimSpace(code) == "" {
		return ParsedResult{}, false, nil
	}
	doc, err := p.parse(code)
	if err != nil {
		return ParsedResult{}, false, err
	}
	if hasStructure(doc) {
		return ParsedResult{}, false, nil
	}
	return ParsedResult{
		Description: DefaultFenceDescription,
		Body:        code,
		Conclusion:  DefaultFenceConclusion,
	}, true, nil
}

func (p *Parser) fromDocument(doc Document, text string) ParsedResult {
	var res ParsedResult

	res.Description = firstMatch(doc, descriptionRules, nil)

	res.Body = firstMatch(doc, bodyRules, nil)
	if res.Body == "" {
		res.Body, _ = ExtractFencedBlocks(text)
	}
	res.Body = angleUnescaper.Replace(res.Body)

	distinct := func(s string) bool { return s != res.Description }
	res.Conclusion = firstMatch(doc, conclusionRules, distinct)

	minRunes := p.opts.minSubstantial()
	if res.Description == "" {
		res.Description = substantialBlock(doc, minRunes, false, func(s string) bool { return s != res.Conclusion })
	}
	if res.Conclusion == "" {
		res.Conclusion = substantialBlock(doc, minRunes, true, distinct)
	}
	return res
}

// splitParagraphs is the last resort for text with no recognizable
// structure: first block describes, last concludes, the rest is the body.
func splitParagraphs(text string) ParsedResult {
	parts := blankLine.Split(strings.TrimSpace(text), -1)
	switch {
	case len(parts) >= 3:
		return ParsedResult{
			Description: parts[0],
			Body:        strings.Join(parts[1:len(parts)-1], "\n\n"),
			Conclusion:  parts[len(parts)-1],
		}
	case len(parts) == 2:
		return ParsedResult{Description: parts[0], Body: parts[1]}
	default:
		return ParsedResult{Body: parts[0]}
	}
}

func diagnostic(raw string, err error) Outcome {
	return Outcome{
		Result: ParsedResult{
			Description: ErrorDescription,
			Body:        raw,
			Conclusion:  "Error: " + err.Error(),
		},
		Source: SourceError,
	}
}
