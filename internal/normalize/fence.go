package normalize

import (
	"regexp"
	"strings"
)

// fencePattern matches one fenced block. The body is non-greedy so a block
// never runs into the next fence pair.
var fencePattern = regexp.MustCompile("```(\\w+)?\\n([\\s\\S]*?)\\n```")

// CodeBlock is a single fenced snippet and its optional language hint.
type CodeBlock struct {
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}

// FencedBlocks returns every fenced block in text, in order.
func FencedBlocks(text string) []CodeBlock {
	matches := fencePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	blocks := make([]CodeBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, CodeBlock{Language: m[1], Code: m[2]})
	}
	return blocks
}

// ExtractFencedBlocks joins the interiors of all fenced blocks with a blank
// line. It reports false when text has no fence.
func ExtractFencedBlocks(text string) (string, bool) {
	blocks := FencedBlocks(text)
	if len(blocks) == 0 {
		return "", false
	}
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Code
	}
	return strings.Join(parts, "\n\n"), true
}
