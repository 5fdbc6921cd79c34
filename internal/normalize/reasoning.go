package normalize

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// StripThinkingTags removes <think>...</think> blocks that reasoning models
// prepend to their answer. An unclosed block drops everything after it.
func StripThinkingTags(s string) string {
	for {
		start := strings.Index(s, thinkOpen)
		if start == -1 {
			break
		}
		end := strings.Index(s[start:], thinkClose)
		if end == -1 {
			s = s[:start]
			break
		}
		s = s[:start] + s[start+end+len(thinkClose):]
	}
	return strings.TrimSpace(s)
}
