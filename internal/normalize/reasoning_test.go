package normalize

import "testing"

func TestStripThinkingTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no tags", "A plain answer.", "A plain answer."},
		{"single block", "Answer: <think>internal</think> result.", "Answer:  result."},
		{"multiple blocks", "First <think>r1</think> middle <think>r2</think> end.", "First  middle  end."},
		{"unclosed tag", "Some text before <think>reasoning that never ends", "Some text before"},
		{"multiline reasoning", "<think>Step 1\nStep 2</think>Final answer", "Final answer"},
		{"only tags", "<think>just thinking</think>", ""},
		{"whitespace", "  \n  <think>thoughts</think>  \n  Answer  \n  ", "Answer"},
		{"stray close before open", "a</think>b<think>c</think>d", "a</think>bd"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThinkingTags(tt.input); got != tt.expected {
				t.Errorf("StripThinkingTags(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
