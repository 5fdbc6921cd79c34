package normalize

import "testing"

func TestExtractFencedBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		found    bool
	}{
		{
			name:     "python fence",
			input:    "```python\ndef f(): pass\n```",
			expected: "def f(): pass",
			found:    true,
		},
		{
			name:     "untagged fence",
			input:    "```\nsome code\nmore code\n```",
			expected: "some code\nmore code",
			found:    true,
		},
		{
			name:     "two blocks joined",
			input:    "```go\na := 1\n```\nthen\n```\nb := 2\n```",
			expected: "a := 1\n\nb := 2",
			found:    true,
		},
		{
			name:     "adjacent blocks do not merge",
			input:    "```\nx\n```\n```\ny\n```",
			expected: "x\n\ny",
			found:    true,
		},
		{
			name:  "no fence",
			input: "plain code\nno fences here",
		},
		{
			name:  "unterminated fence",
			input: "```python\nprint(1)",
		},
		{
			name: "empty string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFencedBlocks(tt.input)
			if ok != tt.found {
				t.Fatalf("ExtractFencedBlocks() found = %v, want %v", ok, tt.found)
			}
			if got != tt.expected {
				t.Errorf("ExtractFencedBlocks() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFencedBlocks_LanguageHints(t *testing.T) {
	blocks := FencedBlocks("```go\nfmt.Println()\n```\n\n```\nls -la\n```")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Language != "go" || blocks[0].Code != "fmt.Println()" {
		t.Errorf("unexpected first block: %+v", blocks[0])
	}
	if blocks[1].Language != "" || blocks[1].Code != "ls -la" {
		t.Errorf("unexpected second block: %+v", blocks[1])
	}
}

func TestFencedBlocks_None(t *testing.T) {
	if blocks := FencedBlocks("<p>no code</p>"); blocks != nil {
		t.Errorf("expected nil, got %+v", blocks)
	}
}
