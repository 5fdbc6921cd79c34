package normalize

import (
	"slices"
	"testing"
)

func TestFormatDocument(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain paragraphs", "One.\n\nTwo.", "<p>One.</p><p>Two.</p>"},
		{"html paragraphs", "<p>One.</p><p>Two.</p>", "<p>One.</p><p>Two.</p>"},
		{"inline markup dropped", "<p>Use <b>bold</b> text</p>", "<p>Use bold text</p>"},
		{"line break kept", "<p>a<br>b</p>", "<p>a\nb</p>"},
		{"script removed", "<p>x</p><script>alert(1)</script>", "<p>x</p>"},
		{"comment removed", "<!-- note --><div>kept</div>", "<p>kept</p>"},
		{"text escaped", "Tom & Jerry", "<p>Tom &amp; Jerry</p>"},
		{"lone angle bracket", "a < b", "<p>a &lt; b</p>"},
		{"blank runs collapse", "A\n \n\t\n\nB", "<p>A</p><p>B</p>"},
		{"empty", "", ""},
		{"whitespace only", " \n\n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDocument(tt.in); got != tt.want {
				t.Errorf("FormatDocument(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatDocument_Idempotent(t *testing.T) {
	inputs := []string{
		"One.\n\nTwo & three.",
		"<h1>Title</h1><p>Body with \"quotes\".</p>",
		"<div>x<br>y</div>\n\nplain tail",
		"a < b > c",
	}
	for _, in := range inputs {
		once := FormatDocument(in)
		if twice := FormatDocument(once); twice != once {
			t.Errorf("FormatDocument not idempotent for %q:\nonce  %q\ntwice %q", in, once, twice)
		}
	}
}

func TestParagraphs_SameForPlainAndHTML(t *testing.T) {
	plain := Paragraphs("First block.\n\nSecond block.")
	markup := Paragraphs("<p>First block.</p>\n<p>Second block.</p>")
	if !slices.Equal(plain, markup) {
		t.Errorf("plain %q != markup %q", plain, markup)
	}
}

func TestPlainText_NoMarkupUnchanged(t *testing.T) {
	in := "  keep  \n\n spacing "
	if got := PlainText(in); got != in {
		t.Errorf("PlainText(%q) = %q", in, got)
	}
}
