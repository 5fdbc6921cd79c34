package normalize

import "testing"

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ParsedResult
	}{
		{
			name: "single region",
			in:   "<p>Adds numbers.</p><code>a + b</code>",
			want: ParsedResult{Description: "Adds numbers.", Body: "a + b"},
		},
		{
			name: "only first region is body",
			in:   "First: <code>a()</code> Then: <code>b()</code>",
			want: ParsedResult{Description: "First: Then: b()", Body: "a()"},
		},
		{
			name: "no code region",
			in:   "<p>Just prose.</p>",
			want: ParsedResult{Description: "Just prose.", Body: NoCodePlaceholder},
		},
		{
			name: "escaped angles in body",
			in:   "<code>&lt;br&gt;</code>",
			want: ParsedResult{Description: "", Body: "<br>"},
		},
		{
			name: "entities in description",
			in:   "Tom &amp; Jerry <code>x</code>",
			want: ParsedResult{Description: "Tom & Jerry", Body: "x"},
		},
		{
			name: "multiline region with attributes",
			in:   "Intro\n<code class=\"go\">\nfunc f() {\n}\n</code>\nOutro",
			want: ParsedResult{Description: "Intro Outro", Body: "func f() {\n}"},
		},
		{
			name: "upper case tag",
			in:   "Text <CODE>y</CODE>",
			want: ParsedResult{Description: "Text", Body: "y"},
		},
		{
			name: "empty input",
			in:   "",
			want: ParsedResult{Body: NoCodePlaceholder},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Segment(tt.in); got != tt.want {
				t.Errorf("Segment(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSegment_CodeTagPrefixNotMatched(t *testing.T) {
	got := Segment("<codex>not code</codex>")
	if got.Body != NoCodePlaceholder {
		t.Errorf("body = %q, want placeholder", got.Body)
	}
	if got.Description != "not code" {
		t.Errorf("description = %q", got.Description)
	}
}
