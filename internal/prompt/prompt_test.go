package prompt

import (
	"errors"
	"strings"
	"testing"
)

func TestCode_VagueQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"empty", "", "Create a practical Go example"},
		{"short", "  sort  ", "Create a practical Go example"},
		{"specific", "reverse a linked list", "reverse a linked list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Code("Go", tt.question)
			if !strings.Contains(p, tt.want) {
				t.Errorf("prompt missing %q:\n%s", tt.want, p)
			}
		})
	}
}

func TestCode_LowercasesClass(t *testing.T) {
	p := Code("TypeScript", "debounce an input handler")
	if !strings.Contains(p, "<pre><code class='typescript'>") {
		t.Errorf("expected lower-case class attribute:\n%s", p)
	}
}

func TestWordRange(t *testing.T) {
	tests := []struct {
		in     int
		lo, hi int
	}{
		{500, 650, 750},
		{0, 150, 250},
		{-180, 0, 100},
		{-500, 0, 100},
	}
	for _, tt := range tests {
		lo, hi := WordRange(tt.in)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("WordRange(%d) = %d,%d want %d,%d", tt.in, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestDocument(t *testing.T) {
	p := Document("Go", 500)
	if !strings.Contains(p, DefaultDocumentTopic) {
		t.Errorf("short topic should fall back to default:\n%s", p)
	}
	if !strings.Contains(p, "between 650 and 750 words") {
		t.Errorf("word range missing:\n%s", p)
	}

	p = Document("Garbage collection in Go", 100)
	if !strings.Contains(p, "Garbage collection in Go") {
		t.Errorf("topic missing:\n%s", p)
	}
}

func TestStory(t *testing.T) {
	tests := []struct {
		title, form         string
		wantTitle, wantForm string
	}{
		{"", "", DefaultStoryTitle, DefaultStoryForm},
		{"Ox", "Po", DefaultStoryTitle, DefaultStoryForm},
		{"The Lighthouse", "Fable", "The Lighthouse", "Fable"},
	}
	for _, tt := range tests {
		p := Story(tt.title, tt.form)
		if !strings.Contains(p, "'"+tt.wantTitle+"'") {
			t.Errorf("Story(%q, %q): title %q missing", tt.title, tt.form, tt.wantTitle)
		}
		if !strings.Contains(p, "'"+tt.wantForm+"'") {
			t.Errorf("Story(%q, %q): form %q missing", tt.title, tt.form, tt.wantForm)
		}
	}
}

func TestBuild(t *testing.T) {
	if _, err := Build(KindCode, Request{Question: "anything at all"}); !errors.Is(err, ErrMissingField) {
		t.Errorf("code without language: err = %v, want ErrMissingField", err)
	}
	if _, err := Build(Kind("poem"), Request{}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind: err = %v, want ErrUnknownKind", err)
	}

	got, err := Build(KindStory, Request{StoryTitle: "Night Train", StoryForm: "Mystery"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Story("Night Train", "Mystery") {
		t.Error("Build(story) should match Story")
	}
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"code", " Document ", "STORY"} {
		if _, err := ParseKind(in); err != nil {
			t.Errorf("ParseKind(%q): %v", in, err)
		}
	}
	if _, err := ParseKind("essay"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(essay) err = %v", err)
	}
}

func TestPayload(t *testing.T) {
	req := Request{Language: "Go", Question: "q", DocumentTopic: "t", WordCount: 3, StoryTitle: "s", StoryForm: "f"}
	if got := Payload(KindDocument, req); got != (Request{DocumentTopic: "t", WordCount: 3}) {
		t.Errorf("document payload = %+v", got)
	}
	if got := Payload(KindCode, req); got != (Request{Language: "Go", Question: "q"}) {
		t.Errorf("code payload = %+v", got)
	}
}
