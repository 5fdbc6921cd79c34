package normalize

import (
	"regexp"
	"testing"
)

func mustParse(t *testing.T, s string) Document {
	t.Helper()
	doc, err := ParseHTML(s)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	return doc
}

func TestParseHTML_Malformed(t *testing.T) {
	doc := mustParse(t, "<p>unclosed <b>bold <pre>code</p></div>")
	if doc.Find("p") == nil {
		t.Fatal("expected a paragraph from malformed markup")
	}
	if doc.Find("pre") == nil {
		t.Fatal("expected a pre element from malformed markup")
	}
}

func TestDocument_FindElementUsesSoleString(t *testing.T) {
	code := regexp.MustCompile(`(?i)code`)

	doc := mustParse(t, "<h2><b>Code</b></h2>")
	if doc.FindElement(code, "h1", "h2") == nil {
		t.Error("expected heading with single nested string to match")
	}

	doc = mustParse(t, "<h2>Code <i>sample</i></h2>")
	if doc.FindElement(code, "h1", "h2") != nil {
		t.Error("heading with mixed content should not match")
	}
}

func TestDocument_FindString(t *testing.T) {
	doc := mustParse(t, "<div><span>Conclusion: done</span></div>")
	n := doc.FindString(regexp.MustCompile(`(?i)conclusion:`))
	if n == nil {
		t.Fatal("expected text node")
	}
	if n.Tag() != "" {
		t.Errorf("text node tag = %q, want empty", n.Tag())
	}
	if n.Parent() == nil || n.Parent().Tag() != "span" {
		t.Errorf("expected span parent")
	}
	if n.Text() != "Conclusion: done" {
		t.Errorf("Text() = %q", n.Text())
	}
}

func TestNode_NextVisitsDescendantsFirst(t *testing.T) {
	doc := mustParse(t, "<div><p>inner</p></div><p>outer</p>")
	div := doc.Find("div")
	if got := textOf(div.Next("p")); got != "inner" {
		t.Errorf("Next(p) = %q, want inner", got)
	}
	inner := doc.Find("p")
	if got := textOf(inner.Next("p")); got != "outer" {
		t.Errorf("Next(p) from inner = %q, want outer", got)
	}
	if outer := doc.FindAll("p")[1]; outer.Next("p") != nil {
		t.Error("expected no paragraph after the last one")
	}
}

func TestNode_TextTrimsSubtree(t *testing.T) {
	doc := mustParse(t, "<pre>\n  <code>  x := 1\n</code>\n</pre>")
	if got := doc.Find("pre").Text(); got != "x := 1" {
		t.Errorf("Text() = %q", got)
	}
}
