package normalize

import (
	stdhtml "html"
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figure": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tr": true, "ul": true,
}

func looksLikeMarkup(s string) bool {
	return strings.Contains(s, "<") && strings.Contains(s, ">")
}

// PlainText strips markup from s. Block elements are separated by a blank
// line and <br> becomes a newline so paragraph structure survives. Text
// without markup is returned unchanged.
func PlainText(s string) string {
	if !looksLikeMarkup(s) {
		return s
	}
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}
	var b strings.Builder
	writeText(&b, root)
	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br":
			b.WriteString("\n")
			return
		}
	}
	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		b.WriteString("\n\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteString("\n\n")
	}
}

// Paragraphs returns the trimmed, non-blank paragraphs of s after markup
// has been stripped.
func Paragraphs(s string) []string {
	var out []string
	for _, p := range blankLine.Split(PlainText(s), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatDocument renders s as a sequence of <p> elements regardless of
// whether it arrived as HTML or plain prose. Formatting its own output
// yields the same output.
func FormatDocument(s string) string {
	var b strings.Builder
	for _, p := range Paragraphs(s) {
		b.WriteString("<p>")
		b.WriteString(stdhtml.EscapeString(p))
		b.WriteString("</p>")
	}
	return b.String()
}
