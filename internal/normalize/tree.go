package normalize

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Document is the read-only view of a parsed markup tree that the
// extraction rules work against.
type Document interface {
	// Find returns the first element, in document order, with one of tags.
	Find(tags ...string) Node
	// FindAll returns every element with one of tags, in document order.
	FindAll(tags ...string) []Node
	// FindElement returns the first element with one of tags whose sole
	// string content matches pattern.
	FindElement(pattern *regexp.Regexp, tags ...string) Node
	// FindString returns the first text node matching pattern.
	FindString(pattern *regexp.Regexp) Node
}

// Node is an element or text node of a Document.
type Node interface {
	// Tag is the lower-case element name, or "" for text nodes.
	Tag() string
	Parent() Node
	// Text is the trimmed concatenation of all text below the node.
	Text() string
	// Find returns the first descendant element with one of tags.
	Find(tags ...string) Node
	// Next returns the first element named tag after this node in document
	// order, descendants included.
	Next(tag string) Node
}

// ParseFunc turns markup into a Document. It must tolerate malformed input.
type ParseFunc func(text string) (Document, error)

// ParseHTML builds a Document with the HTML5 parsing algorithm, which
// recovers from any malformed markup instead of failing.
func ParseHTML(text string) (Document, error) {
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return htmlDocument{root: root}, nil
}

type htmlDocument struct {
	root *html.Node
}

func (d htmlDocument) Find(tags ...string) Node {
	return wrap(findElement(d.root, tags, nil))
}

func (d htmlDocument) FindAll(tags ...string) []Node {
	var out []Node
	for n := range d.root.Descendants() {
		if isElement(n, tags) {
			out = append(out, htmlNode{n})
		}
	}
	return out
}

func (d htmlDocument) FindElement(pattern *regexp.Regexp, tags ...string) Node {
	return wrap(findElement(d.root, tags, func(n *html.Node) bool {
		s, ok := soleString(n)
		return ok && pattern.MatchString(s)
	}))
}

func (d htmlDocument) FindString(pattern *regexp.Regexp) Node {
	for n := range d.root.Descendants() {
		if n.Type == html.TextNode && pattern.MatchString(n.Data) {
			return htmlNode{n}
		}
	}
	return nil
}

type htmlNode struct {
	n *html.Node
}

func wrap(n *html.Node) Node {
	if n == nil {
		return nil
	}
	return htmlNode{n}
}

func (h htmlNode) Tag() string {
	if h.n.Type != html.ElementNode {
		return ""
	}
	return h.n.Data
}

func (h htmlNode) Parent() Node {
	return wrap(h.n.Parent)
}

func (h htmlNode) Text() string {
	if h.n.Type == html.TextNode {
		return strings.TrimSpace(h.n.Data)
	}
	var b strings.Builder
	for d := range h.n.Descendants() {
		if d.Type == html.TextNode {
			b.WriteString(d.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func (h htmlNode) Find(tags ...string) Node {
	return wrap(findElement(h.n, tags, nil))
}

func (h htmlNode) Next(tag string) Node {
	for n := following(h.n); n != nil; n = following(n) {
		if n.Type == html.ElementNode && n.Data == tag {
			return htmlNode{n}
		}
	}
	return nil
}

func isElement(n *html.Node, tags []string) bool {
	return n.Type == html.ElementNode && slices.Contains(tags, n.Data)
}

func findElement(root *html.Node, tags []string, pred func(*html.Node) bool) *html.Node {
	for n := range root.Descendants() {
		if isElement(n, tags) && (pred == nil || pred(n)) {
			return n
		}
	}
	return nil
}

// soleString follows single-child chains down to a text node, so
// <h2><b>Code</b></h2> yields "Code" while mixed content yields nothing.
func soleString(n *html.Node) (string, bool) {
	for {
		c := n.FirstChild
		if c == nil || c.NextSibling != nil {
			return "", false
		}
		if c.Type == html.TextNode {
			return c.Data, true
		}
		if c.Type != html.ElementNode {
			return "", false
		}
		n = c
	}
}

// following steps to the next node in document order.
func following(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}
