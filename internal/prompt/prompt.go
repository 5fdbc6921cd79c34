// Package prompt builds the instructions sent upstream for code, document
// and story generation. Vague inputs are replaced with usable defaults so a
// prompt can always be produced.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects a prompt template.
type Kind string

const (
	KindCode     Kind = "code"
	KindDocument Kind = "document"
	KindStory    Kind = "story"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindCode, KindDocument, KindStory}

var (
	ErrUnknownKind  = errors.New("unknown prompt kind")
	ErrMissingField = errors.New("missing required field")
)

// Fallbacks for inputs too short to be meaningful.
const (
	DefaultDocumentTopic = "Comprehensive Informational Document"
	DefaultStoryTitle    = "An Untold Tale"
	DefaultStoryForm     = "General Fiction"

	minQuestionLen = 10
	minTopicLen    = 5
	minTitleLen    = 3

	// MinFormLen is the shortest story form used as given; shorter forms
	// fall back to DefaultStoryForm.
	MinFormLen = 3

	wordCountPadding = 200
	minWordCount     = 50
	wordCountSlack   = 50
)

// Request carries the union of fields accepted by the generate endpoints.
// JSON names match the upstream request bodies.
type Request struct {
	Language      string `json:"language,omitempty"`
	Question      string `json:"question,omitempty"`
	DocumentTopic string `json:"document_topic,omitempty"`
	WordCount     int    `json:"word_count,omitempty"`
	StoryTitle    string `json:"story_title,omitempty"`
	StoryForm     string `json:"story_form,omitempty"`
}

// ParseKind maps a case-insensitive name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Build renders the prompt for kind from req.
func Build(kind Kind, req Request) (string, error) {
	switch kind {
	case KindCode:
		if strings.TrimSpace(req.Language) == "" {
			return "", fmt.Errorf("%w: language", ErrMissingField)
		}
		return Code(req.Language, req.Question), nil
	case KindDocument:
		return Document(req.DocumentTopic, req.WordCount), nil
	case KindStory:
		return Story(req.StoryTitle, req.StoryForm), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Payload returns the request body the upstream endpoint for kind expects.
func Payload(kind Kind, req Request) Request {
	switch kind {
	case KindCode:
		return Request{Language: req.Language, Question: req.Question}
	case KindDocument:
		return Request{DocumentTopic: req.DocumentTopic, WordCount: req.WordCount}
	case KindStory:
		return Request{StoryTitle: req.StoryTitle, StoryForm: req.StoryForm}
	}
	return Request{}
}

func tooShort(s string, n int) bool {
	return len([]rune(strings.TrimSpace(s))) < n
}

// Code asks for a single HTML string holding a short explanation followed by
// a highlighted code block in language.
func Code(language, question string) string {
	if tooShort(question, minQuestionLen) {
		question = fmt.Sprintf("Create a practical %s example", language)
	}
	class := strings.ToLower(language)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert programming assistant. Write %s code for this request: %q. ", language, question)
	b.WriteString("Follow these formatting rules exactly: ")
	b.WriteString("1. Reply with one complete HTML string, not Markdown. ")
	fmt.Fprintf(&b, "2. Put the code inside <pre><code class='%s'> and close it with </code></pre>. ", class)
	b.WriteString("3. Start with a short explanation of the code in a <p> element before the code block. ")
	b.WriteString("4. Do not emit raw newline or tab characters; use <br> for line breaks and &nbsp; for indentation. ")
	b.WriteString("5. The code must be complete and free of syntax errors. ")
	b.WriteString("6. The HTML must render correctly in a browser.")
	return b.String()
}

// WordRange returns the word-count bounds a document prompt asks for.
func WordRange(wordCount int) (lo, hi int) {
	target := max(wordCount+wordCountPadding, minWordCount)
	return target - wordCountSlack, target + wordCountSlack
}

// Document asks for a structured HTML document on topic within a word range
// derived from wordCount.
func Document(topic string, wordCount int) string {
	if tooShort(topic, minTopicLen) {
		topic = DefaultDocumentTopic
	}
	lo, hi := WordRange(wordCount)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert technical writer. Write a well-structured HTML document on %q containing between %d and %d words.", topic, lo, hi)
	b.WriteString("\n\nRequirements:")
	fmt.Fprintf(&b, "\n1. The document must contain between %d and %d words; count carefully.", lo, hi)
	b.WriteString("\n2. Expand explanations if the text is too short and trim redundancy if it is too long.")
	b.WriteString("\n3. Put the title in an <h1> element and the introduction in a <p> element.")
	b.WriteString("\n4. Organize the body into sections with <h2> and <h3> subheadings.")
	b.WriteString("\n5. Finish with a conclusion that summarizes the key points.")
	b.WriteString("\n6. Return one continuous HTML string without raw newlines or tabs; use <br> and &nbsp; instead.")
	b.WriteString("\n7. Do not use Markdown.")
	fmt.Fprintf(&b, "\n8. Recount before answering: the final document must stay within %d-%d words.", lo, hi)
	return b.String()
}

// Story asks for a complete HTML story titled title in the given form.
func Story(title, form string) string {
	if tooShort(title, minTitleLen) {
		title = DefaultStoryTitle
	}
	if tooShort(form, MinFormLen) {
		form = DefaultStoryForm
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a skilled storyteller. Write a complete, engaging story titled '%s' in the form of a '%s'. ", title, form)
	b.WriteString("Requirements: ")
	b.WriteString("1. The story must have a beginning, middle and end and must not stop mid-sentence. ")
	b.WriteString("2. Reply with a single valid HTML string with no Markdown, escape sequences, raw newlines or tabs. ")
	b.WriteString("3. Put the title in an <h1> element and the story text in <p> elements; use <br> for line breaks. ")
	fmt.Fprintf(&b, "4. Follow the conventions of the %s form. ", form)
	b.WriteString("5. Keep the narrative flowing and avoid filler or repetition.")
	return b.String()
}
