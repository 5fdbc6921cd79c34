// Package catalog holds the presentation-layer configuration: the languages
// and story forms offered to users and the upstream generate endpoints.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/efebarandurmaz/codeai/internal/prompt"
)

// DefaultBaseURL is the upstream generate API root.
const DefaultBaseURL = "http://localhost:8000/v1/generate"

// DefaultLanguages are the programming languages offered for code requests.
var DefaultLanguages = []string{
	"Python", "JavaScript", "Java", "C++", "C#", "PHP", "Ruby", "Go", "Swift", "Kotlin",
	"TypeScript", "Rust", "Scala", "Perl", "R", "Dart", "Bash", "PowerShell", "SQL",
	"HTML", "CSS", "SCSS", "Shell", "Objective-C", "Lua", "Matlab", "Assembly",
}

// DefaultStoryForms are the forms offered for story requests.
var DefaultStoryForms = []string{
	"Short Story", "Novel", "Poem", "Fairy Tale", "Fable", "Science Fiction",
	"Fantasy", "Horror", "Mystery", "Romance", "Historical Fiction", "Flash Fiction",
}

// Catalog is safe for concurrent reads once built.
type Catalog struct {
	Languages  []string `json:"languages"`
	StoryForms []string `json:"story_forms"`
	BaseURL    string   `json:"base_url"`
}

// Default returns a Catalog populated with the built-in lists.
func Default() *Catalog {
	return &Catalog{
		Languages:  slices.Clone(DefaultLanguages),
		StoryForms: slices.Clone(DefaultStoryForms),
		BaseURL:    DefaultBaseURL,
	}
}

// New fills any empty field from the defaults.
func New(languages, storyForms []string, baseURL string) *Catalog {
	c := Default()
	if len(languages) > 0 {
		c.Languages = slices.Clone(languages)
	}
	if len(storyForms) > 0 {
		c.StoryForms = slices.Clone(storyForms)
	}
	if baseURL != "" {
		c.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// Endpoint returns the upstream URL for kind.
func (c *Catalog) Endpoint(kind prompt.Kind) string {
	return c.BaseURL + "/generate-" + string(kind)
}

// Endpoints maps every prompt kind to its URL.
func (c *Catalog) Endpoints() map[prompt.Kind]string {
	out := make(map[prompt.Kind]string, len(prompt.Kinds))
	for _, k := range prompt.Kinds {
		out[k] = c.Endpoint(k)
	}
	return out
}

// HasStoryForm reports whether form is one of the offered story forms,
// ignoring case.
func (c *Catalog) HasStoryForm(form string) bool {
	return slices.ContainsFunc(c.StoryForms, func(f string) bool {
		return strings.EqualFold(f, form)
	})
}

// ErrUnknownStoryForm is returned for a story form the catalog does not offer.
var ErrUnknownStoryForm = errors.New("unknown story form")

// CheckRequest rejects story requests naming a form outside the catalog.
// Forms too short to use are left to the prompt's default.
func (c *Catalog) CheckRequest(kind prompt.Kind, req prompt.Request) error {
	if kind != prompt.KindStory {
		return nil
	}
	form := strings.TrimSpace(req.StoryForm)
	if len([]rune(form)) < prompt.MinFormLen || c.HasStoryForm(form) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownStoryForm, form)
}

// CurlCommand renders a shell command that POSTs payload as JSON to url.
func CurlCommand(url string, payload any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	body := strings.TrimSuffix(buf.String(), "\n")
	body = strings.ReplaceAll(body, "'", `'\''`)

	var b strings.Builder
	fmt.Fprintf(&b, "curl -X POST %q \\\n", url)
	b.WriteString("  -H \"Content-Type: application/json\" \\\n")
	fmt.Fprintf(&b, "  -d '%s'", body)
	return b.String(), nil
}
