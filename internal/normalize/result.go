// Package normalize recovers a fixed (description, body, conclusion) record
// from free-form model output that may be HTML, markdown fences, or plain
// prose. Every entry point is total: callers always get a renderable result.
package normalize

// Default strings used when a stage can only recover the body.
const (
	DefaultFenceDescription = "Generated code:"
	DefaultFenceConclusion  = "Code generation complete."
	ErrorDescription        = "Error parsing the response."
	NoCodePlaceholder       = "No executable code found."
)

// ParsedResult is the normalized view of one model response.
type ParsedResult struct {
	Description string `json:"description"`
	Body        string `json:"body"`
	Conclusion  string `json:"conclusion"`
}

// Source names the pipeline stage that produced a result.
type Source string

const (
	SourceFence Source = "fence"
	SourceHTML  Source = "html"
	SourcePlain Source = "plain"
	SourceError Source = "error"
)

// Outcome pairs a result with the stage that produced it.
type Outcome struct {
	Result ParsedResult `json:"result"`
	Source Source       `json:"source"`
}

// Options tunes the parser.
type Options struct {
	// MinSubstantialLength is the rune count a paragraph or div must exceed
	// to be picked by the weak description/conclusion fallback. Zero means 30.
	MinSubstantialLength int
	// StripReasoning removes <think>...</think> blocks before parsing.
	StripReasoning bool
}

const defaultMinSubstantialLength = 30

func (o Options) minSubstantial() int {
	if o.MinSubstantialLength <= 0 {
		return defaultMinSubstantialLength
	}
	return o.MinSubstantialLength
}
