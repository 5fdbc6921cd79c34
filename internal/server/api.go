package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/efebarandurmaz/codeai/internal/catalog"
	"github.com/efebarandurmaz/codeai/internal/normalize"
	"github.com/efebarandurmaz/codeai/internal/observability"
	"github.com/efebarandurmaz/codeai/internal/prompt"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// allowMethod answers 405 unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeBody reads a JSON body into dst, answering 413 or 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

type textRequest struct {
	Text string `json:"text"`
}

type normalizeRequest struct {
	Text           string `json:"text"`
	StripReasoning *bool  `json:"strip_reasoning,omitempty"`
}

type normalizeResponse struct {
	normalize.ParsedResult
	Source normalize.Source `json:"source"`
}

// handleNormalize handles POST /v1/normalize
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req normalizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	parser := s.parser
	if req.StripReasoning != nil && *req.StripReasoning != s.normOpts.StripReasoning {
		opts := s.normOpts
		opts.StripReasoning = *req.StripReasoning
		parser = normalize.NewParser(opts)
	}

	_, span := observability.StartNormalizeSpan(r.Context(), observability.SpanNormalize, len(req.Text))
	start := time.Now()
	out := parser.Normalize(req.Text)
	s.metrics.RecordNormalize(observability.SpanNormalize, string(out.Source), len(req.Text), time.Since(start))
	observability.RecordNormalizeResult(span, string(out.Source), len(out.Result.Body))
	span.End()

	writeJSON(w, http.StatusOK, normalizeResponse{ParsedResult: out.Result, Source: out.Source})
}

// handleSegment handles POST /v1/segment
func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req textRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	_, span := observability.StartNormalizeSpan(r.Context(), observability.SpanSegment, len(req.Text))
	start := time.Now()
	res := normalize.Segment(req.Text)
	source := "code"
	if res.Body == normalize.NoCodePlaceholder {
		source = "no_code"
	}
	s.metrics.RecordNormalize(observability.SpanSegment, source, len(req.Text), time.Since(start))
	observability.RecordNormalizeResult(span, source, len(res.Body))
	span.End()

	writeJSON(w, http.StatusOK, res)
}

type formatResponse struct {
	HTML       string   `json:"html"`
	Paragraphs []string `json:"paragraphs"`
}

// handleFormat handles POST /v1/format
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req textRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	_, span := observability.StartNormalizeSpan(r.Context(), observability.SpanFormat, len(req.Text))
	paragraphs := normalize.Paragraphs(req.Text)
	if paragraphs == nil {
		paragraphs = []string{}
	}
	html := normalize.FormatDocument(req.Text)
	s.metrics.RecordFormat()
	span.End()

	writeJSON(w, http.StatusOK, formatResponse{HTML: html, Paragraphs: paragraphs})
}

type promptResponse struct {
	Kind     prompt.Kind `json:"kind"`
	Prompt   string      `json:"prompt"`
	Endpoint string      `json:"endpoint"`
	Curl     string      `json:"curl"`
}

// handlePrompt handles POST /v1/prompts/{kind}
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	kind, err := prompt.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req prompt.Request
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.catalog.CheckRequest(kind, req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, span := observability.StartPromptSpan(r.Context(), string(kind))
	defer span.End()

	text, err := prompt.Build(kind, req)
	if err != nil {
		observability.RecordError(span, err)
		status := http.StatusInternalServerError
		if errors.Is(err, prompt.ErrMissingField) || errors.Is(err, prompt.ErrUnknownKind) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	endpoint := s.catalog.Endpoint(kind)
	curl, err := catalog.CurlCommand(endpoint, prompt.Payload(kind, req))
	if err != nil {
		observability.RecordError(span, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.RecordPrompt(string(kind))

	writeJSON(w, http.StatusOK, promptResponse{
		Kind:     kind,
		Prompt:   text,
		Endpoint: endpoint,
		Curl:     curl,
	})
}

type suggestResponse struct {
	Input      string `json:"input"`
	Suggestion string `json:"suggestion"`
	Corrected  bool   `json:"corrected"`
}

// handleSuggest handles GET /v1/languages/suggest?q=
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	suggestion := s.catalog.SuggestLanguage(q)
	writeJSON(w, http.StatusOK, suggestResponse{
		Input:      q,
		Suggestion: suggestion,
		Corrected:  suggestion != q,
	})
}

type catalogResponse struct {
	Languages  []string               `json:"languages"`
	StoryForms []string               `json:"story_forms"`
	BaseURL    string                 `json:"base_url"`
	Endpoints  map[prompt.Kind]string `json:"endpoints"`
}

// handleCatalog handles GET /v1/catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Languages:  s.catalog.Languages,
		StoryForms: s.catalog.StoryForms,
		BaseURL:    s.catalog.BaseURL,
		Endpoints:  s.catalog.Endpoints(),
	})
}
