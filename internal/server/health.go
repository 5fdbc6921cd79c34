// Package server exposes the normalization core over HTTP together with
// health probes, metrics and graceful shutdown.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/efebarandurmaz/codeai/internal/catalog"
	"github.com/efebarandurmaz/codeai/internal/normalize"
)

// HealthStatus is the state reported by a probe or check.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses so the aggregate is the worst one seen.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// HealthCheck is the outcome of one named check.
type HealthCheck struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthResponse is the body of every probe endpoint.
type HealthResponse struct {
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version,omitempty"`
	Checks    []HealthCheck `json:"checks,omitempty"`
}

// HealthChecker runs one check. The name is filled in by the server.
type HealthChecker func(ctx context.Context) HealthCheck

type namedCheck struct {
	name string
	run  HealthChecker
}

// checkTimeout bounds a full /health run.
const checkTimeout = 5 * time.Second

// HealthServer serves liveness, readiness and aggregated health.
type HealthServer struct {
	version string
	ready   atomic.Bool
	live    atomic.Bool

	mu     sync.RWMutex
	checks []namedCheck // sorted by name
}

// NewHealthServer returns a server that is live but not yet ready.
func NewHealthServer(version string) *HealthServer {
	s := &HealthServer{version: version}
	s.live.Store(true)
	return s
}

// RegisterCheck adds or replaces the check called name.
func (s *HealthServer) RegisterCheck(name string, checker HealthChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := slices.BinarySearchFunc(s.checks, name, func(c namedCheck, n string) int {
		return strings.Compare(c.name, n)
	})
	if found {
		s.checks[i].run = checker
		return
	}
	s.checks = slices.Insert(s.checks, i, namedCheck{name: name, run: checker})
}

func (s *HealthServer) SetReady(ready bool) { s.ready.Store(ready) }
func (s *HealthServer) SetLive(live bool)   { s.live.Store(live) }
func (s *HealthServer) Ready() bool         { return s.ready.Load() }

// Register mounts the probes on mux under both plain and z-suffixed paths.
func (s *HealthServer) Register(mux *http.ServeMux) {
	for _, suffix := range []string{"", "z"} {
		mux.HandleFunc("/health"+suffix, s.handleHealth)
		mux.HandleFunc("/ready"+suffix, flagHandler(&s.ready))
		mux.HandleFunc("/live"+suffix, flagHandler(&s.live))
	}
}

// Handler returns the probes on a mux of their own.
func (s *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

// Run executes every check in name order and folds them into one response.
func (s *HealthServer) Run(ctx context.Context) HealthResponse {
	s.mu.RLock()
	checks := slices.Clone(s.checks)
	s.mu.RUnlock()

	resp := HealthResponse{
		Status:    HealthStatusHealthy,
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Checks:    make([]HealthCheck, 0, len(checks)),
	}
	for _, c := range checks {
		res := c.run(ctx)
		res.Name = c.name
		if res.Status.severity() > resp.Status.severity() {
			resp.Status = res.Status
		}
		resp.Checks = append(resp.Checks, res)
	}
	return resp
}

func (s *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()
	resp := s.Run(ctx)
	writeJSON(w, statusCodeFor(resp.Status), resp)
}

func flagHandler(flag *atomic.Bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatusUnhealthy
		if flag.Load() {
			status = HealthStatusHealthy
		}
		writeJSON(w, statusCodeFor(status), HealthResponse{Status: status, Timestamp: time.Now().UTC()})
	}
}

func statusCodeFor(status HealthStatus) int {
	if status == HealthStatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON", "error", err)
	}
}

const probeResponse = "<h2>Description</h2><p>probe</p><pre><code>ok()</code></pre>"

// NormalizerHealthChecker feeds a fixed response through fn and fails when
// the expected description and body do not come back.
func NormalizerHealthChecker(fn func(string) normalize.ParsedResult) HealthChecker {
	return func(ctx context.Context) HealthCheck {
		got := fn(probeResponse)
		if got.Description == "probe" && got.Body == "ok()" {
			return HealthCheck{Status: HealthStatusHealthy, Message: "normalizer ok"}
		}
		return HealthCheck{
			Status:  HealthStatusUnhealthy,
			Message: "normalizer returned an unexpected result",
			Details: map[string]string{"description": got.Description, "body": got.Body},
		}
	}
}

// CatalogHealthChecker is degraded while either catalog list is empty.
func CatalogHealthChecker(c *catalog.Catalog) HealthChecker {
	return func(ctx context.Context) HealthCheck {
		if len(c.Languages) == 0 || len(c.StoryForms) == 0 {
			return HealthCheck{Status: HealthStatusDegraded, Message: "catalog has empty lists"}
		}
		return HealthCheck{
			Status:  HealthStatusHealthy,
			Message: "catalog ok",
			Details: map[string]string{"base_url": c.BaseURL},
		}
	}
}
