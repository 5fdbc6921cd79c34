package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/efebarandurmaz/codeai/internal/catalog"
	"github.com/efebarandurmaz/codeai/internal/normalize"
)

func getHealth(t *testing.T, h http.Handler, path string) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("%s content type = %q", path, ct)
	}
	return rec.Code, resp
}

func TestHealthServer_Probes(t *testing.T) {
	s := NewHealthServer("1.2.3")
	h := s.Handler()

	if code, _ := getHealth(t, h, "/ready"); code != http.StatusServiceUnavailable {
		t.Errorf("/ready before SetReady = %d, want 503", code)
	}
	s.SetReady(true)
	for _, path := range []string{"/ready", "/readyz", "/live", "/livez"} {
		if code, resp := getHealth(t, h, path); code != http.StatusOK || resp.Status != HealthStatusHealthy {
			t.Errorf("%s = %d %s", path, code, resp.Status)
		}
	}
	s.SetLive(false)
	if code, resp := getHealth(t, h, "/live"); code != http.StatusServiceUnavailable || resp.Status != HealthStatusUnhealthy {
		t.Errorf("/live after SetLive(false) = %d %s", code, resp.Status)
	}
}

func TestHealthServer_AggregateStatus(t *testing.T) {
	checker := func(status HealthStatus) HealthChecker {
		return func(ctx context.Context) HealthCheck { return HealthCheck{Status: status} }
	}
	tests := []struct {
		name     string
		statuses []HealthStatus
		want     HealthStatus
		code     int
	}{
		{"no checks", nil, HealthStatusHealthy, http.StatusOK},
		{"all healthy", []HealthStatus{HealthStatusHealthy, HealthStatusHealthy}, HealthStatusHealthy, http.StatusOK},
		{"degraded", []HealthStatus{HealthStatusHealthy, HealthStatusDegraded}, HealthStatusDegraded, http.StatusOK},
		{"unhealthy wins", []HealthStatus{HealthStatusDegraded, HealthStatusUnhealthy}, HealthStatusUnhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewHealthServer("v1")
			for i, st := range tt.statuses {
				s.RegisterCheck(string(rune('a'+i)), checker(st))
			}
			code, resp := getHealth(t, s.Handler(), "/healthz")
			if code != tt.code || resp.Status != tt.want {
				t.Errorf("got %d %s, want %d %s", code, resp.Status, tt.code, tt.want)
			}
			if resp.Version != "v1" {
				t.Errorf("version = %q", resp.Version)
			}
			if len(resp.Checks) != len(tt.statuses) {
				t.Fatalf("checks = %d, want %d", len(resp.Checks), len(tt.statuses))
			}
			for i := range resp.Checks {
				if resp.Checks[i].Name != string(rune('a'+i)) {
					t.Errorf("checks not sorted by name: %+v", resp.Checks)
				}
			}
		})
	}
}

func TestNormalizerHealthChecker(t *testing.T) {
	ok := NormalizerHealthChecker(normalize.Normalize)(context.Background())
	if ok.Status != HealthStatusHealthy {
		t.Errorf("real normalizer should be healthy, got %+v", ok)
	}
	broken := NormalizerHealthChecker(func(string) normalize.ParsedResult {
		return normalize.ParsedResult{}
	})(context.Background())
	if broken.Status != HealthStatusUnhealthy {
		t.Errorf("broken normalizer should be unhealthy, got %+v", broken)
	}
}

func TestCatalogHealthChecker(t *testing.T) {
	if got := CatalogHealthChecker(catalog.Default())(context.Background()); got.Status != HealthStatusHealthy {
		t.Errorf("default catalog = %+v", got)
	}
	empty := &catalog.Catalog{BaseURL: "http://x"}
	if got := CatalogHealthChecker(empty)(context.Background()); got.Status != HealthStatusDegraded {
		t.Errorf("empty catalog = %+v", got)
	}
}

func TestHealthServer_RegisterCheckReplaces(t *testing.T) {
	s := NewHealthServer("v1")
	s.RegisterCheck("db", func(context.Context) HealthCheck { return HealthCheck{Status: HealthStatusUnhealthy} })
	s.RegisterCheck("db", func(context.Context) HealthCheck { return HealthCheck{Status: HealthStatusHealthy} })

	resp := s.Run(context.Background())
	if len(resp.Checks) != 1 {
		t.Fatalf("checks = %+v, want one", resp.Checks)
	}
	if resp.Status != HealthStatusHealthy {
		t.Errorf("status = %s, want healthy", resp.Status)
	}
}
