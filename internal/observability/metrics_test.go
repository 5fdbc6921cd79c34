package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("metrics handler returned %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestMetrics_Exposition(t *testing.T) {
	m := NewMetrics()
	m.RecordNormalize("normalize", "fence", 120, 2*time.Millisecond)
	m.RecordNormalize("normalize", "fence", 80, time.Millisecond)
	m.RecordNormalize("segment", "segment", 10, time.Millisecond)
	m.RecordFormat()
	m.RecordPrompt("code")
	m.RecordHTTPRequest("POST", "/v1/normalize", 200, 3*time.Millisecond)
	m.RecordRateLimited()

	out := scrape(t, m)
	for _, want := range []string{
		`codeai_normalize_total{operation="normalize",source="fence"} 2`,
		`codeai_normalize_total{operation="segment",source="segment"} 1`,
		`codeai_normalize_duration_seconds_count{operation="normalize"} 2`,
		`codeai_input_bytes_sum 210`,
		`codeai_format_total 1`,
		`codeai_prompt_total{kind="code"} 1`,
		`codeai_http_requests_total{method="POST",path="/v1/normalize",status="200"} 1`,
		`codeai_http_rate_limited_total 1`,
		`go_goroutines`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestMetrics_Isolated(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.RecordFormat()
	if strings.Contains(scrape(t, b), "codeai_format_total 1") {
		t.Error("separate Metrics must not share counters")
	}
}

func TestDefault_Singleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default should return the same instance")
	}
}
