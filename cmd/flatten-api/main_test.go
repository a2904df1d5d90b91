package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/WessleyAI/reddit-flatten/pkg/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/health", nil)
	handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func postFlatten(t *testing.T, h http.Handler, query, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/flatten"+query, strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

const feedExport = `{"data":{"children":[{"kind":"t3","data":{"title":"T","author":"A","score":5,"selftext":"hello   world"}}]}}`

func TestFlattenFeed(t *testing.T) {
	rec := postFlatten(t, handleFlatten(discardLogger(), metrics.New()), "?shape=feed", feedExport)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp FlattenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Shape != "feed" || resp.Count != 1 || resp.Empty {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Blocks[0] != "POST\nTitle: T\nAuthor: A\nScore: 5\n\nhello world" {
		t.Errorf("block = %q", resp.Blocks[0])
	}
	if resp.Text != resp.Blocks[0] {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestFlattenProfileFilter(t *testing.T) {
	body := `{"data":{"children":[
      {"kind":"t1","data":{"body":"c1","link_title":"x"}},
      {"kind":"t3","data":{"title":"p1","selftext":"s"}},
      {"kind":"t1","data":{"body":"c2","link_title":"y"}}
    ]}}`
	rec := postFlatten(t, handleFlatten(discardLogger(), metrics.New()), "?shape=3&filter=c", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp FlattenResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Count != 2 {
		t.Fatalf("expected 2 comment blocks, got %d", resp.Count)
	}
	if !strings.Contains(resp.Text, "c1\n\n---\n\n> USER COMMENT") {
		t.Errorf("blocks not joined with separator: %q", resp.Text)
	}
}

func TestFlattenEmptyResult(t *testing.T) {
	rec := postFlatten(t, handleFlatten(discardLogger(), metrics.New()), "?shape=comments-only", `{"data":{"children":[{"kind":"t1","data":{"body":"[removed]"}}]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp FlattenResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Empty || resp.Count != 0 {
		t.Fatalf("expected empty result, got %+v", resp)
	}
}

func TestFlattenErrors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		body   string
		status int
		hint   string
	}{
		{"missing shape", "", feedExport, http.StatusBadRequest, "shape is one of"},
		{"bad shape", "?shape=9", feedExport, http.StatusBadRequest, "shape is one of"},
		{"bad filter", "?shape=profile&filter=z", feedExport, http.StatusBadRequest, "filter is one of"},
		{"invalid json", "?shape=feed", "not json", http.StatusBadRequest, ""},
		{"feed given a sequence", "?shape=feed", `[{},{}]`, http.StatusUnprocessableEntity, "single post"},
		{"single post given a mapping", "?shape=single-post", feedExport, http.StatusUnprocessableEntity, "single post"},
	}
	h := handleFlatten(discardLogger(), metrics.New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postFlatten(t, h, tt.query, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message missing")
			}
			if !strings.Contains(resp.Hint, tt.hint) {
				t.Errorf("hint = %q, want it to contain %q", resp.Hint, tt.hint)
			}
		})
	}
}

func TestFlattenBodyLimit(t *testing.T) {
	cfg := Config{Port: "0", ServiceName: "test", MaxBodyBytes: 16}
	rec := postFlatten(t, newHandler(cfg, discardLogger()), "?shape=feed", feedExport)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body)
	}
}

func TestRoutesThroughMiddleware(t *testing.T) {
	cfg := Config{Port: "0", ServiceName: "test", MaxBodyBytes: 1 << 20}
	h := newHandler(cfg, discardLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}

	rec = postFlatten(t, h, "?shape=feed", feedExport)
	if rec.Code != http.StatusOK {
		t.Fatalf("flatten: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/flatten", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET flatten: expected 405, got %d", rec.Code)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg := loadConfig()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MaxBodyBytes != 32<<20 {
		t.Fatalf("expected 32MiB body limit, got %d", cfg.MaxBodyBytes)
	}

	t.Setenv("MAX_BODY_BYTES", "bogus")
	t.Setenv("PORT", "9090")
	cfg = loadConfig()
	if cfg.Port != "9090" || cfg.MaxBodyBytes != 32<<20 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("TEST_ENV_VAR_XYZ", "custom")
	if v := envOr("TEST_ENV_VAR_XYZ", "default"); v != "custom" {
		t.Fatalf("expected custom, got %s", v)
	}
	if v := envOr("NONEXISTENT_VAR_ABC", "fallback"); v != "fallback" {
		t.Fatalf("expected fallback, got %s", v)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := Config{Port: "0", ServiceName: "test", MaxBodyBytes: 1 << 20}
	h := newHandler(cfg, discardLogger())

	postFlatten(t, h, "?shape=feed", feedExport)
	postFlatten(t, h, "?shape=feed", `[{},{}]`)
	postFlatten(t, h, "?shape=nope", feedExport)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`flatten_requests_total{shape="feed",code="200"} 1`,
		`flatten_requests_total{shape="feed",code="422"} 1`,
		`flatten_requests_total{shape="invalid",code="400"} 1`,
		`flatten_blocks_total{shape="feed"} 1`,
		`flatten_duration_seconds_count{shape="feed"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q:\n%s", want, body)
		}
	}
}
