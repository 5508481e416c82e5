package scanner

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/apiprobe/scanner/internal/config"
	"github.com/apiprobe/scanner/internal/useragent"
)

func writeTemp(t *testing.T, pattern string, lines ...string) string {
	t.Helper()
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(file.Name()) })
	file.WriteString(strings.Join(lines, "\n") + "\n")
	file.Close()
	return file.Name()
}

func newTestEngine(t *testing.T, targetURL string, concurrency int) *Engine {
	t.Helper()
	cfg := config.Config{
		TargetURL:     targetURL,
		Concurrency:   concurrency,
		Timeout:       5,
		MaxResponseMB: 10,
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	engine.SetUALog(io.Discard)
	engine.errLog = io.Discard
	return engine
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base     string
		path     string
		expected string
	}{
		{"https://example.com", "admin", "https://example.com/admin"},
		{"https://example.com", "/admin", "https://example.com/admin"},
		{"https://example.com/", "admin", "https://example.com/admin"},
		{"https://example.com/", "/admin", "https://example.com/admin"},
		{"https://example.com", "api/v1/users", "https://example.com/api/v1/users"},
	}

	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.path, func(t *testing.T) {
			if got := joinURL(tt.base, tt.path); got != tt.expected {
				t.Errorf("joinURL(%q, %q) = %q, expected %q", tt.base, tt.path, got, tt.expected)
			}
		})
	}
}

func TestScan_RoutingScenario(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin":
			w.WriteHeader(200)
			w.Write([]byte(`{"password": "s3cr3t"}`))
		case "/health":
			w.WriteHeader(200)
			w.Write([]byte("OK"))
		default:
			w.WriteHeader(404)
		}
	}))
	defer server.Close()

	engine := newTestEngine(t, server.URL, 2)
	engine.target.Paths = []string{"admin", "login", "health"}

	report := engine.Scan(context.Background(), "ua1")

	if len(report.BasicResults) != 1 {
		t.Fatalf("expected exactly 1 result, got %d: %v", len(report.BasicResults), report.BasicResults)
	}
	result := report.BasicResults[0]
	if result.Path != "admin" || !result.Found || result.StatusCode != 200 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(report.SensitiveFindings) != 1 {
		t.Errorf("expected 1 finding, got %d", len(report.SensitiveFindings))
	}
	if report.ErrorCount != 0 {
		t.Errorf("expected error_count 0, got %d", report.ErrorCount)
	}
	if report.ScanConfig.Target != server.URL || report.ScanConfig.PathsScanned != 3 {
		t.Errorf("unexpected scan_config: %+v", report.ScanConfig)
	}
}

func TestScan_404Silent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer server.Close()

	engine := newTestEngine(t, server.URL, 2)
	engine.target.Paths = []string{"a", "b", "c"}

	report := engine.Scan(context.Background(), "ua1")

	if len(report.BasicResults) != 0 {
		t.Errorf("expected no results for 404s, got %d", len(report.BasicResults))
	}
	if report.ErrorCount != 0 || report.TransportErrors != 0 || len(report.ForbiddenURLs) != 0 {
		t.Errorf("404s must not touch any counter: %+v", report)
	}
}

func TestScan_5xxCounted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			w.WriteHeader(500)
		case "/b":
			w.WriteHeader(503)
		default:
			w.WriteHeader(404)
		}
	}))
	defer server.Close()

	engine := newTestEngine(t, server.URL, 2)
	engine.target.Paths = []string{"a", "b", "c"}

	report := engine.Scan(context.Background(), "ua1")

	if report.ErrorCount != 2 {
		t.Errorf("expected error_count 2, got %d", report.ErrorCount)
	}
	if len(report.BasicResults) != 0 {
		t.Errorf("5xx responses must not produce results, got %d", len(report.BasicResults))
	}
}

func TestScan_403Recorded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/secret" {
			w.WriteHeader(403)
			return
		}
		w.WriteHeader(404)
	}))
	defer server.Close()

	engine := newTestEngine(t, server.URL, 1)
	engine.target.Paths = []string{"secret", "other"}

	report := engine.Scan(context.Background(), "ua1")

	if len(report.ForbiddenURLs) != 1 {
		t.Fatalf("expected 1 forbidden URL, got %d", len(report.ForbiddenURLs))
	}
	if report.ForbiddenURLs[0] != server.URL+"/secret" {
		t.Errorf("unexpected forbidden URL %q", report.ForbiddenURLs[0])
	}
	if len(report.BasicResults) != 0 {
		t.Errorf("403 must not produce a result, got %d", len(report.BasicResults))
	}
}

func TestScan_200KeptOnlyWithFindings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("nothing interesting here"))
	}))
	defer server.Close()

	engine := newTestEngine(t, server.URL, 1)
	engine.target.Paths = []string{"clean"}

	report := engine.Scan(context.Background(), "ua1")

	if len(report.BasicResults) != 0 {
		t.Errorf("clean 200 must be discarded, got %d results", len(report.BasicResults))
	}
}

func TestScan_OtherStatusRetainedUnconditionally(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/moved":
			w.Header().Set("Location", "/elsewhere")
			w.WriteHeader(301)
		case "/created":
			w.WriteHeader(201)
			w.Write([]byte("created, no secrets"))
		default:
			w.WriteHeader(404)
		}
	}))
	defer server.Close()

	engine := newTestEngine(t, server.URL, 2)
	engine.target.Paths = []string{"moved", "created"}

	report := engine.Scan(context.Background(), "ua1")

	if len(report.BasicResults) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.BasicResults))
	}
	for _, r := range report.BasicResults {
		switch r.StatusCode {
		case 301:
			if r.Found {
				t.Error("301 result must have found=false")
			}
		case 201:
			if !r.Found {
				t.Error("201 result must have found=true")
			}
		default:
			t.Errorf("unexpected status %d", r.StatusCode)
		}
	}
}

func TestScan_TransportFailureCounted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	deadURL := server.URL
	server.Close()

	engine := newTestEngine(t, deadURL, 2)
	engine.target.Paths = []string{"a", "b"}

	report := engine.Scan(context.Background(), "ua1")

	if report.TransportErrors != 2 {
		t.Errorf("expected 2 transport errors, got %d", report.TransportErrors)
	}
	if len(report.BasicResults) != 0 {
		t.Errorf("failed requests must not produce results, got %d", len(report.BasicResults))
	}
}

func TestScan_TransportFailureLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	deadURL := server.URL
	server.Close()

	engine := newTestEngine(t, deadURL, 1)
	engine.target.Paths = []string{"a"}

	// Failure lines are emitted regardless of verbosity.
	var log strings.Builder
	engine.errLog = &log

	engine.Scan(context.Background(), "ua1")

	if !strings.Contains(log.String(), "request failed") {
		t.Errorf("expected a failure log line, got %q", log.String())
	}
	if !strings.Contains(log.String(), deadURL+"/a") {
		t.Errorf("failure log line must name the URL, got %q", log.String())
	}
}

func TestScan_ConcurrencyBound(t *testing.T) {
	var inFlight, peak int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		w.WriteHeader(404)
	}))
	defer server.Close()

	const limit = 3
	engine := newTestEngine(t, server.URL, limit)
	paths := make([]string, 24)
	for i := range paths {
		paths[i] = "p" + strings.Repeat("x", i)
	}
	engine.target.Paths = paths

	engine.Scan(context.Background(), "ua1")

	if p := atomic.LoadInt64(&peak); p > limit {
		t.Errorf("concurrency limit %d exceeded: peak %d in flight", limit, p)
	}
}

func TestScan_RequestHeaders(t *testing.T) {
	var gotUA, gotAuth, gotConn string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		gotConn = r.Header.Get("Connection")
		w.WriteHeader(404)
	}))
	defer server.Close()

	engine := newTestEngine(t, server.URL, 1)
	engine.target.Paths = []string{"one"}

	engine.Scan(context.Background(), "validated-ua")

	if gotUA != "validated-ua" {
		t.Errorf("expected validated UA, got %q", gotUA)
	}
	// No token configured still sends the empty bearer slot. The server
	// strips the trailing whitespace when parsing the field value, so the
	// observed header is the bare scheme.
	if gotAuth != "Bearer" {
		t.Errorf("expected bare 'Bearer' for empty token, got %q", gotAuth)
	}
	if gotConn != "keep-alive" {
		t.Errorf("expected Connection keep-alive, got %q", gotConn)
	}
}

func TestEngineRun_FullFlow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.WriteHeader(200)
		case "/admin":
			w.WriteHeader(200)
			w.Write([]byte(`{"password": "s3cr3t"}`))
		case "/health":
			w.WriteHeader(200)
			w.Write([]byte("OK"))
		default:
			w.WriteHeader(404)
		}
	}))
	defer server.Close()

	cfg := config.Config{
		TargetURL:     server.URL,
		Dictionary:    writeTemp(t, "dict-*.txt", "admin", "login", "health"),
		UserAgentFile: writeTemp(t, "ua-*.txt", "ua1"),
		Concurrency:   2,
		Timeout:       5,
		MaxResponseMB: 10,
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	engine.SetUALog(io.Discard)

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(report.BasicResults) != 1 || report.BasicResults[0].Path != "admin" {
		t.Errorf("expected single admin result, got %+v", report.BasicResults)
	}
	if len(report.SensitiveFindings) != 1 {
		t.Errorf("expected 1 finding, got %d", len(report.SensitiveFindings))
	}
	if report.ErrorCount != 0 {
		t.Errorf("expected error_count 0, got %d", report.ErrorCount)
	}
}

func TestEngineRun_UAExhaustedAbortsBeforeDispatch(t *testing.T) {
	var scanRequests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			atomic.AddInt64(&scanRequests, 1)
		}
		w.WriteHeader(503)
	}))
	defer server.Close()

	cfg := config.Config{
		TargetURL:     server.URL,
		Dictionary:    writeTemp(t, "dict-*.txt", "admin"),
		UserAgentFile: writeTemp(t, "ua-*.txt", "ua1", "ua2"),
		Concurrency:   1,
		Timeout:       5,
		MaxResponseMB: 10,
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	engine.SetUALog(io.Discard)

	_, err = engine.Run(context.Background())
	if !errors.Is(err, useragent.ErrAllExhausted) {
		t.Fatalf("expected ErrAllExhausted, got %v", err)
	}
	if n := atomic.LoadInt64(&scanRequests); n != 0 {
		t.Errorf("no paths may be dispatched after validation failure, got %d requests", n)
	}
}

func TestEngineRun_MissingDictionary(t *testing.T) {
	engine := newTestEngine(t, "http://example.com", 1)
	engine.cfg.Dictionary = "/nonexistent/dict.txt"

	if _, err := engine.Run(context.Background()); err == nil {
		t.Error("expected error for missing dictionary")
	}
}

func TestStatsAccuracy(t *testing.T) {
	stats := NewStats()
	stats.SetTotal(10)
	stats.IncrementProcessed()
	stats.IncrementProcessed()
	stats.IncrementRetained()
	stats.IncrementErrors5xx()
	stats.IncrementTransportErrors()
	stats.AddFindings(3)
	stats.AddForbidden("http://a/x")

	if stats.GetTotal() != 10 || stats.GetProcessed() != 2 || stats.GetRetained() != 1 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	if stats.GetErrors5xx() != 1 || stats.GetTransportErrors() != 1 || stats.GetFindings() != 3 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	if stats.ForbiddenCount() != 1 {
		t.Errorf("expected 1 forbidden, got %d", stats.ForbiddenCount())
	}
}

func TestStatsConcurrent(t *testing.T) {
	stats := NewStats()
	done := make(chan struct{})

	for i := 0; i < 100; i++ {
		go func() {
			stats.IncrementProcessed()
			stats.IncrementErrors5xx()
			stats.AddForbidden("http://a/x")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 100; i++ {
		<-done
	}

	if stats.GetProcessed() != 100 {
		t.Errorf("expected processed=100, got %d", stats.GetProcessed())
	}
	if stats.GetErrors5xx() != 100 {
		t.Errorf("expected 5xx=100, got %d", stats.GetErrors5xx())
	}
	if stats.ForbiddenCount() != 100 {
		t.Errorf("expected 100 forbidden, got %d", stats.ForbiddenCount())
	}
}

func TestStatsForbiddenCopy(t *testing.T) {
	stats := NewStats()
	stats.AddForbidden("http://a/1")

	urls := stats.ForbiddenURLs()
	urls[0] = "mutated"

	if stats.ForbiddenURLs()[0] != "http://a/1" {
		t.Error("ForbiddenURLs must return a copy")
	}
}
