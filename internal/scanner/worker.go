package scanner

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/apiprobe/scanner/internal/detection"
)

// baseHeaders is the fixed header set carried on every request, probe and
// scan alike.
var baseHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept-Encoding": "gzip, deflate, br",
	"Connection":      "keep-alive",
}

// outcomeMsg is one worker completion handed to the collector.
type outcomeMsg struct {
	outcome  Outcome
	findings []detection.Finding
}

// joinURL resolves the full request URL, respecting a leading "/" on the
// path so the join never produces a double slash.
func joinURL(base, path string) string {
	base = strings.TrimSuffix(base, "/")
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}

// worker drains the task channel. Each path is fetched, routed by status
// code, and the retained outcomes are sent to the collector. Transport
// failures are absorbed here; they never abort the scan.
func (e *Engine) worker(ctx context.Context, ua string, tasks <-chan string, results chan<- outcomeMsg, wg *sync.WaitGroup) {
	defer wg.Done()

	for path := range tasks {
		if ctx.Err() != nil {
			continue
		}

		url := joinURL(e.target.BaseURL, path)

		start := time.Now()
		resp, body, err := e.fetch(ctx, url, ua)
		elapsed := time.Since(start).Milliseconds()

		e.stats.IncrementProcessed()

		if err != nil {
			e.stats.IncrementTransportErrors()
			fmt.Fprintf(e.errLog, "request failed: %s: %v\n", url, err)
			continue
		}

		switch {
		case resp.StatusCode == 404:
			// Discarded silently, never counted.

		case resp.StatusCode == 403:
			e.stats.AddForbidden(url)

		case resp.StatusCode >= 500 && resp.StatusCode <= 599:
			e.stats.IncrementErrors5xx()

		case resp.StatusCode == 200:
			findings := e.detector.Detect(url, string(body))
			if len(findings) == 0 {
				continue
			}
			results <- outcomeMsg{
				outcome:  e.buildOutcome(path, url, resp, len(body), elapsed, true),
				findings: findings,
			}

		default:
			findings := e.detector.Detect(url, string(body))
			found := resp.StatusCode >= 200 && resp.StatusCode < 300
			results <- outcomeMsg{
				outcome:  e.buildOutcome(path, url, resp, len(body), elapsed, found),
				findings: findings,
			}
		}
	}
}

func (e *Engine) buildOutcome(path, url string, resp *http.Response, size int, elapsed int64, found bool) Outcome {
	return Outcome{
		Path:          path,
		URL:           url,
		StatusCode:    resp.StatusCode,
		ContentLength: size,
		ResponseTime:  elapsed,
		Found:         found,
		WAFDetected:   detection.DetectWAF(resp),
	}
}

// newProbeRequest builds the User-Agent validation probe. Unlike scan
// requests, the Authorization header is attached only when a token is
// configured.
func newProbeRequest(ctx context.Context, baseURL, ua, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ua)
	for name, value := range baseHeaders {
		req.Header.Set(name, value)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// fetch issues one GET with the validated User-Agent, the baseline header
// set, and the Authorization slot. An empty bearer token still sends
// "Bearer " on scan requests; this mirrors the tool's established wire
// behavior.
func (e *Engine) fetch(ctx context.Context, url, ua string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("User-Agent", ua)
	for name, value := range baseHeaders {
		req.Header.Set(name, value)
	}
	req.Header.Set("Authorization", "Bearer "+e.target.AuthToken)

	return e.client.Do(ctx, req)
}
