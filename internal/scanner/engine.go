package scanner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/apiprobe/scanner/internal/config"
	"github.com/apiprobe/scanner/internal/detection"
	"github.com/apiprobe/scanner/internal/pathlist"
	"github.com/apiprobe/scanner/internal/transport"
	"github.com/apiprobe/scanner/internal/useragent"
)

// Engine owns the scan: it assembles the path list, validates a User-Agent,
// fans the paths out over a bounded worker pool, and aggregates the report.
type Engine struct {
	cfg      config.Config
	target   Target
	client   *transport.Client
	detector *detection.Detector
	stats    *Stats
	uaLog    io.Writer
	errLog   io.Writer
}

func NewEngine(cfg config.Config) (*Engine, error) {
	client, err := transport.NewClient(
		time.Duration(cfg.Timeout)*time.Second,
		cfg.Proxy,
		cfg.RateLimit,
		cfg.MaxResponseMB,
	)
	if err != nil {
		return nil, err
	}

	// Transport failures are reported as they happen; quiet mode drops them.
	errLog := io.Writer(os.Stderr)
	if cfg.Quiet {
		errLog = io.Discard
	}

	return &Engine{
		cfg: cfg,
		target: Target{
			BaseURL:     cfg.TargetURL,
			Concurrency: cfg.Concurrency,
			Timeout:     time.Duration(cfg.Timeout) * time.Second,
			AuthToken:   cfg.AuthToken,
			Proxy:       cfg.Proxy,
		},
		client:   client,
		detector: detection.NewDetector(),
		stats:    NewStats(),
		errLog:   errLog,
	}, nil
}

// Stats exposes the live counters for progress reporting.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// SetUALog redirects the validator's per-attempt log lines (nil keeps the
// default stderr).
func (e *Engine) SetUALog(w io.Writer) {
	e.uaLog = w
}

// Run executes the full flow: load paths, validate a User-Agent, scan.
// Setup failures abort before any path is dispatched.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	paths, err := pathlist.Load(e.cfg.Dictionary, e.cfg.IncludePaths, e.cfg.ExcludePaths)
	if err != nil {
		return nil, err
	}
	e.target.Paths = paths

	pool, err := useragent.LoadPool(e.cfg.UserAgentFile)
	if err != nil {
		return nil, fmt.Errorf("reading user-agent file: %w", err)
	}

	validator := useragent.NewValidator(e.probeFunc(ctx))
	if e.uaLog != nil {
		validator.Log = e.uaLog
	}
	ua, err := validator.Validate(pool)
	if err != nil {
		return nil, fmt.Errorf("user-agent validation: %w", err)
	}

	return e.Scan(ctx, ua), nil
}

// probeFunc builds the validator's probe: one GET against the target base
// URL with the candidate User-Agent and the baseline header set. The bearer
// token is attached only when configured.
func (e *Engine) probeFunc(ctx context.Context) useragent.ProbeFunc {
	return func(ua string) (int, error) {
		req, err := newProbeRequest(ctx, e.target.BaseURL, ua, e.target.AuthToken)
		if err != nil {
			return 0, err
		}
		resp, _, err := e.client.Do(ctx, req)
		if err != nil {
			return 0, err
		}
		return resp.StatusCode, nil
	}
}

// Scan dispatches every path over a pool of Concurrency workers and builds
// the report. Completion order is unconstrained; a single collector
// goroutine owns the results and findings collections.
func (e *Engine) Scan(ctx context.Context, ua string) *Report {
	paths := e.target.Paths
	e.stats.SetTotal(int64(len(paths)))

	tasks := make(chan string, e.target.Concurrency*2)
	results := make(chan outcomeMsg, e.target.Concurrency*2)

	var collectorWg sync.WaitGroup
	var outcomes []Outcome
	var findings []detection.Finding

	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for msg := range results {
			outcomes = append(outcomes, msg.outcome)
			findings = append(findings, msg.findings...)
			e.stats.IncrementRetained()
			e.stats.AddFindings(int64(len(msg.findings)))
		}
	}()

	started := time.Now()

	var workerWg sync.WaitGroup
	for i := 0; i < e.target.Concurrency; i++ {
		workerWg.Add(1)
		go e.worker(ctx, ua, tasks, results, &workerWg)
	}

	for _, path := range paths {
		select {
		case tasks <- path:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(tasks)

	workerWg.Wait()
	close(results)
	collectorWg.Wait()

	return &Report{
		BasicResults:      outcomes,
		SensitiveFindings: findings,
		ScanTimestamp:     started.Format(time.RFC3339),
		ScanDuration:      int64(time.Since(started).Seconds()),
		ScanConfig: ReportConfig{
			Target:       e.target.BaseURL,
			PathsScanned: len(paths),
		},
		ErrorCount:      e.stats.GetErrors5xx(),
		TransportErrors: e.stats.GetTransportErrors(),
		ForbiddenURLs:   e.stats.ForbiddenURLs(),
	}
}
