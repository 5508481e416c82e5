package scanner

import (
	"time"

	"github.com/apiprobe/scanner/internal/detection"
)

// Target is the immutable scan input, created once from validated
// configuration.
type Target struct {
	BaseURL     string
	Paths       []string
	Concurrency int
	Timeout     time.Duration
	AuthToken   string
	Proxy       string
}

// Outcome is one per-path result that survived the routing policy.
// ResponseTime is in milliseconds.
type Outcome struct {
	Path          string `json:"path"`
	URL           string `json:"url"`
	StatusCode    int    `json:"status_code"`
	ContentLength int    `json:"content_length"`
	ResponseTime  int64  `json:"response_time"`
	Found         bool   `json:"found"`
	WAFDetected   string `json:"waf_detected,omitempty"`
}

// Report is the aggregate of a single scan run. It is built incrementally
// while the scan runs and immutable once Scan returns.
type Report struct {
	BasicResults      []Outcome           `json:"basic_results"`
	SensitiveFindings []detection.Finding `json:"sensitive_findings"`
	ScanTimestamp     string              `json:"scan_timestamp"`
	ScanDuration      int64               `json:"scan_duration"`
	ScanConfig        ReportConfig        `json:"scan_config"`
	ErrorCount        int64               `json:"error_count"`
	TransportErrors   int64               `json:"transport_errors"`
	ForbiddenURLs     []string            `json:"forbidden_urls"`
}

// ReportConfig echoes target metadata into the report.
type ReportConfig struct {
	Target       string `json:"target"`
	PathsScanned int    `json:"paths_scanned"`
}
