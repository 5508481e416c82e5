package reporting

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/apiprobe/scanner/internal/detection"
	"github.com/apiprobe/scanner/internal/scanner"
)

func sampleReport() *scanner.Report {
	return &scanner.Report{
		BasicResults: []scanner.Outcome{
			{
				Path:          "admin",
				URL:           "https://example.com/admin",
				StatusCode:    200,
				ContentLength: 22,
				ResponseTime:  41,
				Found:         true,
				WAFDetected:   "Cloudflare",
			},
			{
				Path:          "backup",
				URL:           "https://example.com/backup",
				StatusCode:    301,
				ContentLength: 0,
				ResponseTime:  12,
				Found:         false,
			},
		},
		SensitiveFindings: []detection.Finding{
			{
				URL:       "https://example.com/admin",
				InfoType:  "Generic Credential",
				RiskScore: 6,
				Match:     "pass****ret",
			},
		},
		ScanTimestamp: "2026-08-29T10:00:00Z",
		ScanDuration:  7,
		ScanConfig: scanner.ReportConfig{
			Target:       "https://example.com",
			PathsScanned: 120,
		},
		ErrorCount:      2,
		TransportErrors: 1,
		ForbiddenURLs:   []string{"https://example.com/internal"},
	}
}

func TestSaveLoadJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	original := sampleReport()

	if err := SaveJSON(original, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !reflect.DeepEqual(original, loaded) {
		t.Errorf("round trip mismatch:\noriginal: %+v\nloaded:   %+v", original, loaded)
	}
}

func TestSaveJSONCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "report.json")

	if err := SaveJSON(sampleReport(), path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("report file missing: %v", err)
	}
}

func TestSaveJSONFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := SaveJSON(sampleReport(), path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, field := range []string{
		`"basic_results"`,
		`"sensitive_findings"`,
		`"scan_timestamp"`,
		`"scan_duration"`,
		`"scan_config"`,
		`"paths_scanned"`,
		`"error_count"`,
		`"forbidden_urls"`,
		`"info_type"`,
		`"risk_score"`,
	} {
		if !strings.Contains(content, field) {
			t.Errorf("serialized report missing field %s", field)
		}
	}
}

func TestLoadJSONMissingFile(t *testing.T) {
	if _, err := LoadJSON(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGenerateHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")

	if err := GenerateHTML(sampleReport(), path); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"https://example.com/admin",
		"Generic Credential",
		"Cloudflare",
		"Forbidden URLs (403)",
		"https://example.com/internal",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("HTML report missing %q", want)
		}
	}
}

func TestGenerateHTMLEscapesContent(t *testing.T) {
	report := sampleReport()
	report.BasicResults[0].URL = `https://example.com/<script>alert(1)</script>`
	path := filepath.Join(t.TempDir(), "report.html")

	if err := GenerateHTML(report, path); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "<script>alert(1)</script>") {
		t.Error("URL content must be HTML-escaped")
	}
}
