package reporting

import (
	"fmt"
	"html"
	"os"
	"sort"
	"strings"

	"github.com/apiprobe/scanner/internal/scanner"
)

func GenerateHTML(report *scanner.Report, filename string) error {
	htmlTemplate := `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>apiprobe Scan Report</title>
	<style>
		* { margin: 0; padding: 0; box-sizing: border-box; }
		body {
			font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
			background: #f5f5f5;
			padding: 20px;
			color: #333;
		}
		.container { max-width: 1400px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
		h1 { font-size: 24px; margin-bottom: 10px; color: #222; }
		h2 { font-size: 18px; margin: 30px 0 10px; color: #222; }
		.meta { color: #666; font-size: 14px; margin-bottom: 30px; }
		.stats {
			display: grid;
			grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
			gap: 15px;
			margin-bottom: 30px;
		}
		.stat-card { background: #f9f9f9; padding: 15px; border-radius: 6px; border-left: 3px solid #007bff; }
		.stat-value { font-size: 24px; font-weight: bold; color: #007bff; }
		.stat-label { font-size: 12px; color: #666; margin-top: 5px; }
		table { width: 100%%; border-collapse: collapse; font-size: 14px; }
		th { background: #f0f0f0; padding: 12px; text-align: left; font-weight: 600; border-bottom: 2px solid #ddd; }
		td { padding: 10px 12px; border-bottom: 1px solid #eee; }
		tr:hover { background: #f9f9f9; }
		.status-200 { color: #28a745; font-weight: 600; }
		.status-300 { color: #007bff; font-weight: 600; }
		.status-400 { color: #dc3545; font-weight: 600; }
		.status-500 { color: #ffc107; font-weight: 600; }
		.badge {
			display: inline-block;
			padding: 3px 8px;
			border-radius: 4px;
			font-size: 11px;
			font-weight: 600;
			margin-left: 5px;
		}
		.badge-risk-high { background: #dc3545; color: white; }
		.badge-risk-med { background: #ffc107; color: #333; }
		.badge-risk-low { background: #17a2b8; color: white; }
		.badge-waf { background: #6f42c1; color: white; }
		code { background: #f4f4f4; padding: 2px 6px; border-radius: 3px; font-family: monospace; font-size: 13px; }
		.forbidden { list-style: none; }
		.forbidden li { padding: 6px 0; border-bottom: 1px solid #eee; }
	</style>
</head>
<body>
	<div class="container">
		<h1>apiprobe Scan Report</h1>
		<div class="meta">Target: <code>%s</code> &middot; %d paths scanned &middot; %s</div>

		<div class="stats">
			<div class="stat-card">
				<div class="stat-value">%d</div>
				<div class="stat-label">Results</div>
			</div>
			<div class="stat-card">
				<div class="stat-value">%d</div>
				<div class="stat-label">Sensitive Findings</div>
			</div>
			<div class="stat-card">
				<div class="stat-value">%d</div>
				<div class="stat-label">5xx Errors</div>
			</div>
			<div class="stat-card">
				<div class="stat-value">%d</div>
				<div class="stat-label">Forbidden (403)</div>
			</div>
			<div class="stat-card">
				<div class="stat-value">%d</div>
				<div class="stat-label">Transport Errors</div>
			</div>
		</div>

		<h2>Results</h2>
		<table>
			<thead>
				<tr>
					<th>Status</th>
					<th>URL</th>
					<th>Size</th>
					<th>Time</th>
					<th>Details</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<h2>Sensitive Findings</h2>
		<table>
			<thead>
				<tr>
					<th>Risk</th>
					<th>Type</th>
					<th>URL</th>
					<th>Match</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<h2>Forbidden URLs (403)</h2>
		<ul class="forbidden">
			%s
		</ul>
	</div>
</body>
</html>`

	var resultRows strings.Builder
	for _, result := range report.BasicResults {
		statusClass := "status-200"
		switch {
		case result.StatusCode >= 300 && result.StatusCode < 400:
			statusClass = "status-300"
		case result.StatusCode >= 400 && result.StatusCode < 500:
			statusClass = "status-400"
		case result.StatusCode >= 500:
			statusClass = "status-500"
		}

		details := ""
		if result.WAFDetected != "" {
			details = fmt.Sprintf(`<span class="badge badge-waf">WAF: %s</span>`, html.EscapeString(result.WAFDetected))
		}

		resultRows.WriteString(fmt.Sprintf(`
				<tr>
					<td class="%s">%d</td>
					<td><code>%s</code></td>
					<td>%d bytes</td>
					<td>%d ms</td>
					<td>%s</td>
				</tr>`,
			statusClass, result.StatusCode, html.EscapeString(result.URL),
			result.ContentLength, result.ResponseTime, details))
	}

	findings := make([]int, len(report.SensitiveFindings))
	for i := range findings {
		findings[i] = i
	}
	sort.SliceStable(findings, func(a, b int) bool {
		return report.SensitiveFindings[findings[a]].RiskScore > report.SensitiveFindings[findings[b]].RiskScore
	})

	var findingRows strings.Builder
	for _, i := range findings {
		f := report.SensitiveFindings[i]
		riskClass := "badge-risk-low"
		switch {
		case f.RiskScore >= 8:
			riskClass = "badge-risk-high"
		case f.RiskScore >= 5:
			riskClass = "badge-risk-med"
		}

		findingRows.WriteString(fmt.Sprintf(`
				<tr>
					<td><span class="badge %s">%d</span></td>
					<td>%s</td>
					<td><code>%s</code></td>
					<td><code>%s</code></td>
				</tr>`,
			riskClass, f.RiskScore, html.EscapeString(f.InfoType),
			html.EscapeString(f.URL), html.EscapeString(f.Match)))
	}

	var forbiddenItems strings.Builder
	if len(report.ForbiddenURLs) == 0 {
		forbiddenItems.WriteString("<li>none</li>")
	}
	for _, url := range report.ForbiddenURLs {
		forbiddenItems.WriteString(fmt.Sprintf("\n\t\t\t<li><code>%s</code></li>", html.EscapeString(url)))
	}

	finalHTML := fmt.Sprintf(htmlTemplate,
		html.EscapeString(report.ScanConfig.Target),
		report.ScanConfig.PathsScanned,
		html.EscapeString(report.ScanTimestamp),
		len(report.BasicResults),
		len(report.SensitiveFindings),
		report.ErrorCount,
		len(report.ForbiddenURLs),
		report.TransportErrors,
		resultRows.String(),
		findingRows.String(),
		forbiddenItems.String())

	return os.WriteFile(filename, []byte(finalHTML), 0o644)
}
