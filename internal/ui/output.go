package ui

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/apiprobe/scanner/internal/config"
	"github.com/apiprobe/scanner/internal/scanner"
)

const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	white   = "\033[37m"

	bgRed    = "\033[41m"
	bgGreen  = "\033[42m"
	bgYellow = "\033[43m"
	bgBlue   = "\033[44m"
)

func PrintBanner() {
	fmt.Println()
	fmt.Printf("%s%s", bold, cyan)
	fmt.Println("   ┌─────────────────────────────────────┐")
	fmt.Printf("   │   APIPROBE%s%s  v1.0                   │\n", reset, bold+cyan)
	fmt.Println("   │   API Path Scanner                  │")
	fmt.Println("   └─────────────────────────────────────┘")
	fmt.Printf("%s\n", reset)
}

func PrintConfig(cfg config.Config) {
	fmt.Printf("\n%s%s ⚙  Scan Configuration%s\n", bold, cyan, reset)
	fmt.Printf("%s───────────────────────────────%s\n", dim, reset)
	fmt.Printf("  %sTarget%s       %s%s%s\n", dim, reset, white, cfg.TargetURL, reset)
	fmt.Printf("  %sDictionary%s   %s%s%s\n", dim, reset, white, cfg.Dictionary, reset)
	fmt.Printf("  %sConcurrency%s  %s%d%s\n", dim, reset, white, cfg.Concurrency, reset)
	fmt.Printf("  %sTimeout%s      %s%ds%s\n", dim, reset, white, cfg.Timeout, reset)
	if cfg.RateLimit > 0 {
		fmt.Printf("  %sRate Limit%s   %s%d req/s%s\n", dim, reset, white, cfg.RateLimit, reset)
	}
	if cfg.Proxy != "" {
		fmt.Printf("  %sProxy%s        %s%s%s\n", dim, reset, white, cfg.Proxy, reset)
	}
	if cfg.AuthToken != "" {
		fmt.Printf("  %sAuth%s         %sbearer token configured%s\n", dim, reset, white, reset)
	}
	fmt.Println()
}

func PrintResult(result scanner.Outcome) {
	statusColor := statusToColor(result.StatusCode)
	badge := fmt.Sprintf(" %s%s %d %s", bold, statusToBg(result.StatusCode), result.StatusCode, reset)

	var tags []string
	if result.Found {
		tags = append(tags, fmt.Sprintf("%s%s FOUND %s", bold, bgGreen, reset))
	}
	if result.WAFDetected != "" {
		tags = append(tags, fmt.Sprintf("%s%s 🛡 %s %s", bold, bgYellow, result.WAFDetected, reset))
	}

	tagStr := ""
	if len(tags) > 0 {
		tagStr = "  " + strings.Join(tags, " ")
	}

	fmt.Printf("%s  %s%s%s  %s%s%s%s\n",
		badge,
		dim, formatSize(result.ContentLength), reset,
		statusColor, result.URL, reset,
		tagStr)
}

// StartProgressReporter renders a live progress line on stderr until ctx is
// cancelled. It is purely presentational and does nothing when stderr is
// not a terminal.
func StartProgressReporter(ctx context.Context, stats *scanner.Stats) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	frame := 0

	for {
		select {
		case <-ctx.Done():
			fmt.Fprint(os.Stderr, "\r\033[K")
			return
		case <-ticker.C:
			elapsed := time.Since(stats.StartTime).Seconds()
			if elapsed == 0 {
				elapsed = 1
			}
			processed := stats.GetProcessed()
			total := stats.GetTotal()
			reqPerSec := float64(processed) / elapsed

			var progress float64
			if total > 0 {
				progress = float64(processed) / float64(total) * 100
			}

			barWidth := 20
			filled := int(progress / 100 * float64(barWidth))
			if filled > barWidth {
				filled = barWidth
			}
			bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

			s := spinner[frame%len(spinner)]
			frame++

			findingStr := ""
			if n := stats.GetFindings(); n > 0 {
				findingStr = fmt.Sprintf("  %s🔑 %d%s", magenta, n, reset)
			}
			errStr := ""
			if n := stats.GetErrors5xx() + stats.GetTransportErrors(); n > 0 {
				errStr = fmt.Sprintf("  %s✗ %d%s", red, n, reset)
			}

			fmt.Fprintf(os.Stderr, "\r  %s%s %s%s%s %s%.0f%%%s  %s%d%s req/s  Kept: %s%d%s%s%s",
				cyan, s,
				dim, bar, reset,
				bold, progress, reset,
				dim, int(reqPerSec), reset,
				green, stats.GetRetained(), reset,
				findingStr, errStr)
		}
	}
}

// PrintSummary renders the console summary of a finished scan: counters,
// success ratio, findings grouped by type in descending risk order, and the
// first 10 forbidden URLs.
func PrintSummary(report *scanner.Report) {
	fmt.Println()
	fmt.Printf("\n%s%s ✔  Scan Complete%s\n", bold, green, reset)
	fmt.Printf("%s───────────────────────────────%s\n", dim, reset)

	fmt.Printf("  %sTarget%s        %s%s%s\n", dim, reset, white, report.ScanConfig.Target, reset)
	fmt.Printf("  %sPaths%s         %s%d%s\n", dim, reset, white, report.ScanConfig.PathsScanned, reset)
	fmt.Printf("  %sDuration%s      %s%ds%s\n", dim, reset, white, report.ScanDuration, reset)
	fmt.Printf("  %sTimestamp%s     %s%s%s\n", dim, reset, white, report.ScanTimestamp, reset)
	fmt.Printf("  %s5xx Errors%s    %s%d%s\n", dim, reset, white, report.ErrorCount, reset)
	fmt.Printf("  %sTransport%s     %s%d failed%s\n", dim, reset, white, report.TransportErrors, reset)
	fmt.Printf("  %sForbidden%s     %s%d%s\n", dim, reset, white, len(report.ForbiddenURLs), reset)

	successCount := 0
	for _, r := range report.BasicResults {
		if r.Found {
			successCount++
		}
	}
	fmt.Printf("  %sSuccess%s       %s%d/%d%s\n", dim, reset, white, successCount, len(report.BasicResults), reset)

	if len(report.SensitiveFindings) > 0 {
		fmt.Printf("\n%s%s 🔑 Sensitive Findings (%d)%s\n", bold, magenta, len(report.SensitiveFindings), reset)

		type typeGroup struct {
			infoType string
			risk     int
			count    int
		}
		groups := make(map[string]*typeGroup)
		for _, f := range report.SensitiveFindings {
			g, ok := groups[f.InfoType]
			if !ok {
				g = &typeGroup{infoType: f.InfoType, risk: f.RiskScore}
				groups[f.InfoType] = g
			}
			g.count++
		}

		sorted := make([]*typeGroup, 0, len(groups))
		for _, g := range groups {
			sorted = append(sorted, g)
		}
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].risk != sorted[j].risk {
				return sorted[i].risk > sorted[j].risk
			}
			return sorted[i].infoType < sorted[j].infoType
		})

		for _, g := range sorted {
			fmt.Printf("  %s[risk %2d]%s %s: %d\n", riskColor(g.risk), g.risk, reset, g.infoType, g.count)
		}
	} else {
		fmt.Printf("\n  %sNo sensitive information detected%s\n", dim, reset)
	}

	if len(report.ForbiddenURLs) > 0 {
		fmt.Printf("\n%s%s ⛔ Forbidden URLs (%d)%s\n", bold, yellow, len(report.ForbiddenURLs), reset)
		for i, url := range report.ForbiddenURLs {
			if i >= 10 {
				fmt.Printf("  %s... and %d more%s\n", dim, len(report.ForbiddenURLs)-10, reset)
				break
			}
			fmt.Printf("  %2d. %s\n", i+1, url)
		}
	}

	fmt.Println()
}

func riskColor(score int) string {
	switch {
	case score >= 8:
		return bold + red
	case score >= 5:
		return yellow
	default:
		return cyan
	}
}

func statusToColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return green
	case code >= 300 && code < 400:
		return blue
	case code >= 400 && code < 500:
		return red
	case code >= 500:
		return yellow
	default:
		return white
	}
}

func statusToBg(code int) string {
	switch {
	case code >= 200 && code < 300:
		return bgGreen
	case code >= 300 && code < 400:
		return bgBlue
	case code >= 400 && code < 500:
		return bgRed
	case code >= 500:
		return bgYellow
	default:
		return ""
	}
}

func formatSize(bytes int) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%5.1fMB", float64(bytes)/1024/1024)
	case bytes >= 1024:
		return fmt.Sprintf("%5.1fKB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%6dB", bytes)
	}
}
