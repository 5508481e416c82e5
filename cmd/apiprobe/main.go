package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/apiprobe/scanner/internal/config"
	"github.com/apiprobe/scanner/internal/reporting"
	"github.com/apiprobe/scanner/internal/scanner"
	"github.com/apiprobe/scanner/internal/ui"
)

var (
	cfg        = config.Defaults()
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "apiprobe -u <url> [flags]",
	Short: "Concurrent API path scanner with sensitive-information detection",
	Long: `apiprobe probes a target HTTP service against a dictionary of candidate
API paths, reports which ones are live, and flags responses that leak
sensitive information such as credentials, keys, and internal identifiers.`,
	Example: `  apiprobe -u https://api.example.com
  apiprobe -u https://api.example.com -d paths.txt -c 50 --timeout 5
  apiprobe -u https://api.example.com --auth-token $TOKEN --proxy http://127.0.0.1:8080
  apiprobe -u https://api.example.com --include-paths extra.txt --exclude-paths skip.txt`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			fc, err := config.LoadFile(configFile)
			if err != nil {
				return fmt.Errorf("loading config file: %w", err)
			}
			explicit := make(map[string]bool)
			cmd.Flags().Visit(func(f *pflag.Flag) {
				explicit[f.Name] = true
			})
			fc.Apply(&cfg, explicit)
		}
		return config.Validate(&cfg)
	},
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	if !cfg.Quiet {
		ui.PrintBanner()
		ui.PrintConfig(cfg)
	}

	engine, err := scanner.NewEngine(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\n[!] Received signal %s, shutting down...\n", sig)
		cancel()
	}()

	if !cfg.Quiet {
		progressCtx, stopProgress := context.WithCancel(ctx)
		defer stopProgress()
		go ui.StartProgressReporter(progressCtx, engine.Stats())
	}

	report, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		for _, result := range report.BasicResults {
			ui.PrintResult(result)
		}
	}

	if !cfg.Quiet {
		ui.PrintSummary(report)
	}

	if err := reporting.SaveJSON(report, cfg.OutputFile); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if !cfg.Quiet {
		fmt.Printf("Report saved: %s\n", cfg.OutputFile)
	}

	if cfg.HTMLReport != "" {
		if err := reporting.GenerateHTML(report, cfg.HTMLReport); err != nil {
			return fmt.Errorf("writing HTML report: %w", err)
		}
		if !cfg.Quiet {
			fmt.Printf("HTML report saved: %s\n", cfg.HTMLReport)
		}
	}

	return nil
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.TargetURL, "url", "u", "", "Target base URL (scheme-qualified)")
	flags.StringVarP(&cfg.Dictionary, "dictionary", "d", cfg.Dictionary, "Path dictionary file")
	flags.StringVarP(&cfg.OutputFile, "output", "o", cfg.OutputFile, "JSON report output path")
	flags.StringVar(&cfg.HTMLReport, "html", "", "HTML report output path")
	flags.IntVarP(&cfg.Concurrency, "concurrency", "c", cfg.Concurrency, "Concurrent requests (1-100)")
	flags.IntVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout in seconds")
	flags.IntVar(&cfg.RateLimit, "rate-limit", 0, "Max requests per second (0 = unlimited)")
	flags.IntVar(&cfg.MaxResponseMB, "max-response-mb", cfg.MaxResponseMB, "Max response body size in MB")
	flags.StringVar(&cfg.Proxy, "proxy", "", "Proxy URL (e.g. http://127.0.0.1:8080)")
	flags.StringVar(&cfg.AuthToken, "auth-token", "", "Bearer token for the Authorization header")
	flags.StringVar(&cfg.UserAgentFile, "user-agents", cfg.UserAgentFile, "User-Agent pool file, one per line")
	flags.StringVar(&cfg.IncludePaths, "include-paths", "", "File of extra paths to union in")
	flags.StringVar(&cfg.ExcludePaths, "exclude-paths", "", "File of paths to subtract (exact match)")
	flags.StringVar(&configFile, "config", "", "YAML config file")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print every retained result")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Suppress banner, progress, and summary")

	rootCmd.MarkFlagRequired("url")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
