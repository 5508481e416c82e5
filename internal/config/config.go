package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the validated operator-supplied configuration. It is read-only
// for the life of a scan.
type Config struct {
	TargetURL     string
	Dictionary    string
	OutputFile    string
	HTMLReport    string
	Concurrency   int
	Timeout       int
	RateLimit     int
	MaxResponseMB int
	Proxy         string
	AuthToken     string
	UserAgentFile string
	IncludePaths  string
	ExcludePaths  string
	Verbose       bool
	Quiet         bool
}

// Defaults returns a Config populated with the tool's default values; flag
// binding overwrites whatever the operator sets explicitly.
func Defaults() Config {
	return Config{
		Dictionary:    "config/api_dict.txt",
		OutputFile:    "scan_report.json",
		Concurrency:   20,
		Timeout:       10,
		MaxResponseMB: 10,
		UserAgentFile: "config/user-agents.txt",
	}
}

// FileConfig is the on-disk YAML configuration shape. Pointer fields
// distinguish "unset" from zero values so file settings never clobber
// explicit flags.
type FileConfig struct {
	Dictionary    *string `yaml:"dictionary"`
	Output        *string `yaml:"output"`
	Concurrency   *int    `yaml:"concurrency"`
	Timeout       *int    `yaml:"timeout"`
	RateLimit     *int    `yaml:"rate_limit"`
	MaxResponseMB *int    `yaml:"max_response_mb"`
	Proxy         *string `yaml:"proxy"`
	UserAgentFile *string `yaml:"user_agents"`
	IncludePaths  *string `yaml:"include_paths"`
	ExcludePaths  *string `yaml:"exclude_paths"`
}

// LoadFile reads a YAML config file from path.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc, nil
}

// Apply overlays file settings onto cfg for every field the operator did not
// set on the command line. explicit holds the flag names that were set.
func (fc FileConfig) Apply(cfg *Config, explicit map[string]bool) {
	if fc.Dictionary != nil && !explicit["dictionary"] {
		cfg.Dictionary = *fc.Dictionary
	}
	if fc.Output != nil && !explicit["output"] {
		cfg.OutputFile = *fc.Output
	}
	if fc.Concurrency != nil && !explicit["concurrency"] {
		cfg.Concurrency = *fc.Concurrency
	}
	if fc.Timeout != nil && !explicit["timeout"] {
		cfg.Timeout = *fc.Timeout
	}
	if fc.RateLimit != nil && !explicit["rate-limit"] {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.MaxResponseMB != nil && !explicit["max-response-mb"] {
		cfg.MaxResponseMB = *fc.MaxResponseMB
	}
	if fc.Proxy != nil && !explicit["proxy"] {
		cfg.Proxy = *fc.Proxy
	}
	if fc.UserAgentFile != nil && !explicit["user-agents"] {
		cfg.UserAgentFile = *fc.UserAgentFile
	}
	if fc.IncludePaths != nil && !explicit["include-paths"] {
		cfg.IncludePaths = *fc.IncludePaths
	}
	if fc.ExcludePaths != nil && !explicit["exclude-paths"] {
		cfg.ExcludePaths = *fc.ExcludePaths
	}
}

// Validate checks the configuration before any network activity. Every
// failure here is fatal.
func Validate(cfg *Config) error {
	if !strings.HasPrefix(cfg.TargetURL, "http://") && !strings.HasPrefix(cfg.TargetURL, "https://") {
		return fmt.Errorf("target URL must start with http:// or https://, got %q", cfg.TargetURL)
	}

	if _, err := os.Stat(cfg.Dictionary); err != nil {
		return fmt.Errorf("dictionary file not found: %s", cfg.Dictionary)
	}

	if cfg.Concurrency < 1 || cfg.Concurrency > 100 {
		return fmt.Errorf("concurrency must be between 1 and 100, got %d", cfg.Concurrency)
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", cfg.Timeout)
	}

	if cfg.MaxResponseMB <= 0 {
		return fmt.Errorf("max response size must be positive, got %d MB", cfg.MaxResponseMB)
	}

	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", cfg.RateLimit)
	}

	if cfg.AuthToken != "" {
		if strings.TrimSpace(cfg.AuthToken) == "" {
			return fmt.Errorf("auth token must not be blank")
		}
		if strings.Contains(cfg.AuthToken, ".") {
			if len(strings.Split(cfg.AuthToken, ".")) != 3 {
				return fmt.Errorf("auth token looks like a JWT but does not have three segments")
			}
		}
	}

	if cfg.Proxy != "" {
		if !strings.HasPrefix(cfg.Proxy, "http://") && !strings.HasPrefix(cfg.Proxy, "https://") {
			return fmt.Errorf("proxy URL must start with http:// or https://, got %q", cfg.Proxy)
		}
	}

	info, err := os.Stat(cfg.UserAgentFile)
	if err != nil {
		return fmt.Errorf("user-agent file not found: %s", cfg.UserAgentFile)
	}
	if info.Size() == 0 {
		return fmt.Errorf("user-agent file is empty: %s", cfg.UserAgentFile)
	}

	return nil
}
