// Package config provides configuration management for the collector and analyzer.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"commentsent/pkg/utils"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix for environment overrides, e.g. COMMENTSENT_SUBREDDIT.
	EnvPrefix = "COMMENTSENT"

	// DefaultConfigPath is read when no -config flag is given.
	DefaultConfigPath = "configs/config.yaml"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL           = errors.New("archive.base_url is required")
	ErrInvalidBaseURL           = errors.New("archive.base_url must be an absolute http(s) URL")
	ErrInvalidPageSize          = errors.New("archive.page_size must be at least 1")
	ErrMissingSubreddit         = errors.New("archive.subreddit is required")
	ErrInvalidRateLimit         = errors.New("archive.requests_per_second must be non-negative")
	ErrInvalidInitialDelay      = errors.New("archive.retry.initial_delay_ms must be non-negative")
	ErrInvalidMaxDelay          = errors.New("archive.retry.max_delay_ms must be >= initial_delay_ms")
	ErrInvalidBackoffMultiplier = errors.New("archive.retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("archive.retry.timeout_sec must be at least 1")
	ErrMissingDataDir           = errors.New("storage.data_dir is required")
	ErrInvalidPartSize          = errors.New("storage.max_comments_per_file must be non-negative")
	ErrMissingKeywordsFile      = errors.New("analysis.keywords_file is required")
	ErrInvalidCategories        = errors.New("analysis.categories must name two distinct categories")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete configuration.
type Config struct {
	Archive  ArchiveConfig  `yaml:"archive"`
	Storage  StorageConfig  `yaml:"storage"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ArchiveConfig describes the remote comment archive.
type ArchiveConfig struct {
	BaseURL           string      `yaml:"base_url"`
	Subreddit         string      `yaml:"subreddit"`
	Query             string      `yaml:"query"`
	UserAgent         string      `yaml:"user_agent"`
	Retry             RetryPolicy `yaml:"retry"`
	PageSize          int         `yaml:"page_size"`
	RequestsPerSecond float64     `yaml:"requests_per_second"`
}

// RetryPolicy defines retry pacing. Attempts are unbounded; only the delay grows.
type RetryPolicy struct {
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// StorageConfig defines where comment and sentiment files live.
type StorageConfig struct {
	DataDir            string `yaml:"data_dir"`
	OutputDir          string `yaml:"output_dir"`
	MaxCommentsPerFile int    `yaml:"max_comments_per_file"`
	PrettyPrint        bool   `yaml:"pretty_print"`
}

// AnalysisConfig defines keyword classification and scoring options.
type AnalysisConfig struct {
	KeywordsFile      string           `yaml:"keywords_file"`
	Categories        CategoriesConfig `yaml:"categories"`
	Denylist          []string         `yaml:"denylist"`
	IncludeProvenance bool             `yaml:"include_provenance"`
}

// CategoriesConfig names the two categories used in output file names.
type CategoriesConfig struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// envOverrides lists the settings that may come from the environment.
type envOverrides struct {
	BaseURL   string `envconfig:"BASE_URL"`
	Subreddit string `envconfig:"SUBREDDIT"`
	Query     string `envconfig:"QUERY"`
	DataDir   string `envconfig:"DATA_DIR"`
	OutputDir string `envconfig:"OUTPUT_DIR"`
	Keywords  string `envconfig:"KEYWORDS_FILE"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFile   string `envconfig:"LOG_FILE"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			BaseURL:   "https://api.pushshift.io/reddit/search/comment/",
			Subreddit: "singapore",
			UserAgent: "commentsent/1.0",
			PageSize:  500,
			Retry: RetryPolicy{
				InitialDelayMs:    0,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
		},
		Storage: StorageConfig{
			DataDir:   "data",
			OutputDir: "data",
		},
		Analysis: AnalysisConfig{
			KeywordsFile:      "keywords.yml",
			Categories:        CategoriesConfig{A: "pap", B: "oppo"},
			Denylist:          []string{"sneakpeek_bot"},
			IncludeProvenance: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults,
// applies environment overrides and validates the result.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Resolve loads path, or DefaultConfigPath when path is empty and that file
// exists, or else the built-in defaults with environment overrides applied.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	}

	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return LoadConfig(DefaultConfigPath)
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from COMMENTSENT_* environment variables.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	overrides := []struct {
		value string
		dst   *string
	}{
		{env.BaseURL, &c.Archive.BaseURL},
		{env.Subreddit, &c.Archive.Subreddit},
		{env.Query, &c.Archive.Query},
		{env.DataDir, &c.Storage.DataDir},
		{env.OutputDir, &c.Storage.OutputDir},
		{env.Keywords, &c.Analysis.KeywordsFile},
		{env.LogLevel, &c.Logging.Level},
		{env.LogFile, &c.Logging.File},
	}

	for _, o := range overrides {
		if o.value != "" {
			*o.dst = o.value
		}
	}

	return nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	a := c.Archive

	if a.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if !utils.NewHTTPHelper(a.UserAgent).IsValidURL(a.BaseURL) {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, a.BaseURL)
	}

	if a.PageSize < 1 {
		return ErrInvalidPageSize
	}

	if a.Subreddit == "" {
		return ErrMissingSubreddit
	}

	if a.RequestsPerSecond < 0 {
		return ErrInvalidRateLimit
	}

	if a.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if a.Retry.MaxDelayMs < a.Retry.InitialDelayMs {
		return ErrInvalidMaxDelay
	}

	if a.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if a.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Storage.DataDir == "" {
		return ErrMissingDataDir
	}

	if c.Storage.MaxCommentsPerFile < 0 {
		return ErrInvalidPartSize
	}

	if c.Analysis.KeywordsFile == "" {
		return ErrMissingKeywordsFile
	}

	cats := c.Analysis.Categories
	if cats.A == "" || cats.B == "" || cats.A == cats.B {
		return ErrInvalidCategories
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// OutputDir returns the sentiment output directory, falling back to the data directory.
func (c *Config) OutputDir() string {
	if c.Storage.OutputDir != "" {
		return c.Storage.OutputDir
	}

	return c.Storage.DataDir
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt < 1 || rp.InitialDelayMs == 0 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
		if delayMs > float64(rp.MaxDelayMs) {
			break
		}
	}

	// Cap at max delay
	if delayMs > float64(rp.MaxDelayMs) {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int64(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-request timeout.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Subreddit: %s, PageSize: %d, DataDir: %s}",
		c.Archive.Subreddit,
		c.Archive.PageSize,
		c.Storage.DataDir,
	)
}
