// Package config loads runtime settings from an optional YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGatewayURL = "https://ai.gateway.lovable.dev/v1"
	DefaultModel      = "google/gemini-2.5-flash"

	DefaultSummariesURL = "https://en.wikipedia.org/api/rest_v1"
)

type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Videos    VideosConfig    `yaml:"videos"`
	Summaries SummariesConfig `yaml:"summaries"`
	Storage   StorageConfig   `yaml:"storage"`
	// Owner scopes saved notes; the MCP server runs for a single user.
	Owner       string `yaml:"owner"`
	MaxPDFPages int    `yaml:"max_pdf_pages"`
}

type GatewayConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Model            string        `yaml:"model"`
	APIKey           string        `yaml:"-"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxRetries       int           `yaml:"max_retries"`
	StructuredOutput bool          `yaml:"structured_output"`
}

type PromptConfig struct {
	Version        string `yaml:"version"`
	Detail         string `yaml:"detail"`
	Language       string `yaml:"language"`
	MaxSourceChars int    `yaml:"max_source_chars"`
}

type VideosConfig struct {
	APIKey            string  `yaml:"-"`
	MaxResults        int     `yaml:"max_results"`
	PerChapter        int     `yaml:"per_chapter"`
	Concurrency       int     `yaml:"concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	RegionCode        string  `yaml:"region_code"`
}

// SummariesConfig configures the Wikipedia topic summaries.
type SummariesConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	Concurrency       int           `yaml:"concurrency"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// Load reads the YAML file at path (skipped when path is empty), fills defaults
// and applies environment overrides. Secrets are only ever read from the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by SYLLABUS_NOTES_CONFIG, if any.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("SYLLABUS_NOTES_CONFIG"))
}

func applyEnv(cfg *Config) {
	cfg.Gateway.APIKey = firstEnv("NOTES_GATEWAY_API_KEY", "LOVABLE_API_KEY", "OPENAI_API_KEY")
	if v := os.Getenv("NOTES_GATEWAY_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("NOTES_MODEL"); v != "" {
		cfg.Gateway.Model = v
	}
	if v := os.Getenv("NOTES_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.MaxRetries = n
		}
	}
	cfg.Videos.APIKey = strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY"))
	if v := os.Getenv("SYLLABUS_NOTES_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("NOTES_OWNER"); v != "" {
		cfg.Owner = v
	}
}

func applyDefaults(cfg *Config) error {
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = DefaultGatewayURL
	}
	if cfg.Gateway.Model == "" {
		cfg.Gateway.Model = DefaultModel
	}
	if cfg.Gateway.Timeout <= 0 {
		cfg.Gateway.Timeout = 120 * time.Second
	}
	// Zero selects the default; a negative value disables retries.
	switch {
	case cfg.Gateway.MaxRetries == 0:
		cfg.Gateway.MaxRetries = 2
	case cfg.Gateway.MaxRetries < 0:
		cfg.Gateway.MaxRetries = 0
	}
	if cfg.Prompt.Version == "" {
		cfg.Prompt.Version = "v2"
	}
	if cfg.Prompt.Detail == "" {
		cfg.Prompt.Detail = "standard"
	}
	if cfg.Prompt.MaxSourceChars <= 0 {
		cfg.Prompt.MaxSourceChars = 24000
	}
	if cfg.Videos.MaxResults <= 0 {
		cfg.Videos.MaxResults = 8
	}
	if cfg.Videos.PerChapter <= 0 {
		cfg.Videos.PerChapter = 3
	}
	if cfg.Videos.Concurrency <= 0 {
		cfg.Videos.Concurrency = 4
	}
	if cfg.Videos.RequestsPerSecond <= 0 {
		cfg.Videos.RequestsPerSecond = 5
	}
	if cfg.Videos.RegionCode == "" {
		cfg.Videos.RegionCode = "IN"
	}
	if cfg.Summaries.BaseURL == "" {
		cfg.Summaries.BaseURL = DefaultSummariesURL
	}
	if cfg.Summaries.Timeout <= 0 {
		cfg.Summaries.Timeout = 10 * time.Second
	}
	if cfg.Summaries.Concurrency <= 0 {
		cfg.Summaries.Concurrency = 4
	}
	if cfg.Summaries.RequestsPerSecond <= 0 {
		cfg.Summaries.RequestsPerSecond = 10
	}
	if cfg.Owner == "" {
		cfg.Owner = "local"
	}
	if cfg.MaxPDFPages <= 0 {
		cfg.MaxPDFPages = 10
	}
	if cfg.Storage.DBPath == "" {
		// Default to ~/.syllabus-notes/notes.db
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		cfg.Storage.DBPath = filepath.Join(homeDir, ".syllabus-notes", "notes.db")
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
