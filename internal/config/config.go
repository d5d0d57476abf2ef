// Package config loads run configuration from file, environment, and
// defaults, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Method selects which sources a run extracts from.
const (
	MethodAPI  = "api"
	MethodWeb  = "web"
	MethodBoth = "both"
)

// Config holds all configuration for a harvest run.
type Config struct {
	APIURL    string `mapstructure:"api_url"`
	ModelsURL string `mapstructure:"models_url"`

	// Method is one of api, web, or both. With "both" the pipeline runs
	// every source and keeps the better result.
	Method string `mapstructure:"method"`

	OutputDir      string `mapstructure:"output_dir"`
	CSVName        string `mapstructure:"csv_name"`
	JSONName       string `mapstructure:"json_name"`
	ReportName     string `mapstructure:"report_name"`
	SnapshotHTML   bool   `mapstructure:"snapshot_html"`
	SampleFallback bool   `mapstructure:"sample_fallback"`

	CacheDir string `mapstructure:"cache_dir"`
	CacheTTL string `mapstructure:"cache_ttl"`
	NoCache  bool   `mapstructure:"no_cache"`

	Timeout     string  `mapstructure:"timeout"`
	RateLimit   float64 `mapstructure:"rate_limit"`
	FreeTextCap int     `mapstructure:"free_text_cap"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("api_url", "https://openrouter.ai/api/v1/models")
	v.SetDefault("models_url", "https://openrouter.ai/models")
	v.SetDefault("method", MethodBoth)
	v.SetDefault("output_dir", "output")
	v.SetDefault("csv_name", "models.csv")
	v.SetDefault("json_name", "models.json")
	v.SetDefault("report_name", "report.yaml")
	v.SetDefault("snapshot_html", false)
	v.SetDefault("sample_fallback", false)
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("cache_ttl", "1h")
	v.SetDefault("no_cache", false)
	v.SetDefault("timeout", "30s")
	v.SetDefault("rate_limit", 1.0)
	v.SetDefault("free_text_cap", 20)
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/modelharvest")
	}

	// Environment variables: MODELHARVEST_OUTPUT_DIR and friends.
	v.SetEnvPrefix("MODELHARVEST")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	switch cfg.Method {
	case MethodAPI, MethodWeb, MethodBoth:
	default:
		return nil, fmt.Errorf("invalid method %q: want api, web, or both", cfg.Method)
	}
	if _, err := cfg.TimeoutDuration(); err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}
	if _, err := cfg.CacheTTLDuration(); err != nil {
		return nil, fmt.Errorf("invalid cache_ttl: %w", err)
	}

	// Resolve output dir to absolute
	if !filepath.IsAbs(cfg.OutputDir) {
		abs, err := filepath.Abs(cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("resolving output dir: %w", err)
		}
		cfg.OutputDir = abs
	}

	return &cfg, nil
}

// TimeoutDuration parses the per-request timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Timeout)
}

// CacheTTLDuration parses the cache freshness window.
func (c *Config) CacheTTLDuration() (time.Duration, error) {
	return time.ParseDuration(c.CacheTTL)
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/modelharvest-cache"
	}
	return filepath.Join(home, ".cache", "modelharvest")
}
