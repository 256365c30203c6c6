// Package config loads application configuration from config.yaml and
// PROSPECT_* environment variables, and owns global logger setup.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Quota   QuotaConfig   `yaml:"quota" mapstructure:"quota"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Pacing  PacingConfig  `yaml:"pacing" mapstructure:"pacing"`
	Filter  FilterConfig  `yaml:"filter" mapstructure:"filter"`
	Titles  TitlesConfig  `yaml:"titles" mapstructure:"titles"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SearchConfig configures the external search API client.
type SearchConfig struct {
	BaseURL             string  `yaml:"base_url" mapstructure:"base_url"`
	MaxResultsPerSearch int     `yaml:"max_results_per_search" mapstructure:"max_results_per_search"`
	RequestsPerSec      float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// QuotaConfig configures the credential pool's daily accounting.
type QuotaConfig struct {
	DailyCap            int `yaml:"daily_cap" mapstructure:"daily_cap"`
	WarnThreshold       int `yaml:"warn_threshold" mapstructure:"warn_threshold"`
	ResetUTCOffsetHours int `yaml:"reset_utc_offset_hours" mapstructure:"reset_utc_offset_hours"`
}

// BrowserConfig configures the company-resolution browser session.
type BrowserConfig struct {
	Headless    bool `yaml:"headless" mapstructure:"headless"`
	TimeoutSecs int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	// Intervene pauses the run for a human to clear a bot challenge
	// instead of failing the company.
	Intervene bool `yaml:"intervene" mapstructure:"intervene"`
}

// PacingConfig configures the randomized delays between
// network-facing actions.
type PacingConfig struct {
	MinSecs          float64 `yaml:"min_secs" mapstructure:"min_secs"`
	MaxSecs          float64 `yaml:"max_secs" mapstructure:"max_secs"`
	LongBreakEvery   int     `yaml:"long_break_every" mapstructure:"long_break_every"`
	LongBreakMinSecs float64 `yaml:"long_break_min_secs" mapstructure:"long_break_min_secs"`
	LongBreakMaxSecs float64 `yaml:"long_break_max_secs" mapstructure:"long_break_max_secs"`
}

// FilterConfig selects which resolved companies move on to contact
// search and reporting.
type FilterConfig struct {
	Sizes      []string `yaml:"sizes" mapstructure:"sizes"`
	Industries []string `yaml:"industries" mapstructure:"industries"`
}

// TitlesConfig points at the industry-to-titles table. An empty path
// uses the built-in table.
type TitlesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ReportConfig configures final report output.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "prospect.db")
	v.SetDefault("search.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("search.max_results_per_search", 5)
	v.SetDefault("search.requests_per_sec", 1.0)
	v.SetDefault("quota.daily_cap", 100)
	v.SetDefault("quota.warn_threshold", 70)
	v.SetDefault("quota.reset_utc_offset_hours", 0)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout_secs", 30)
	v.SetDefault("browser.intervene", false)
	v.SetDefault("pacing.min_secs", 2)
	v.SetDefault("pacing.max_secs", 5)
	v.SetDefault("pacing.long_break_every", 5)
	v.SetDefault("pacing.long_break_min_secs", 15)
	v.SetDefault("pacing.long_break_max_secs", 25)
	v.SetDefault("report.output_dir", "output")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
