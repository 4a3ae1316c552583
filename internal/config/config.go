// Package config loads and validates the application configuration from
// a file plus WEALTHLENS_* environment overrides.
package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	SyncBaseURL      string        `mapstructure:"sync_base_url"`
	InsightBaseURL   string        `mapstructure:"insight_base_url"`
	SyncTimeout      time.Duration `mapstructure:"sync_timeout"`
	InsightTimeout   time.Duration `mapstructure:"insight_timeout"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	InsightStaleness time.Duration `mapstructure:"insight_staleness"`
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`
	CacheDir         string        `mapstructure:"cache_dir"`
	XIRRMinRate      float64       `mapstructure:"xirr_min_rate"`
	XIRRMaxRate      float64       `mapstructure:"xirr_max_rate"`
	DebugLogging     bool          `mapstructure:"debug_logging"`
	LogFile          string        `mapstructure:"log_file"`
}

const (
	DefaultSyncTimeout      = 30 * time.Second
	DefaultInsightTimeout   = 180 * time.Second
	DefaultCacheTTL         = 24 * time.Hour
	DefaultInsightStaleness = 5 * time.Minute
	DefaultCacheDir         = "cache"
	DefaultLogFile          = "wealthlens.log"

	// Rate clamp for the XIRR solver: -100% to +1000% annualized.
	DefaultXIRRMinRate = -1.0
	DefaultXIRRMaxRate = 10.0
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"sync_timeout":      DefaultSyncTimeout,
		"insight_timeout":   DefaultInsightTimeout,
		"cache_ttl":         DefaultCacheTTL,
		"insight_staleness": DefaultInsightStaleness,
		"refresh_interval":  time.Duration(0), // disabled unless set
		"cache_dir":         DefaultCacheDir,
		"xirr_min_rate":     DefaultXIRRMinRate,
		"xirr_max_rate":     DefaultXIRRMaxRate,
		"log_file":          DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("WEALTHLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.SyncBaseURL == "" {
		return errors.New("missing sync_base_url in configuration")
	}
	if err := validateHTTPURL(cfg.SyncBaseURL); err != nil {
		return errors.New("invalid sync_base_url")
	}
	if cfg.InsightBaseURL != "" {
		if err := validateHTTPURL(cfg.InsightBaseURL); err != nil {
			return errors.New("invalid insight_base_url")
		}
	}
	if cfg.SyncTimeout <= 0 {
		return errors.New("invalid sync_timeout")
	}
	if cfg.InsightTimeout <= 0 {
		return errors.New("invalid insight_timeout")
	}
	if cfg.CacheTTL <= 0 {
		return errors.New("invalid cache_ttl")
	}
	if cfg.InsightStaleness <= 0 {
		return errors.New("invalid insight_staleness")
	}
	if cfg.RefreshInterval < 0 {
		return errors.New("invalid refresh_interval")
	}
	if cfg.XIRRMinRate >= cfg.XIRRMaxRate {
		return errors.New("xirr_min_rate must be below xirr_max_rate")
	}
	return nil
}

func validateHTTPURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("invalid URL protocol")
	}
	return nil
}
