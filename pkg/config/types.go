package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string            `mapstructure:"environment"`
	Server       ServerConfig      `mapstructure:"server"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Normalizer   NormalizerConfig  `mapstructure:"normalizer"`
	Topics       TopicsConfig      `mapstructure:"topics"`
	Sources      SourcesConfig     `mapstructure:"sources"`
	Assembler    AssemblerConfig   `mapstructure:"assembler"`
	Processing   ProcessingConfig  `mapstructure:"processing"`
	Export       ExportConfig      `mapstructure:"export"`
	Diagnostics  DiagnosticsConfig `mapstructure:"diagnostics"`
	RateLimiting RateLimitConfig   `mapstructure:"rate_limiting"`
	Logging      LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// NormalizerConfig controls participant name matching
type NormalizerConfig struct {
	Threshold    float64 `mapstructure:"threshold"`
	RegistrySeed string  `mapstructure:"registry_seed"`
}

// TopicsConfig controls topic segmentation
type TopicsConfig struct {
	MarkerPosition string `mapstructure:"marker_position"`
}

// SourcesConfig controls source cleanup before extraction
type SourcesConfig struct {
	BoilerplatePath string   `mapstructure:"boilerplate_path"`
	ExcludedDomains []string `mapstructure:"excluded_domains"`
	PromoLinks      []string `mapstructure:"promo_links"`
}

// AssemblerConfig controls episode assembly
type AssemblerConfig struct {
	StripTitlePrefix bool `mapstructure:"strip_title_prefix"`
}

// ProcessingConfig contains batch processing settings
type ProcessingConfig struct {
	Workers int `mapstructure:"workers"`
}

// ExportConfig contains dataset export settings
type ExportConfig struct {
	Path string `mapstructure:"path"`
}

// DiagnosticsConfig controls how long diagnostic flags are kept. A zero
// retention keeps them forever.
type DiagnosticsConfig struct {
	Retention       time.Duration `mapstructure:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerSecond int  `mapstructure:"requests_per_second"`
	Burst             int  `mapstructure:"burst"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
