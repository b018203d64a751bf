package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigPath is the settings file read by Init
const DefaultConfigPath = "./config/settings.yaml"

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		initErr = Load(DefaultConfigPath)
	})
	return initErr
}

// Load reads defaults, the given settings file (if present) and
// COFFEEBREAK_* environment overrides into the global viper instance.
func Load(path string) error {
	setDefaults()

	viper.SetEnvPrefix("COFFEEBREAK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configPath := filepath.Clean(path)
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat returns a float config value
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStringSlice returns a string slice config value
func GetStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// Debugf logs with the [DEBUG] prefix when logging.level is debug
func Debugf(format string, args ...interface{}) {
	if strings.EqualFold(viper.GetString("logging.level"), "debug") {
		log.Printf("[DEBUG] "+format, args...)
	}
}

func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	if viper.GetString("database.path") == "" {
		log.Println("[WARN] No database path configured")
	}

	threshold := viper.GetFloat64("normalizer.threshold")
	if threshold <= 0 || threshold > 1 {
		return fmt.Errorf("normalizer.threshold must be in (0, 1], got %v", threshold)
	}

	switch viper.GetString("topics.marker_position") {
	case "after", "before", "auto":
	default:
		return fmt.Errorf("topics.marker_position must be after, before or auto, got %q",
			viper.GetString("topics.marker_position"))
	}

	if viper.GetDuration("diagnostics.retention") > 0 && viper.GetDuration("diagnostics.cleanup_interval") <= 0 {
		return fmt.Errorf("diagnostics.cleanup_interval must be positive when retention is set")
	}

	// Auto-correct invalid worker count
	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 2)
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Normalizer.Threshold <= 0 || c.Normalizer.Threshold > 1 {
		return fmt.Errorf("invalid normalizer threshold: %v", c.Normalizer.Threshold)
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 2
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "./data/coffeebreak.db")
	viper.SetDefault("database.verbose", false)

	// Name normalization
	viper.SetDefault("normalizer.threshold", 0.88)
	viper.SetDefault("normalizer.registry_seed", "")

	// Topic segmentation
	viper.SetDefault("topics.marker_position", "after")

	// Sources
	viper.SetDefault("sources.boilerplate_path", "./config/boilerplate.yaml")
	viper.SetDefault("sources.excluded_domains", []string{
		"ivoox.com",
		"go.ivoox.com",
		"feedburner.com",
		"facebook.com",
		"twitter.com",
		"x.com",
	})
	viper.SetDefault("sources.promo_links", []string{})

	// Assembly
	viper.SetDefault("assembler.strip_title_prefix", true)

	// Processing defaults
	viper.SetDefault("processing.workers", 4)

	// Export
	viper.SetDefault("export.path", "./data/master_dataset.json")

	// Diagnostic flag retention
	viper.SetDefault("diagnostics.retention", 90*24*time.Hour)
	viper.SetDefault("diagnostics.cleanup_interval", 24*time.Hour)

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.requests_per_second", 10)
	viper.SetDefault("rate_limiting.burst", 20)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
}
