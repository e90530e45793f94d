package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"meeting_cost_tui/internal/stats"
)

// Config holds the complete application configuration
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Timer   TimerConfig   `mapstructure:"timer"`
	Stats   StatsConfig   `mapstructure:"stats"`
}

// StorageConfig selects and configures the key-value backend
type StorageConfig struct {
	Type          string `mapstructure:"type"` // "sqlite" or "redis"
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TimerConfig tunes the session engine
type TimerConfig struct {
	TickInterval    string `mapstructure:"tick_interval"`
	SessionExpiry   string `mapstructure:"session_expiry"`
	MaxParticipants int    `mapstructure:"max_participants"`
}

// StatsConfig configures the optional remote usage counter
type StatsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Origin  string `mapstructure:"origin"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("MCC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.path", "meeting_cost.db")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("timer.tick_interval", "1s")
	v.SetDefault("timer.session_expiry", "24h")
	v.SetDefault("timer.max_participants", 1000)

	v.SetDefault("stats.enabled", false)
	v.SetDefault("stats.url", stats.DefaultURL)
	v.SetDefault("stats.origin", "meeting-cost-tui")
}

func validate(c *Config) error {
	switch c.Storage.Type {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("unknown storage type %q (must be sqlite or redis)", c.Storage.Type)
	}
	if c.Storage.Type == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path must be set for sqlite storage")
	}
	return nil
}

// ParsedTickInterval returns the parsed tick interval, falling back to one second.
func (c TimerConfig) ParsedTickInterval() time.Duration {
	return parseDuration(c.TickInterval, time.Second)
}

// ParsedSessionExpiry returns the parsed expiry threshold, falling back to 24h.
func (c TimerConfig) ParsedSessionExpiry() time.Duration {
	return parseDuration(c.SessionExpiry, 24*time.Hour)
}

// parseDuration parses a duration string with a fallback
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
