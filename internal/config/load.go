package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. INSIGHTS_SERVER_PORT.
const EnvPrefix = "INSIGHTS"

// Load configuration from environment variables and an optional config.yaml
// in the working directory. Environment variables take precedence over values
// from the file.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path searches
// the working directory for config.yaml and tolerates its absence; an
// explicit path must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys without a default are invisible to Unmarshal unless bound.
	if err := v.BindEnv("database.url"); err != nil {
		return nil, fmt.Errorf("error binding database url: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the settings that need a lookup.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Analytics.Timezone); err != nil {
		return fmt.Errorf("config validation failed: unknown timezone %q: %w", cfg.Analytics.Timezone, err)
	}
	if _, err := cfg.Analytics.ProgressParams(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("events.fetch_timeout", 10*time.Second)
	v.SetDefault("events.max_rows", 500_000)
	v.SetDefault("events.breaker.max_requests", 1)
	v.SetDefault("events.breaker.interval", time.Minute)
	v.SetDefault("events.breaker.timeout", 30*time.Second)
	v.SetDefault("events.breaker.consecutive_failures", 5)

	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.session.inactivity_gap", 30*time.Minute)

	v.SetDefault("analytics.paths.window", 7*24*time.Hour)
	v.SetDefault("analytics.paths.min_path_length", 2)
	v.SetDefault("analytics.paths.path_depth", 3)
	v.SetDefault("analytics.paths.completion_threshold_seconds", 30)
	v.SetDefault("analytics.paths.top_paths", 10)
	v.SetDefault("analytics.paths.top_transitions", 15)

	v.SetDefault("analytics.trending.window", 24*time.Hour)
	v.SetDefault("analytics.trending.views_weight", 1.0)
	v.SetDefault("analytics.trending.unique_viewers_weight", 1.5)
	v.SetDefault("analytics.trending.velocity_weight", 20.0)
	v.SetDefault("analytics.trending.min_velocity", -1.0)
	v.SetDefault("analytics.trending.max_velocity", 3.0)
	v.SetDefault("analytics.trending.direction_threshold", 0.1)
	v.SetDefault("analytics.trending.limit", 0)

	v.SetDefault("analytics.search.window", 7*24*time.Hour)
	v.SetDefault("analytics.search.ctr_weight", 0.4)
	v.SetDefault("analytics.search.speed_weight", 0.2)
	v.SetDefault("analytics.search.success_weight", 0.3)
	v.SetDefault("analytics.search.relevance_weight", 0.1)
	v.SetDefault("analytics.search.speed_divisor_ms", 100.0)
	v.SetDefault("analytics.search.relevance_saturation", 10.0)

	v.SetDefault("analytics.progress.tiers", []map[string]any{
		{"min_seconds": 60, "percentage": 100},
		{"min_seconds": 30, "percentage": 75},
		{"min_seconds": 15, "percentage": 50},
		{"min_seconds": 1, "percentage": 25},
	})
	v.SetDefault("analytics.progress.completion_threshold", 75)
	v.SetDefault("analytics.progress.achievement_targets", map[string]int{})
}
