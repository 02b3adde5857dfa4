package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Events    EventsConfig    `mapstructure:"events" validate:"required"`
	Analytics AnalyticsConfig `mapstructure:"analytics" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gt=0"`
}

// EventsConfig bounds every fetch from the event logs.
type EventsConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`
	MaxRows      int           `mapstructure:"max_rows" validate:"gt=0"`
	Breaker      BreakerConfig `mapstructure:"breaker" validate:"required"`
}

// BreakerConfig configures the circuit breaker guarding the event store.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `mapstructure:"max_requests" validate:"gt=0"`
	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration `mapstructure:"interval" validate:"gte=0"`
	// Timeout is how long the breaker stays open before probing again.
	Timeout             time.Duration `mapstructure:"timeout" validate:"gt=0"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures" validate:"gt=0"`
}

// AnalyticsConfig holds the tunable parameters of every aggregation.
type AnalyticsConfig struct {
	// Timezone names the IANA location used for calendar days.
	Timezone string         `mapstructure:"timezone" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
	Paths    PathsConfig    `mapstructure:"paths" validate:"required"`
	Trending TrendingConfig `mapstructure:"trending" validate:"required"`
	Search   SearchConfig   `mapstructure:"search" validate:"required"`
	Progress ProgressConfig `mapstructure:"progress" validate:"required"`
}

// SessionConfig configures session reconstruction.
type SessionConfig struct {
	InactivityGap time.Duration `mapstructure:"inactivity_gap" validate:"gt=0"`
}

// PathsConfig configures navigation path mining.
type PathsConfig struct {
	// Window is how far back view events are read for sessions and paths.
	Window                     time.Duration `mapstructure:"window" validate:"gt=0"`
	MinPathLength              int           `mapstructure:"min_path_length" validate:"gte=1"`
	PathDepth                  int           `mapstructure:"path_depth" validate:"gte=1"`
	CompletionThresholdSeconds int           `mapstructure:"completion_threshold_seconds" validate:"gte=0"`
	TopPaths                   int           `mapstructure:"top_paths" validate:"gt=0"`
	TopTransitions             int           `mapstructure:"top_transitions" validate:"gt=0"`
}

// TrendingConfig configures trending scores.
type TrendingConfig struct {
	Window              time.Duration `mapstructure:"window" validate:"gt=0"`
	ViewsWeight         float64       `mapstructure:"views_weight" validate:"gte=0"`
	UniqueViewersWeight float64       `mapstructure:"unique_viewers_weight" validate:"gte=0"`
	VelocityWeight      float64       `mapstructure:"velocity_weight" validate:"gte=0"`
	MinVelocity         float64       `mapstructure:"min_velocity" validate:"ltefield=MaxVelocity"`
	MaxVelocity         float64       `mapstructure:"max_velocity"`
	DirectionThreshold  float64       `mapstructure:"direction_threshold" validate:"gte=0"`
	Limit               int           `mapstructure:"limit" validate:"gte=0"`
}

// SearchConfig configures search quality scoring.
type SearchConfig struct {
	Window              time.Duration `mapstructure:"window" validate:"gt=0"`
	CTRWeight           float64       `mapstructure:"ctr_weight" validate:"gte=0"`
	SpeedWeight         float64       `mapstructure:"speed_weight" validate:"gte=0"`
	SuccessWeight       float64       `mapstructure:"success_weight" validate:"gte=0"`
	RelevanceWeight     float64       `mapstructure:"relevance_weight" validate:"gte=0"`
	SpeedDivisorMs      float64       `mapstructure:"speed_divisor_ms" validate:"gt=0"`
	RelevanceSaturation float64       `mapstructure:"relevance_saturation" validate:"gt=0"`
}

// TierConfig is one progress tier: a view lasting at least MinSeconds earns
// Percentage.
type TierConfig struct {
	MinSeconds int `mapstructure:"min_seconds" validate:"gt=0"`
	Percentage int `mapstructure:"percentage" validate:"gt=0,lte=100"`
}

// ProgressConfig configures progress, unlocks and achievements.
type ProgressConfig struct {
	// Tiers maps one view's duration to a percentage, longest first.
	Tiers               []TierConfig `mapstructure:"tiers" validate:"required,min=1,dive"`
	CompletionThreshold int          `mapstructure:"completion_threshold" validate:"gte=1,lte=100"`
	// AchievementTargets overrides achievement targets keyed by id.
	AchievementTargets map[string]int `mapstructure:"achievement_targets" validate:"dive,gt=0"`
}
