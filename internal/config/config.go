// Package config loads the category pager configuration from a YAML file,
// PAGER_* environment variables and command-line flags.
package config

import (
	"time"
)

// Config is the complete pager configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Paging  PagingConfig  `mapstructure:"paging"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// APIConfig configures the catalog API client.
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	UserAgent       string        `mapstructure:"user_agent" validate:"required"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxAttempts     int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown" validate:"gte=0"`
}

// PagingConfig configures the paginated listing.
type PagingConfig struct {
	Resource string        `mapstructure:"resource" validate:"required"`
	PageSize int           `mapstructure:"page_size" validate:"min=1,max=100"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	// Location is the initial shareable URL, e.g. "/categories?page=2".
	Location string `mapstructure:"location" validate:"required"`
}

// RedisConfig selects the shared cache store. An empty Addr keeps the cache in memory.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0,max=15"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"loglevel"`
	Pretty bool   `mapstructure:"pretty"`
	// File receives the logs instead of stderr when set.
	File string `mapstructure:"file"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// UsesRedis reports whether the shared cache lives in Redis.
func (c *Config) UsesRedis() bool {
	return c.Redis.Addr != ""
}
