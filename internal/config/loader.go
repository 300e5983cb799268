package config

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/category-pager/pkg/logging"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PAGER_API_BASE_URL.
const EnvPrefix = "PAGER"

// New returns a viper instance carrying the defaults and environment
// bindings. Callers may bind flags on it before passing it to Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.user_agent", "category-pager/0.1.0")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.max_attempts", 3)
	v.SetDefault("api.breaker_failures", 5)
	v.SetDefault("api.breaker_cooldown", "30s")

	v.SetDefault("paging.resource", "categories")
	v.SetDefault("paging.page_size", 5)
	v.SetDefault("paging.cache_ttl", "5m")
	v.SetDefault("paging.location", "/categories")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.file", "")

	v.SetDefault("metrics.addr", "")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file at path into v, then unmarshals and
// validates the result. Without a path only defaults, environment and
// bound flags apply.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := newValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}

// newValidator returns a validator that also understands the loglevel tag.
func newValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return logging.ValidLevel(fl.Field().String())
	})
	return validate
}
