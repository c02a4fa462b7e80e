package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads path (YAML) and applies APP_* environment overrides on top of built-in defaults.
// An empty path skips the file; a named file that cannot be read is an error.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables always win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "user-directory-service")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.read_timeout", 10*time.Second)
	v.SetDefault("app.write_timeout", 15*time.Second)
	v.SetDefault("app.shutdown_timeout", 10*time.Second)

	v.SetDefault("logger.env", "prod")
	v.SetDefault("logger.level", "")
	v.SetDefault("logger.format", "")
	v.SetDefault("logger.output_target", "")
	v.SetDefault("logger.time_format", "")
	v.SetDefault("logger.debug_file", "logs/debug.log")

	v.SetDefault("upstream.base_url", "https://jsonplaceholder.typicode.com")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.total_count_header", "X-Total-Count")
	v.SetDefault("upstream.max_idle_conns", 100)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.stale_time", 30*time.Second)
	v.SetDefault("cache.gc_time", 5*time.Minute)
	v.SetDefault("cache.key_prefix", "userdir:")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("view.default_limit", 5)
	v.SetDefault("view.max_limit", 100)
	v.SetDefault("view.page_sizes", []int{5, 10})
	v.SetDefault("view.render_timeout", 3*time.Second)
}
