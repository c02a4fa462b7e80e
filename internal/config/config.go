package config

import (
	"time"

	"github.com/maxviazov/user-directory-service/internal/logger"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger" validate:"-"` // validated by logger.New after defaults
	Upstream UpstreamConfig      `mapstructure:"upstream"`
	Cache    CacheConfig         `mapstructure:"cache"`
	Redis    RedisConfig         `mapstructure:"redis"`
	View     ViewConfig          `mapstructure:"view"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name" validate:"required"`
	Version         string        `mapstructure:"version" validate:"required"`
	Env             string        `mapstructure:"env"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// UpstreamConfig points at the remote user directory API.
type UpstreamConfig struct {
	BaseURL          string        `mapstructure:"base_url" validate:"required,url"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"gt=0"`
	TotalCountHeader string        `mapstructure:"total_count_header" validate:"required"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns" validate:"min=0"`
}

// CacheConfig controls page caching. StaleTime is how long an entry is served without
// revalidation, GCTime how long it is kept at all.
type CacheConfig struct {
	Backend   string        `mapstructure:"backend" validate:"oneof=memory redis"`
	StaleTime time.Duration `mapstructure:"stale_time" validate:"min=0"`
	GCTime    time.Duration `mapstructure:"gc_time" validate:"gtefield=StaleTime"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// ViewConfig holds the page defaults derived from the URL when parameters are missing.
type ViewConfig struct {
	DefaultLimit  int           `mapstructure:"default_limit" validate:"min=1"`
	MaxLimit      int           `mapstructure:"max_limit" validate:"gtefield=DefaultLimit"`
	PageSizes     []int         `mapstructure:"page_sizes" validate:"min=1,dive,min=1"`
	RenderTimeout time.Duration `mapstructure:"render_timeout" validate:"gt=0"`
}
