package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

const (
	CacheBackendSQL   = "sql"
	CacheBackendRedis = "redis"
)

type Config struct {
	AppName     string `mapstructure:"app_name"`
	Environment string `mapstructure:"environment"`

	Log      LogConfig      `mapstructure:"log"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RemoteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds each API call. Zero means calls are not bounded.
	Timeout time.Duration `mapstructure:"timeout"`
	NodeID  int64         `mapstructure:"node_id"`
}

type CatalogConfig struct {
	Variant  string `mapstructure:"variant"`
	CacheKey string `mapstructure:"cache_key"`
}

type CacheConfig struct {
	Backend string `mapstructure:"backend"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type TracingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// Protocol is "http" or "grpc".
	Protocol string `mapstructure:"protocol"`
	Insecure bool   `mapstructure:"insecure"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "catalogadmin")
	v.SetDefault("environment", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("remote.base_url", "http://localhost:8080")
	v.SetDefault("remote.timeout", time.Duration(0))
	v.SetDefault("remote.node_id", 1)
	v.SetDefault("catalog.variant", "full")
	v.SetDefault("catalog.cache_key", "products")
	v.SetDefault("cache.backend", CacheBackendSQL)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "catalog.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("http.addr", ":8081")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.protocol", "http")
	v.SetDefault("tracing.insecure", true)
}

// Load reads configuration from defaults, an optional config file named by
// CATALOG_CONFIG, a .env file and CATALOG_* environment variables, in increasing priority.
func Load() (Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("config")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Remote.BaseURL) == "" {
		return fmt.Errorf("remote.base_url is required")
	}
	if strings.TrimSpace(c.Catalog.CacheKey) == "" {
		return fmt.Errorf("catalog.cache_key is required")
	}
	switch c.Cache.Backend {
	case CacheBackendSQL, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	switch strings.ToLower(c.Tracing.Protocol) {
	case "", "http", "grpc":
	default:
		return fmt.Errorf("unknown tracing.protocol %q", c.Tracing.Protocol)
	}
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("remote.timeout must not be negative")
	}
	return nil
}
