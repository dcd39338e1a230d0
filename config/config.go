package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Search    SearchConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig selects where products are loaded from
type CatalogConfig struct {
	Source          string        `mapstructure:"source"` // "file", "sql" or "http"
	Path            string        `mapstructure:"path"`
	Driver          string        `mapstructure:"driver"` // "sqlite3" or "postgres"
	DSN             string        `mapstructure:"dsn"`
	URL             string        `mapstructure:"url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// SearchConfig tunes parsing, filtering and display
type SearchConfig struct {
	DisplayLimit     int     `mapstructure:"display_limit"`
	GenderMinResults int     `mapstructure:"gender_min_results"`
	RelaxCategory    bool    `mapstructure:"relax_category"`
	RelaxColor       bool    `mapstructure:"relax_color"`
	RelaxGender      bool    `mapstructure:"relax_gender"`
	RelaxPrice       bool    `mapstructure:"relax_price"`
	AroundSpread     float64 `mapstructure:"around_spread"`
	SynonymsPath     string  `mapstructure:"synonyms_path"`
}

// SessionConfig holds session filter storage configuration
type SessionConfig struct {
	Store     string        `mapstructure:"store"` // "memory" or "redis"
	RedisURL  string        `mapstructure:"redis_url"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cartwise/")

	// CARTWISE_SESSION_REDIS_URL maps to session.redis_url
	v.SetEnvPrefix("CARTWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadEnvFile loads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadEnvFile() error {
	return loadEnvFile(".env")
}

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values. Every key is registered so
// AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("catalog.source", "file")
	v.SetDefault("catalog.path", "data/products.json")
	v.SetDefault("catalog.driver", "sqlite3")
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("catalog.url", "")
	v.SetDefault("catalog.refresh_interval", "0s")

	v.SetDefault("search.display_limit", 20)
	v.SetDefault("search.gender_min_results", 5)
	v.SetDefault("search.relax_category", true)
	v.SetDefault("search.relax_color", true)
	v.SetDefault("search.relax_gender", true)
	v.SetDefault("search.relax_price", false)
	v.SetDefault("search.around_spread", 50.0)
	v.SetDefault("search.synonyms_path", "")

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.redis_url", "")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.key_prefix", "cartwise:")

	v.SetDefault("ratelimit.per_ip", 120)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Source {
	case "file":
		if config.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required when source is 'file' (set CARTWISE_CATALOG_PATH)")
		}
	case "sql":
		if config.Catalog.Driver != "sqlite3" && config.Catalog.Driver != "postgres" {
			return fmt.Errorf("catalog driver must be 'sqlite3' or 'postgres', got: %s", config.Catalog.Driver)
		}
		if config.Catalog.DSN == "" {
			return fmt.Errorf("catalog dsn is required when source is 'sql' (set CARTWISE_CATALOG_DSN)")
		}
	case "http":
		if config.Catalog.URL == "" {
			return fmt.Errorf("catalog url is required when source is 'http' (set CARTWISE_CATALOG_URL)")
		}
	default:
		return fmt.Errorf("catalog source must be 'file', 'sql' or 'http', got: %s", config.Catalog.Source)
	}

	if config.Catalog.RefreshInterval < 0 {
		return fmt.Errorf("catalog refresh interval must not be negative")
	}

	if config.Session.Store != "memory" && config.Session.Store != "redis" {
		return fmt.Errorf("session store must be 'memory' or 'redis', got: %s", config.Session.Store)
	}

	if config.Session.Store == "redis" && config.Session.RedisURL == "" {
		return fmt.Errorf("redis URL is required when session store is 'redis'")
	}

	if config.Search.DisplayLimit <= 0 {
		return fmt.Errorf("search display limit must be positive, got: %d", config.Search.DisplayLimit)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("rate limit per IP must be positive, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
