package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configEnvVars = []string{
	"CARTWISE_SERVER_PORT",
	"CARTWISE_SERVER_ENVIRONMENT",
	"CARTWISE_SERVER_ALLOWED_ORIGINS",
	"CARTWISE_CATALOG_SOURCE",
	"CARTWISE_CATALOG_PATH",
	"CARTWISE_CATALOG_DRIVER",
	"CARTWISE_CATALOG_DSN",
	"CARTWISE_CATALOG_URL",
	"CARTWISE_CATALOG_REFRESH_INTERVAL",
	"CARTWISE_SEARCH_DISPLAY_LIMIT",
	"CARTWISE_SEARCH_GENDER_MIN_RESULTS",
	"CARTWISE_SEARCH_RELAX_COLOR",
	"CARTWISE_SESSION_STORE",
	"CARTWISE_SESSION_REDIS_URL",
	"CARTWISE_SESSION_TTL",
	"CARTWISE_RATELIMIT_PER_IP",
	"CARTWISE_LOG_LEVEL",
}

func cleanupEnv() {
	for _, key := range configEnvVars {
		os.Unsetenv(key)
	}
}

// inTempDir runs the test from an empty directory so no config.yaml is found.
func inTempDir(t *testing.T) string {
	t.Helper()
	originalDir, _ := os.Getwd()
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { os.Chdir(originalDir) })
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		inTempDir(t)
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Catalog.Source != "file" {
			t.Errorf("Catalog.Source = %s, want file", cfg.Catalog.Source)
		}
		if cfg.Catalog.RefreshInterval != 0 {
			t.Errorf("Catalog.RefreshInterval = %v, want 0", cfg.Catalog.RefreshInterval)
		}
		if cfg.Search.DisplayLimit != 20 {
			t.Errorf("Search.DisplayLimit = %d, want 20", cfg.Search.DisplayLimit)
		}
		if cfg.Search.GenderMinResults != 5 {
			t.Errorf("Search.GenderMinResults = %d, want 5", cfg.Search.GenderMinResults)
		}
		if !cfg.Search.RelaxCategory || !cfg.Search.RelaxColor || !cfg.Search.RelaxGender {
			t.Errorf("Search relax flags = %+v, want category/color/gender relaxed", cfg.Search)
		}
		if cfg.Search.RelaxPrice {
			t.Errorf("Search.RelaxPrice = true, want false")
		}
		if cfg.Search.AroundSpread != 50 {
			t.Errorf("Search.AroundSpread = %v, want 50", cfg.Search.AroundSpread)
		}
		if cfg.Session.Store != "memory" {
			t.Errorf("Session.Store = %s, want memory", cfg.Session.Store)
		}
		if cfg.Session.TTL != 24*time.Hour {
			t.Errorf("Session.TTL = %v, want 24h", cfg.Session.TTL)
		}
		if cfg.RateLimit.PerIP != 120 {
			t.Errorf("RateLimit.PerIP = %d, want 120", cfg.RateLimit.PerIP)
		}
		if cfg.Log.Level != "info" {
			t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		inTempDir(t)
		cleanupEnv()
		os.Setenv("CARTWISE_SERVER_PORT", "9090")
		os.Setenv("CARTWISE_SERVER_ENVIRONMENT", "production")
		os.Setenv("CARTWISE_CATALOG_SOURCE", "sql")
		os.Setenv("CARTWISE_CATALOG_DRIVER", "postgres")
		os.Setenv("CARTWISE_CATALOG_DSN", "postgres://localhost/catalog")
		os.Setenv("CARTWISE_CATALOG_REFRESH_INTERVAL", "15m")
		os.Setenv("CARTWISE_SEARCH_DISPLAY_LIMIT", "10")
		os.Setenv("CARTWISE_SEARCH_RELAX_COLOR", "false")
		os.Setenv("CARTWISE_SESSION_STORE", "redis")
		os.Setenv("CARTWISE_SESSION_REDIS_URL", "redis://localhost:6379")
		os.Setenv("CARTWISE_SESSION_TTL", "1h")
		os.Setenv("CARTWISE_RATELIMIT_PER_IP", "200")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Catalog.Source != "sql" || cfg.Catalog.Driver != "postgres" {
			t.Errorf("Catalog = %+v, want sql/postgres", cfg.Catalog)
		}
		if cfg.Catalog.DSN != "postgres://localhost/catalog" {
			t.Errorf("Catalog.DSN = %s, want postgres://localhost/catalog", cfg.Catalog.DSN)
		}
		if cfg.Catalog.RefreshInterval != 15*time.Minute {
			t.Errorf("Catalog.RefreshInterval = %v, want 15m", cfg.Catalog.RefreshInterval)
		}
		if cfg.Search.DisplayLimit != 10 {
			t.Errorf("Search.DisplayLimit = %d, want 10", cfg.Search.DisplayLimit)
		}
		if cfg.Search.RelaxColor {
			t.Errorf("Search.RelaxColor = true, want false")
		}
		if cfg.Session.Store != "redis" {
			t.Errorf("Session.Store = %s, want redis", cfg.Session.Store)
		}
		if cfg.Session.RedisURL != "redis://localhost:6379" {
			t.Errorf("Session.RedisURL = %s, want redis://localhost:6379", cfg.Session.RedisURL)
		}
		if cfg.Session.TTL != time.Hour {
			t.Errorf("Session.TTL = %v, want 1h", cfg.Session.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
	})

	t.Run("reads config.yaml from the working directory", func(t *testing.T) {
		dir := inTempDir(t)
		cleanupEnv()
		defer cleanupEnv()

		content := "catalog:\n  source: http\n  url: https://shop.example.com\nlog:\n  level: debug\n"
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config.yaml: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Catalog.Source != "http" || cfg.Catalog.URL != "https://shop.example.com" {
			t.Errorf("Catalog = %+v, want http source", cfg.Catalog)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
		}
	})

	t.Run("fails validation for invalid session store", func(t *testing.T) {
		inTempDir(t)
		cleanupEnv()
		os.Setenv("CARTWISE_SESSION_STORE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid session store")
		}
	})

	t.Run("fails validation when redis URL missing for redis store", func(t *testing.T) {
		inTempDir(t)
		cleanupEnv()
		os.Setenv("CARTWISE_SESSION_STORE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		inTempDir(t)

		if err := LoadEnvFile(); err != nil {
			t.Errorf("LoadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		inTempDir(t)

		envContent := `
# Comment line
TEST_VAR_1=value1

TEST_VAR_2=value2
# TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_COMMENTED")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
		}()

		if err := LoadEnvFile(); err != nil {
			t.Fatalf("LoadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		inTempDir(t)
		os.Setenv("TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("TEST_OVERRIDE")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := LoadEnvFile(); err != nil {
			t.Fatalf("LoadEnvFile() error = %v, want nil", err)
		}
		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func validConfig() *Config {
	return &Config{
		Catalog:   CatalogConfig{Source: "file", Path: "products.json"},
		Search:    SearchConfig{DisplayLimit: 20},
		Session:   SessionConfig{Store: "memory"},
		RateLimit: RateLimitConfig{PerIP: 100},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid file catalog",
			mutate: func(c *Config) {},
		},
		{
			name: "valid sql catalog",
			mutate: func(c *Config) {
				c.Catalog = CatalogConfig{Source: "sql", Driver: "sqlite3", DSN: "catalog.db"}
			},
		},
		{
			name: "valid redis session store",
			mutate: func(c *Config) {
				c.Session = SessionConfig{Store: "redis", RedisURL: "redis://localhost:6379"}
			},
		},
		{
			name:    "unknown catalog source",
			mutate:  func(c *Config) { c.Catalog.Source = "ftp" },
			wantErr: "catalog source must be",
		},
		{
			name:    "file source without path",
			mutate:  func(c *Config) { c.Catalog.Path = "" },
			wantErr: "catalog path is required",
		},
		{
			name: "sql source with unsupported driver",
			mutate: func(c *Config) {
				c.Catalog = CatalogConfig{Source: "sql", Driver: "mysql", DSN: "x"}
			},
			wantErr: "catalog driver must be",
		},
		{
			name:    "sql source without dsn",
			mutate:  func(c *Config) { c.Catalog = CatalogConfig{Source: "sql", Driver: "postgres"} },
			wantErr: "catalog dsn is required",
		},
		{
			name:    "http source without url",
			mutate:  func(c *Config) { c.Catalog = CatalogConfig{Source: "http"} },
			wantErr: "catalog url is required",
		},
		{
			name:    "negative refresh interval",
			mutate:  func(c *Config) { c.Catalog.RefreshInterval = -time.Second },
			wantErr: "refresh interval",
		},
		{
			name:    "invalid session store",
			mutate:  func(c *Config) { c.Session.Store = "disk" },
			wantErr: "session store must be",
		},
		{
			name:    "redis store without URL",
			mutate:  func(c *Config) { c.Session.Store = "redis" },
			wantErr: "redis URL is required",
		},
		{
			name:    "zero display limit",
			mutate:  func(c *Config) { c.Search.DisplayLimit = 0 },
			wantErr: "display limit",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.RateLimit.PerIP = 0 },
			wantErr: "rate limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
