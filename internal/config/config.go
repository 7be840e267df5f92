package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Seed sources for the initial roster.
const (
	SeedEmbedded = "embedded"
	SeedFile     = "file"
	SeedPostgres = "postgres"
	SeedNone     = "none"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	SeedSource      string        `mapstructure:"SEED_SOURCE"`
	SeedFile        string        `mapstructure:"SEED_FILE"`
	SeedDatabaseURL string        `mapstructure:"SEED_DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	LoadingDelay    time.Duration `mapstructure:"LOADING_DELAY"`
	RateLimitRPS    float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit       string        `mapstructure:"BODY_LIMIT"`
	MetricsEnabled  bool          `mapstructure:"METRICS_ENABLED"`
}

var keys = []string{
	"PORT",
	"ENV",
	"CORS_ORIGINS",
	"SEED_SOURCE",
	"SEED_FILE",
	"SEED_DATABASE_URL",
	"DB_MAX_CONNS",
	"DB_MIN_CONNS",
	"LOADING_DELAY",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"REQUEST_TIMEOUT",
	"BODY_LIMIT",
	"METRICS_ENABLED",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SEED_SOURCE", SeedEmbedded)
	v.SetDefault("DB_MAX_CONNS", 4)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("LOADING_DELAY", "500ms")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("METRICS_ENABLED", true)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}
	cfg.SeedSource = strings.ToLower(strings.TrimSpace(cfg.SeedSource))

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects settings the server cannot start with: an unknown seed
// source, a seed source missing its location, or limits that would refuse
// every request.
func (c *Config) Validate() error {
	switch c.SeedSource {
	case SeedEmbedded, SeedNone:
	case SeedFile:
		if c.SeedFile == "" {
			return fmt.Errorf("SEED_FILE is required when SEED_SOURCE is %q", SeedFile)
		}
	case SeedPostgres:
		if c.SeedDatabaseURL == "" {
			return fmt.Errorf("SEED_DATABASE_URL is required when SEED_SOURCE is %q", SeedPostgres)
		}
		if c.DBMaxConns < 1 {
			return fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.DBMaxConns)
		}
		if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d), got %d", c.DBMaxConns, c.DBMinConns)
		}
	default:
		return fmt.Errorf("SEED_SOURCE must be %q, %q, %q or %q, got %q",
			SeedEmbedded, SeedFile, SeedPostgres, SeedNone, c.SeedSource)
	}

	if c.LoadingDelay < 0 {
		return fmt.Errorf("LOADING_DELAY must not be negative, got %s", c.LoadingDelay)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}

	return nil
}
