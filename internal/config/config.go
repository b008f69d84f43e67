package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the server.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// SessionSecret signs session bearer tokens. The default is only
	// acceptable in development.
	SessionSecret   string        `mapstructure:"SESSION_SECRET"`
	DefaultSession  string        `mapstructure:"DEFAULT_SESSION"`
	SessionTokenTTL time.Duration `mapstructure:"SESSION_TOKEN_TTL"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MaxBodySize    string        `mapstructure:"MAX_BODY_SIZE"`
}

// DevSessionSecret is the signing secret used when none is configured.
// Load refuses it outside development.
const DevSessionSecret = "viatra-dev-secret-do-not-use-in-prod"

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SESSION_SECRET", DevSessionSecret)
	v.SetDefault("DEFAULT_SESSION", "demo")
	v.SetDefault("SESSION_TOKEN_TTL", "24h")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("MAX_BODY_SIZE", "1M")

	_ = v.BindEnv("PORT")
	_ = v.BindEnv("ENV")
	_ = v.BindEnv("LOG_LEVEL")
	_ = v.BindEnv("CORS_ORIGINS")
	_ = v.BindEnv("SESSION_SECRET")
	_ = v.BindEnv("DEFAULT_SESSION")
	_ = v.BindEnv("SESSION_TOKEN_TTL")
	_ = v.BindEnv("RATE_LIMIT_RPS")
	_ = v.BindEnv("RATE_LIMIT_BURST")
	_ = v.BindEnv("REQUEST_TIMEOUT")
	_ = v.BindEnv("MAX_BODY_SIZE")

	// Try reading the .env file, but don't fail if it is missing.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// CORS_ORIGINS arrives as a comma-separated string from env vars.
	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsDev() {
		log.Println("WARNING: server is running in DEVELOPMENT mode.")
		log.Println("WARNING: session addressing is open; any caller may name any session.")
		if cfg.SessionSecret == DevSessionSecret {
			log.Println("WARNING: using the built-in dev session secret. Set SESSION_SECRET before deploying.")
		}
	}

	return cfg, nil
}

// Validate checks configuration invariants that cannot be defaulted away.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.DefaultSession == "" {
		return fmt.Errorf("DEFAULT_SESSION must not be empty")
	}
	if c.SessionTokenTTL <= 0 {
		return fmt.Errorf("SESSION_TOKEN_TTL must be positive, got %s", c.SessionTokenTTL)
	}
	if c.IsProduction() {
		if c.SessionSecret == DevSessionSecret {
			return fmt.Errorf("SESSION_SECRET is required in production (the dev default is not allowed)")
		}
		if len(c.SessionSecret) < 32 {
			return fmt.Errorf("SESSION_SECRET must be at least 32 bytes in production, got %d", len(c.SessionSecret))
		}
	}
	return nil
}

// IsDev returns true when running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
