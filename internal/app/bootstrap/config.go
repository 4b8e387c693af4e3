package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration. It is built once at startup
// and never mutated afterwards; everything downstream receives copies or
// derived values.
type Config struct {
	ServiceName string
	HTTPPort    int
	Environment string

	DatabaseURL string
	RedisURL    string
	MaxDBConns  int

	JWTSecret  string
	TokenTTL   time.Duration
	CookieTTL  time.Duration
	BcryptCost int

	FailedLoginThreshold int
	LockoutDuration      time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// IsProduction gates the secure cookie attribute and other prod-only
// behavior.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// configFile mirrors the YAML schema of configs/default.yaml. It is kept
// separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		Name        string `yaml:"name"`
		HTTPPort    int    `yaml:"http_port"`
		Environment string `yaml:"environment"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Auth struct {
		TokenTTLHours  int `yaml:"token_ttl_hours"`
		CookieTTLHours int `yaml:"cookie_ttl_hours"`
		BcryptCost     int `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	SMTP struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		From string `yaml:"from"`
	} `yaml:"smtp"`
}

// LoadConfig resolves configuration in priority order: defaults -> file ->
// environment. The order keeps local bootstrap simple while letting deployed
// environments override everything.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceName:          "tours-api",
		HTTPPort:             8080,
		Environment:          "development",
		MaxDBConns:           20,
		TokenTTL:             24 * time.Hour,
		CookieTTL:            24 * time.Hour,
		BcryptCost:           12,
		FailedLoginThreshold: 5,
		LockoutDuration:      30 * time.Minute,
		SMTPPort:             587,
		SMTPFrom:             "no-reply@tours.example.com",
	}

	if raw, err := os.ReadFile(path); err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.Name != "" {
			cfg.ServiceName = f.Service.Name
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.Environment != "" {
			cfg.Environment = f.Service.Environment
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Auth.TokenTTLHours > 0 {
			cfg.TokenTTL = time.Duration(f.Auth.TokenTTLHours) * time.Hour
		}
		if f.Auth.CookieTTLHours > 0 {
			cfg.CookieTTL = time.Duration(f.Auth.CookieTTLHours) * time.Hour
		}
		if f.Auth.BcryptCost > 0 {
			cfg.BcryptCost = f.Auth.BcryptCost
		}
		if f.SMTP.Host != "" {
			cfg.SMTPHost = f.SMTP.Host
		}
		if f.SMTP.Port > 0 {
			cfg.SMTPPort = f.SMTP.Port
		}
		if f.SMTP.From != "" {
			cfg.SMTPFrom = f.SMTP.From
		}
	}

	cfg.Environment = envOrDefault("APP_ENV", cfg.Environment)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.MaxDBConns = envInt("DB_MAX_CONNS", cfg.MaxDBConns)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = time.Duration(envInt("JWT_EXPIRES_IN_HOURS", int(cfg.TokenTTL.Hours()))) * time.Hour
	cfg.CookieTTL = time.Duration(envInt("JWT_COOKIE_EXPIRES_IN_HOURS", int(cfg.CookieTTL.Hours()))) * time.Hour
	cfg.BcryptCost = envInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.FailedLoginThreshold = envInt("FAILED_LOGIN_THRESHOLD", cfg.FailedLoginThreshold)
	cfg.LockoutDuration = time.Duration(envInt("ACCOUNT_LOCKOUT_MINUTES", int(cfg.LockoutDuration.Minutes()))) * time.Minute
	cfg.SMTPHost = envOrDefault("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = envInt("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = envOrDefault("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = envOrDefault("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SMTPFrom = envOrDefault("SMTP_FROM", cfg.SMTPFrom)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
