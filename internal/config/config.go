package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultFirebaseJWKSURL publishes the signing keys for Firebase ID tokens.
const DefaultFirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// Supported access policy names.
const (
	PolicyAllowlist = "allowlist"
	PolicyOwnership = "ownership"
	PolicyRole      = "role"
	PolicyRego      = "rego"
)

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// FirebaseConfig holds ID token verification configuration.
type FirebaseConfig struct {
	ProjectID string `env:"FIREBASE_PROJECT_ID"`
	JWKSURL   string `env:"FIREBASE_JWKS_URL"`
}

// AuthConfig selects and configures the access policy.
type AuthConfig struct {
	Policy         string   `env:"AUTH_POLICY" envDefault:"allowlist"`
	AllowedEmails  []string `env:"AUTH_ALLOWED_EMAILS" envSeparator:"," envDefault:"dinhthongchau@gmail.com"`
	AllowedRoles   []string `env:"AUTH_ALLOWED_ROLES" envSeparator:"," envDefault:"super-admin,admin,user"`
	RegoPolicyPath string   `env:"AUTH_REGO_POLICY_PATH"`
}

// PageConfig holds the server-side pagination defaults.
type PageConfig struct {
	DefaultLimit int `env:"PAGE_DEFAULT_LIMIT" envDefault:"20"`
	MaxLimit     int `env:"PAGE_MAX_LIMIT" envDefault:"100"`
}

// RateLimitConfig configures request limiting per user and per client
// address. An empty RedisAddr selects the in-process limiter.
type RateLimitConfig struct {
	Requests       int           `env:"RATE_LIMIT_REQUESTS" envDefault:"120"`
	ClientRequests int           `env:"RATE_LIMIT_CLIENT_REQUESTS" envDefault:"600"`
	Window         time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
}

// StorageConfig configures S3-compatible storage for word images.
// Word image routes are disabled when Bucket is empty.
type StorageConfig struct {
	Bucket     string        `env:"S3_BUCKET"`
	Region     string        `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint   string        `env:"S3_ENDPOINT"`
	AccessKey  string        `env:"S3_ACCESS_KEY"`
	SecretKey  string        `env:"S3_SECRET_KEY"`
	PresignTTL time.Duration `env:"S3_PRESIGN_TTL" envDefault:"15m"`
}

// Enabled reports whether image storage is configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	Environment    string        `env:"ENV" envDefault:"development"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	Database       DatabaseConfig
	Firebase       FirebaseConfig
	Auth           AuthConfig
	Page           PageConfig
	RateLimit      RateLimitConfig
	Storage        StorageConfig
	Log            LogConfig
}

// Load reads configuration from environment variables.
// It fails fast with clear errors for missing required values.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	var missing []string
	if cfg.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.Firebase.ProjectID == "" {
		missing = append(missing, "FIREBASE_PROJECT_ID")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	if cfg.Firebase.JWKSURL == "" {
		cfg.Firebase.JWKSURL = DefaultFirebaseJWKSURL
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MigrationConfig is the subset needed to run schema migrations.
type MigrationConfig struct {
	Database DatabaseConfig
	Log      LogConfig
}

// LoadMigration reads only the database and log settings, so migrations
// can run without Firebase configuration.
func LoadMigration() (*MigrationConfig, error) {
	var cfg MigrationConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("missing required environment variables: [DATABASE_URL]")
	}
	if err := validateDatabaseURL(cfg.Database.URL); err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid ENV value %q: must be development, staging, or production", c.Environment)
	}

	if err := validateDatabaseURL(c.Database.URL); err != nil {
		return fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	if err := validateHTTPURL(c.Firebase.JWKSURL); err != nil {
		return fmt.Errorf("invalid FIREBASE_JWKS_URL: %w", err)
	}

	c.Auth.Policy = strings.ToLower(strings.TrimSpace(c.Auth.Policy))
	switch c.Auth.Policy {
	case PolicyAllowlist:
		if len(nonEmpty(c.Auth.AllowedEmails)) == 0 {
			return fmt.Errorf("AUTH_ALLOWED_EMAILS must name at least one address for the allowlist policy")
		}
	case PolicyRole:
		if len(nonEmpty(c.Auth.AllowedRoles)) == 0 {
			return fmt.Errorf("AUTH_ALLOWED_ROLES must name at least one role for the role policy")
		}
	case PolicyOwnership:
	case PolicyRego:
		if c.Auth.RegoPolicyPath == "" {
			return fmt.Errorf("AUTH_REGO_POLICY_PATH is required for the rego policy")
		}
	default:
		return fmt.Errorf("invalid AUTH_POLICY %q: must be allowlist, ownership, role, or rego", c.Auth.Policy)
	}

	if c.Page.DefaultLimit <= 0 || c.Page.MaxLimit <= 0 {
		return fmt.Errorf("PAGE_DEFAULT_LIMIT and PAGE_MAX_LIMIT must be positive")
	}
	if c.Page.DefaultLimit > c.Page.MaxLimit {
		return fmt.Errorf("PAGE_DEFAULT_LIMIT (%d) exceeds PAGE_MAX_LIMIT (%d)", c.Page.DefaultLimit, c.Page.MaxLimit)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.Storage.Enabled() && c.Storage.Endpoint != "" {
		if err := validateHTTPURL(c.Storage.Endpoint); err != nil {
			return fmt.Errorf("invalid S3_ENDPOINT: %w", err)
		}
	}

	return nil
}

// validateDatabaseURL ensures the database URL is a valid PostgreSQL connection string.
func validateDatabaseURL(dbURL string) error {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}

	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return fmt.Errorf("URL must use postgres or postgresql scheme, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
