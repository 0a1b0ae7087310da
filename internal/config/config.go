package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"production"`
	Server    ServerConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Coupon    CouponConfig
	Payment   PaymentConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host              string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port              int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout       time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout      time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	MaxUploadBytes    int64         `envconfig:"SERVER_MAX_UPLOAD_BYTES" default:"10485760"`
	CORSAllowedOrigin string        `envconfig:"CORS_ALLOWED_ORIGIN" default:"*"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `envconfig:"DB_HOST" default:"localhost"`
	Port            int    `envconfig:"DB_PORT" default:"5432"`
	User            string `envconfig:"DB_USER" default:"postgres"`
	Password        string `envconfig:"DB_PASSWORD"`
	Database        string `envconfig:"DB_NAME" default:"storefront"`
	MaxConnections  int    `envconfig:"DB_MAX_CONNECTIONS" default:"25"`
	MinConnections  int    `envconfig:"DB_MIN_CONNECTIONS" default:"5"`
	MaxConnLifetime int    `envconfig:"DB_MAX_CONN_LIFETIME" default:"300"` // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"` // "json" or "console"
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

// StorageConfig selects where product and category images are stored.
type StorageConfig struct {
	Backend  string `envconfig:"STORAGE_BACKEND" default:"none"` // "s3", "firebase" or "none"
	S3       S3Config
	Firebase FirebaseConfig
}

// S3Config holds AWS S3 configuration for image uploads.
type S3Config struct {
	Bucket        string `envconfig:"S3_BUCKET"`
	Region        string `envconfig:"S3_REGION" default:"us-east-1"`
	Prefix        string `envconfig:"S3_PREFIX" default:"images/"`
	PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
}

// FirebaseConfig holds Firebase Storage configuration for image uploads.
type FirebaseConfig struct {
	CredentialsFile string `envconfig:"FIREBASE_CREDENTIALS_FILE"`
	Bucket          string `envconfig:"FIREBASE_BUCKET"`
}

// CouponConfig controls the optional coupon registry.
// When disabled, coupon codes are accepted as opaque strings.
type CouponConfig struct {
	Enabled       bool     `envconfig:"COUPON_REGISTRY_ENABLED" default:"false"`
	Files         []string `envconfig:"COUPON_REGISTRY_FILES" default:"data/coupons/couponbase1.gz,data/coupons/couponbase2.gz,data/coupons/couponbase3.gz"`
	MinMatchCount int      `envconfig:"COUPON_REGISTRY_MIN_MATCH" default:"2"`
	MinLength     int      `envconfig:"COUPON_CODE_MIN_LENGTH" default:"8"`
	MaxLength     int      `envconfig:"COUPON_CODE_MAX_LENGTH" default:"10"`
	S3Enabled     bool     `envconfig:"COUPON_S3_ENABLED" default:"false"`
	S3Bucket      string   `envconfig:"COUPON_S3_BUCKET"`
	S3Region      string   `envconfig:"COUPON_S3_REGION" default:"us-east-1"`
	S3Prefix      string   `envconfig:"COUPON_S3_PREFIX" default:"coupons/"`
}

// PaymentConfig selects the payment gateway.
type PaymentConfig struct {
	Gateway       string `envconfig:"PAYMENT_GATEWAY" default:"sandbox"` // "sandbox", "approve_all" or "decline_all"
	DeclinePrefix string `envconfig:"PAYMENT_DECLINE_PREFIX" default:"decline_"`
}

// RateLimitConfig bounds requests per client address.
type RateLimitConfig struct {
	Enabled  bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT TTL must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	switch c.Storage.Backend {
	case "none":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when the s3 storage backend is selected")
		}
		if c.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region is required when the s3 storage backend is selected")
		}
	case "firebase":
		if c.Storage.Firebase.Bucket == "" {
			return fmt.Errorf("firebase bucket is required when the firebase storage backend is selected")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be s3, firebase, or none)", c.Storage.Backend)
	}

	if c.Coupon.Enabled {
		if len(c.Coupon.Files) == 0 {
			return fmt.Errorf("coupon registry files are required when the registry is enabled")
		}
		if c.Coupon.MinMatchCount < 1 || c.Coupon.MinMatchCount > len(c.Coupon.Files) {
			return fmt.Errorf("coupon min match count must be between 1 and %d", len(c.Coupon.Files))
		}
		if c.Coupon.S3Enabled && c.Coupon.S3Bucket == "" {
			return fmt.Errorf("coupon S3 bucket is required when coupon S3 loading is enabled")
		}
	}

	switch c.Payment.Gateway {
	case "sandbox", "approve_all", "decline_all":
	default:
		return fmt.Errorf("invalid payment gateway: %s (must be sandbox, approve_all, or decline_all)", c.Payment.Gateway)
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit requires a positive request count and window")
	}

	return nil
}

// IsDevelopment reports whether internal error detail may be exposed.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
