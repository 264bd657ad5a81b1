// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mail providers accepted in MAIL_PROVIDER.
const (
	MailProviderLog    = "log"
	MailProviderSMTP   = "smtp"
	MailProviderResend = "resend"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// RedisURL locates the Redis instance holding login codes and reset tokens.
	RedisURL string

	// FrontendURL is the base of links placed in emails.
	FrontendURL string

	// AdminEmail receives lead notifications. Empty disables them.
	AdminEmail string

	// MaxBodyBytes caps request bodies. Multipart uploads need room for
	// up to ten images, so the default is 50 MiB.
	MaxBodyBytes int64

	// JWTSecret signs access tokens. Required.
	JWTSecret string
	JWTTTL    time.Duration

	// RateLimitPerMinute is the per-IP budget on auth and lead endpoints.
	RateLimitPerMinute int

	S3   S3Config
	Mail MailConfig

	GeocoderURL       string
	GeocoderUserAgent string
}

// S3Config locates the image bucket. An empty Bucket disables uploads.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
	PathStyle bool
}

// MailConfig selects and configures the outgoing mail provider.
type MailConfig struct {
	Provider     string
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	ResendAPIKey string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set and any
// values that do not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		GeocoderURL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "propnest-api"),
		S3: S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
		},
		Mail: MailConfig{
			Provider:     strings.ToLower(getEnv("MAIL_PROVIDER", MailProviderLog)),
			From:         getEnv("MAIL_FROM", "PropNest <noreply@propnest.local>"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPUser:     os.Getenv("SMTP_USER"),
			SMTPPass:     os.Getenv("SMTP_PASS"),
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		},
	}

	var missing, invalid []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	var err error
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "52428800"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "168h")); err != nil || cfg.JWTTTL <= 0 {
		invalid = append(invalid, "JWT_TTL")
	}
	if cfg.RateLimitPerMinute, err = strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "20")); err != nil || cfg.RateLimitPerMinute <= 0 {
		invalid = append(invalid, "RATE_LIMIT_PER_MINUTE")
	}
	if cfg.Mail.SMTPPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587")); err != nil {
		invalid = append(invalid, "SMTP_PORT")
	}
	if cfg.S3.PathStyle, err = strconv.ParseBool(getEnv("S3_PATH_STYLE", "false")); err != nil {
		invalid = append(invalid, "S3_PATH_STYLE")
	}

	switch cfg.Mail.Provider {
	case MailProviderLog:
	case MailProviderSMTP:
		if cfg.Mail.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
	case MailProviderResend:
		if cfg.Mail.ResendAPIKey == "" {
			missing = append(missing, "RESEND_API_KEY")
		}
	default:
		invalid = append(invalid, "MAIL_PROVIDER")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
