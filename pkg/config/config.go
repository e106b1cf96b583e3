package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	AppEnv             string   `mapstructure:"APP_ENV"`
	BaseURL            string   `mapstructure:"BASE_URL"`
	GoogleClientID     string   `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string   `mapstructure:"GOOGLE_REDIRECT_URL"`
	JWTSecret          string   `mapstructure:"JWT_SECRET"`
	FrontendURL        string   `mapstructure:"FRONTEND_URL"`
	AllowedEmails      []string `mapstructure:"ALLOWED_EMAILS"` // Empty allows any Google account
	LogLevel           string   `mapstructure:"LOG_LEVEL"`

	// Click tracking
	IPHashKey   string `mapstructure:"IP_HASH_KEY"`
	GeoIPDBPath string `mapstructure:"GEOIP_DB_PATH"` // Empty disables country lookup

	// Metadata extractor
	MetadataUserAgent string        `mapstructure:"METADATA_USER_AGENT"`
	MetadataTimeout   time.Duration `mapstructure:"METADATA_TIMEOUT"`
	MetadataRateLimit float64       `mapstructure:"METADATA_RATE_LIMIT"` // Requests per second per client IP
	MetadataRateBurst int           `mapstructure:"METADATA_RATE_BURST"`
}

var defaults = map[string]any{
	"PORT":                 "8080",
	"DATABASE_URL":         "file:db.sqlite",
	"APP_ENV":              "local",
	"BASE_URL":             "http://localhost:8080",
	"GOOGLE_CLIENT_ID":     "",
	"GOOGLE_CLIENT_SECRET": "",
	"GOOGLE_REDIRECT_URL":  "http://localhost:8080/auth/google/callback",
	"JWT_SECRET":           "secret",
	"FRONTEND_URL":         "http://localhost:8080/",
	"ALLOWED_EMAILS":       "",
	"LOG_LEVEL":            "info",
	"IP_HASH_KEY":          "",
	"GEOIP_DB_PATH":        "",
	"METADATA_USER_AGENT":  "Mozilla/5.0 (compatible; HKunLinks/1.0; +https://hkun.links)",
	"METADATA_TIMEOUT":     "10s",
	"METADATA_RATE_LIMIT":  2.0,
	"METADATA_RATE_BURST":  5,
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.AllowedEmails = normalizeEmails(cfg.AllowedEmails)
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// EmailAllowed reports whether email may sign in to the admin area.
func (c *Config) EmailAllowed(email string) bool {
	if len(c.AllowedEmails) == 0 {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range c.AllowedEmails {
		if allowed == email {
			return true
		}
	}
	return false
}

func normalizeEmails(in []string) []string {
	var out []string
	for _, raw := range in {
		for _, e := range strings.Split(raw, ",") {
			if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
				out = append(out, e)
			}
		}
	}
	return out
}
