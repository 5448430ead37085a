package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr string
	BaseURL    string

	// Twitter application credentials (required)
	ConsumerKey    string
	ConsumerSecret string

	// Callback URL override. When empty the callback URL is derived from
	// the inbound request host.
	CallbackURL string

	// Twitter IDs granted admin privileges on first login
	AdminTwitterIDs []int64

	// Post-login / post-logout redirect defaults
	AfterLoginURL  string
	AfterLogoutURL string

	// Timeout applied to every Twitter API round trip
	ProviderTimeout time.Duration

	// Session settings
	SessionSecret string
	SessionMaxAge int // seconds

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string
	DBInitTimeout  time.Duration

	// Metrics
	MetricsEnabled bool
	MetricsToken   string

	// Rate limiting (login route)
	EnableRateLimit          bool
	LoginRateLimit           int // requests per minute
	RateLimitStore           string
	RateLimitCleanupInterval time.Duration
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	RedisConnTimeout         time.Duration

	// Audit logging
	EnableAuditLogging bool
	AuditLogBufferSize int
	AuditLogRetention  int // days, 0 disables cleanup

	IsProduction bool
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", "twingo.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:8080"),

		ConsumerKey:    getEnv("CONSUMER_KEY", ""),
		ConsumerSecret: getEnv("CONSUMER_SECRET", ""),
		CallbackURL:    getEnv("CALLBACK_URL", ""),

		AdminTwitterIDs: getEnvInt64Slice("ADMIN_TWITTER_ID", nil),

		AfterLoginURL:  getEnv("AFTER_LOGIN_URL", "/"),
		AfterLogoutURL: getEnv("AFTER_LOGOUT_URL", "/"),

		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 15*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 3600),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", false),
		LoginRateLimit:           getEnvInt("LOGIN_RATE_LIMIT", 30),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		RedisAddr:                getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:            getEnv("REDIS_PASSWORD", ""),
		RedisDB:                  getEnvInt("REDIS_DB", 0),
		RedisConnTimeout:         getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),

		EnableAuditLogging: getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogBufferSize: getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),
		AuditLogRetention:  getEnvInt("AUDIT_LOG_RETENTION", 90),

		IsProduction: getEnvBool("IS_PRODUCTION", false),
	}
}

// Validate checks the configuration for missing or inconsistent settings
func (c *Config) Validate() error {
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return errors.New("CONSUMER_KEY and CONSUMER_SECRET are required")
	}

	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf(
			"invalid DATABASE_DRIVER: %s (must be: sqlite, postgres)",
			c.DatabaseDriver,
		)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}

	if c.ProviderTimeout <= 0 {
		return errors.New("PROVIDER_TIMEOUT must be positive")
	}

	if c.EnableRateLimit {
		switch c.RateLimitStore {
		case RateLimitStoreMemory:
		case RateLimitStoreRedis:
			if c.RedisAddr == "" {
				return errors.New("REDIS_ADDR is required when RATE_LIMIT_STORE=redis")
			}
		default:
			return fmt.Errorf(
				"invalid RATE_LIMIT_STORE: %s (must be: memory, redis)",
				c.RateLimitStore,
			)
		}
		if c.LoginRateLimit <= 0 {
			return errors.New("LOGIN_RATE_LIMIT must be positive")
		}
	}

	return nil
}

// IsAdminTwitterID reports whether the given Twitter ID is on the admin
// allow-list. The list is consulted only at account creation time.
func (c *Config) IsAdminTwitterID(twitterID int64) bool {
	for _, id := range c.AdminTwitterIDs {
		if id == twitterID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvInt64Slice(key string, defaultValue []int64) []int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
