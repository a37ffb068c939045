package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Session   SessionConfig
	OAuth     OAuthConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret           string
	TokenTTLHours       int
	DenylistMarginHours int
	BcryptCost          int
}

// SessionConfig drives the server-side session store used for OAuth logins.
type SessionConfig struct {
	CookieName     string
	TTLHours       int
	CookieSecure   bool
	CookieHTTPOnly bool
}

// OAuthConfig holds Google delegated-login credentials.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// RateLimitConfig bounds request rates per client IP.
type RateLimitConfig struct {
	MaxRequests   int
	WindowSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "civic-legal-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:           getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLHours:       getEnvAsInt("AUTH_TOKEN_TTL_HOURS", 12),
			DenylistMarginHours: getEnvAsInt("AUTH_DENYLIST_MARGIN_HOURS", 24),
			BcryptCost:          getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Session: SessionConfig{
			CookieName:     getEnv("SESSION_COOKIE_NAME", "legal_session"),
			TTLHours:       getEnvAsInt("SESSION_TTL_HOURS", 24),
			CookieSecure:   getEnvAsBool("SESSION_COOKIE_SECURE", false),
			CookieHTTPOnly: getEnvAsBool("SESSION_COOKIE_HTTP_ONLY", true),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 120),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// IsDevelopment reports whether error responses may carry stack detail.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// TokenTTL returns the signed-token validity window.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// DenylistMargin returns the minimum lifetime of a deny-list record.
func (a AuthConfig) DenylistMargin() time.Duration {
	if a.DenylistMarginHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.DenylistMarginHours) * time.Hour
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.TTLHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
