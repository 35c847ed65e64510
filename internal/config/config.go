package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Backend names shared by the pluggable stores.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Data      DataConfig
	Server    ServerConfig
	Session   SessionConfig
	Events    EventsConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Numbering NumberingConfig
	Google    GoogleConfig
	Calendar  CalendarConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// DataConfig locates the tenant directories.
type DataConfig struct {
	Dir string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	WebDir       string // optional front-end build served on unmatched routes
}

// SessionConfig holds browser session settings. Secret signs the OAuth
// state parameter.
type SessionConfig struct {
	Secret       string //nolint:gosec // G117: signing secret config
	TTL          time.Duration
	Backend      string
	CookieName   string
	CookieSecure bool
}

// EventsConfig selects the live update broker.
type EventsConfig struct {
	Backend string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// DatabaseConfig holds PostgreSQL connection settings for the counter
// backend.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// NumberingConfig selects where document sequence counters persist.
type NumberingConfig struct {
	Counter string
}

// GoogleConfig holds the OAuth client. An empty ClientID disables login;
// every request is then served as the demo tenant.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string //nolint:gosec // G117: OAuth client config
	RedirectURL  string
}

// Enabled reports whether Google login is configured.
func (g *GoogleConfig) Enabled() bool { return g.ClientID != "" }

// CalendarConfig tunes the calendar outbox.
type CalendarConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
}

// MailConfig holds the Resend credentials. Without an API key documents are
// written to the log instead of sent.
type MailConfig struct {
	ResendAPIKey string //nolint:gosec // G117: API key config
	FromEmail    string
	FromName     string
	BaseURL      string
}

// RateLimitConfig bounds requests per tenant.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LogConfig drives the global zerolog logger.
type LogConfig struct {
	Level  string
	Format string // "text" for console output, anything else for JSON
}

// Load reads configuration from environment variables, after loading the
// optional file named by CABINET_ENV_FILE (default ".env"). Variables
// already set in the environment win over the file.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnv("CABINET_ENV_FILE", ".env")); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	var errs []error
	intVar := func(key string, fallback int) int {
		n, err := getEnvInt(key, fallback)
		errs = append(errs, err)
		return n
	}
	boolVar := func(key string, fallback bool) bool {
		b, err := getEnvBool(key, fallback)
		errs = append(errs, err)
		return b
	}
	durationVar := func(key string, fallback time.Duration) time.Duration {
		d, err := getEnvDuration(key, fallback)
		errs = append(errs, err)
		return d
	}
	floatVar := func(key string, fallback float64) float64 {
		f, err := getEnvFloat(key, fallback)
		errs = append(errs, err)
		return f
	}

	cfg := &Config{
		Data: DataConfig{
			Dir: getEnv("CABINET_DATA_DIR", "./data"),
		},
		Server: ServerConfig{
			Addr:         getEnv("CABINET_SERVER_ADDR", ":8080"),
			ReadTimeout:  durationVar("CABINET_SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: durationVar("CABINET_SERVER_WRITE_TIMEOUT", 30*time.Second),
			CORSOrigins:  getEnvList("CABINET_CORS_ORIGINS", []string{"http://localhost:5173"}),
			WebDir:       getEnv("CABINET_WEB_DIR", ""),
		},
		Session: SessionConfig{
			Secret:       getEnv("CABINET_SESSION_SECRET", ""),
			TTL:          durationVar("CABINET_SESSION_TTL", 7*24*time.Hour),
			Backend:      getEnv("CABINET_SESSION_BACKEND", BackendMemory),
			CookieName:   getEnv("CABINET_SESSION_COOKIE", "cabinet_session"),
			CookieSecure: boolVar("CABINET_SESSION_COOKIE_SECURE", true),
		},
		Events: EventsConfig{
			Backend: getEnv("CABINET_EVENTS_BACKEND", BackendMemory),
		},
		Redis: RedisConfig{
			Addr:     getEnv("CABINET_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("CABINET_REDIS_PASSWORD", ""),
			DB:       intVar("CABINET_REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Host:     getEnv("CABINET_DB_HOST", "localhost"),
			Port:     intVar("CABINET_DB_PORT", 5432),
			User:     getEnv("CABINET_DB_USER", "cabinet"),
			Password: getEnv("CABINET_DB_PASSWORD", ""),
			DBName:   getEnv("CABINET_DB_NAME", "cabinet"),
			SSLMode:  getEnv("CABINET_DB_SSLMODE", "disable"),
			MaxConns: intVar("CABINET_DB_MAX_CONNS", 4),
		},
		Numbering: NumberingConfig{
			Counter: getEnv("CABINET_NUMBERING_COUNTER", BackendFile),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("CABINET_GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("CABINET_GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("CABINET_GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
		},
		Calendar: CalendarConfig{
			Workers:     intVar("CABINET_CALENDAR_WORKERS", 2),
			QueueSize:   intVar("CABINET_CALENDAR_QUEUE_SIZE", 256),
			MaxAttempts: intVar("CABINET_CALENDAR_MAX_ATTEMPTS", 5),
			RetryDelay:  durationVar("CABINET_CALENDAR_RETRY_DELAY", 2*time.Second),
		},
		Mail: MailConfig{
			ResendAPIKey: getEnv("CABINET_RESEND_API_KEY", ""),
			FromEmail:    getEnv("CABINET_MAIL_FROM", ""),
			FromName:     getEnv("CABINET_MAIL_FROM_NAME", "Cabinet"),
			BaseURL:      getEnv("CABINET_RESEND_BASE_URL", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: floatVar("CABINET_RATE_LIMIT_RPS", 20),
			Burst:             intVar("CABINET_RATE_LIMIT_BURST", 40),
		},
		Log: LogConfig{
			Level:  getEnv("CABINET_LOG_LEVEL", "info"),
			Format: getEnv("CABINET_LOG_FORMAT", "json"),
		},
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Data.Dir) == "" {
		return errors.New("CABINET_DATA_DIR is required")
	}

	// The secret signs the OAuth state, so it is required once login is on.
	if c.Google.Enabled() {
		if c.Google.ClientSecret == "" {
			return errors.New("CABINET_GOOGLE_CLIENT_SECRET is required when CABINET_GOOGLE_CLIENT_ID is set")
		}
		if c.Google.RedirectURL == "" {
			return errors.New("CABINET_GOOGLE_REDIRECT_URL is required when CABINET_GOOGLE_CLIENT_ID is set")
		}
		if c.Session.Secret == "" {
			return errors.New("CABINET_SESSION_SECRET is required when Google login is enabled")
		}
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 32 {
		return errors.New("CABINET_SESSION_SECRET must be at least 32 characters")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("CABINET_SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Session.CookieName == "" {
		return errors.New("CABINET_SESSION_COOKIE must not be empty")
	}
	if !c.Session.CookieSecure {
		log.Warn().Msg("CABINET_SESSION_COOKIE_SECURE=false sends the session cookie over plain HTTP; use only for local development")
	}

	if err := oneOf("CABINET_SESSION_BACKEND", c.Session.Backend, BackendMemory, BackendRedis); err != nil {
		return err
	}
	if err := oneOf("CABINET_EVENTS_BACKEND", c.Events.Backend, BackendMemory, BackendRedis); err != nil {
		return err
	}
	if err := oneOf("CABINET_NUMBERING_COUNTER", c.Numbering.Counter, BackendFile, BackendPostgres); err != nil {
		return err
	}

	if c.Numbering.Counter == BackendPostgres {
		if c.Database.SSLMode == "disable" {
			log.Warn().Msg("CABINET_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("CABINET_DB_PORT must be 1-65535, got %d", c.Database.Port)
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("CABINET_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("CABINET_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("CABINET_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}

	if c.Calendar.Workers < 1 {
		return fmt.Errorf("CABINET_CALENDAR_WORKERS must be >= 1, got %d", c.Calendar.Workers)
	}
	if c.Calendar.QueueSize < 1 {
		return fmt.Errorf("CABINET_CALENDAR_QUEUE_SIZE must be >= 1, got %d", c.Calendar.QueueSize)
	}
	if c.Calendar.MaxAttempts < 1 {
		return fmt.Errorf("CABINET_CALENDAR_MAX_ATTEMPTS must be >= 1, got %d", c.Calendar.MaxAttempts)
	}
	if c.Calendar.RetryDelay <= 0 {
		return fmt.Errorf("CABINET_CALENDAR_RETRY_DELAY must be positive, got %s", c.Calendar.RetryDelay)
	}

	if c.Mail.ResendAPIKey != "" && c.Mail.FromEmail == "" {
		return errors.New("CABINET_MAIL_FROM is required when CABINET_RESEND_API_KEY is set")
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("CABINET_RATE_LIMIT_RPS must be positive, got %g", c.RateLimit.RequestsPerSecond)
	}
	if c.RateLimit.Burst < 1 {
		return fmt.Errorf("CABINET_RATE_LIMIT_BURST must be >= 1, got %d", c.RateLimit.Burst)
	}

	return nil
}

// NeedsRedis reports whether any backend is Redis.
func (c *Config) NeedsRedis() bool {
	return c.Session.Backend == BackendRedis || c.Events.Backend == BackendRedis
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

func oneOf(key, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, "|"), v)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
