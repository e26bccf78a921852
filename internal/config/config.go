package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig
	Backend       BackendConfig
	Firebase      FirebaseConfig
	Polling       PollingConfig
	Notifications NotificationsConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Email         EmailConfig
	API           APIConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Environment string // "development", "production", "test"
	Debug       bool
}

type BackendConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// SendIDToken attaches the signed-in user's Firebase ID token as a Bearer token.
	SendIDToken bool
}

type FirebaseConfig struct {
	ProjectID string
	IssuerURL string // defaults to https://securetoken.google.com/<project>
}

type PollingConfig struct {
	FriendsInterval            time.Duration
	RequestsInterval           time.Duration
	RequestsForegroundInterval time.Duration
	HeartbeatInterval          time.Duration
	InteractionThrottle        time.Duration
}

type NotificationsConfig struct {
	DedupCapacity int
	DedupTTL      time.Duration
	Retention     time.Duration
	Email         bool
	EmailTo       string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type EmailConfig struct {
	Provider     string // "resend", "console"
	FromAddress  string
	FromName     string
	ResendAPIKey string
}

type APIConfig struct {
	// KeyHash is the bcrypt hash of the key UI surfaces present to the local API.
	KeyHash         string
	RateLimit       int64
	RateLimitWindow time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (f FirebaseConfig) Issuer() string {
	if strings.TrimSpace(f.IssuerURL) != "" {
		return f.IssuerURL
	}
	return "https://securetoken.google.com/" + f.ProjectID
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("AGENT_HOST", "127.0.0.1"),
			Port:        getEnvInt("AGENT_PORT", 7070),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvBool("DEBUG", false),
		},
		Backend: BackendConfig{
			BaseURL:     strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
			Timeout:     getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
			UserAgent:   getEnvNonEmpty("BACKEND_USER_AGENT", "lifestyle-agent/1.0"),
			SendIDToken: getEnvBool("BACKEND_SEND_ID_TOKEN", true),
		},
		Firebase: FirebaseConfig{
			ProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
			IssuerURL: getEnv("FIREBASE_ISSUER_URL", ""),
		},
		Polling: PollingConfig{
			FriendsInterval:            getEnvDuration("POLL_FRIENDS_INTERVAL", 120*time.Second),
			RequestsInterval:           getEnvDuration("POLL_REQUESTS_INTERVAL", 10*time.Second),
			RequestsForegroundInterval: getEnvDuration("POLL_REQUESTS_FOREGROUND_INTERVAL", 5*time.Second),
			HeartbeatInterval:          getEnvDuration("HEARTBEAT_INTERVAL", 3*time.Minute),
			InteractionThrottle:        getEnvDuration("HEARTBEAT_INTERACTION_THROTTLE", 30*time.Second),
		},
		Notifications: NotificationsConfig{
			DedupCapacity: getEnvInt("NOTIFY_DEDUP_CAPACITY", 512),
			DedupTTL:      getEnvDuration("NOTIFY_DEDUP_TTL", 24*time.Hour),
			Retention:     getEnvDuration("NOTIFY_RETENTION", 30*24*time.Hour),
			Email:         getEnvBool("NOTIFY_EMAIL", false),
			EmailTo:       getEnv("NOTIFY_EMAIL_TO", ""),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "lifestyle"),
			Password: getEnv("DB_PASSWORD", "lifestyle"),
			DBName:   getEnv("DB_NAME", "lifestyle_agent"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Email: EmailConfig{
			Provider:     getEnv("EMAIL_PROVIDER", "console"),
			FromAddress:  getEnv("EMAIL_FROM_ADDRESS", "noreply@kyool.app"),
			FromName:     getEnv("EMAIL_FROM_NAME", "Kyool"),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		},
		API: APIConfig{
			KeyHash:         getEnv("AGENT_API_KEY_HASH", ""),
			RateLimit:       int64(getEnvInt("AGENT_RATE_LIMIT", 600)),
			RateLimitWindow: getEnvDuration("AGENT_RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the agent cannot run without.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("BACKEND_URL: required")
	}
	parsed, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("BACKEND_URL: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return errors.New("BACKEND_URL: must be an absolute URL")
	}

	p := c.Polling
	for name, d := range map[string]time.Duration{
		"POLL_FRIENDS_INTERVAL":             p.FriendsInterval,
		"POLL_REQUESTS_INTERVAL":            p.RequestsInterval,
		"POLL_REQUESTS_FOREGROUND_INTERVAL": p.RequestsForegroundInterval,
		"HEARTBEAT_INTERVAL":                p.HeartbeatInterval,
		"HEARTBEAT_INTERACTION_THROTTLE":    p.InteractionThrottle,
	} {
		if d <= 0 {
			return fmt.Errorf("%s: must be > 0", name)
		}
	}
	if p.RequestsForegroundInterval > p.RequestsInterval {
		return errors.New("POLL_REQUESTS_FOREGROUND_INTERVAL: must not exceed POLL_REQUESTS_INTERVAL")
	}

	if c.Notifications.Email && c.Notifications.EmailTo == "" {
		return errors.New("NOTIFY_EMAIL_TO: required when NOTIFY_EMAIL is set")
	}
	if c.Email.Provider == "resend" && c.Email.ResendAPIKey == "" {
		return errors.New("RESEND_API_KEY: required for the resend provider")
	}
	if c.Server.Environment == "production" && c.API.KeyHash == "" {
		return errors.New("AGENT_API_KEY_HASH: required in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvNonEmpty(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		if strings.TrimSpace(value) != "" {
			return value
		}
		return defaultValue
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
