package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token provider selection for the session token issuer
const (
	TokenProviderJWT    = "jwt"
	TokenProviderPaseto = "paseto"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Email    EmailConfig
	Event    EventConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// TokenProvider selects the session token issuer: "jwt" (HS256) or
	// "paseto" (v4.local). The signing key is loaded once at startup and
	// never rotated at runtime.
	TokenProvider string
	// SigningKey is the HS256 secret for JWT tokens.
	SigningKey []byte
	// PasetoKey must be exactly 32 bytes for v4.local.
	PasetoKey []byte
	// SessionTokenDuration bounds every issued session token.
	SessionTokenDuration time.Duration
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	// Mailgun mailing-list settings for the post-verification subscription
	MailgunAPIBase string
	MailgunAPIKey  string
	ListAddress    string
}

// EventConfig carries the branding and link-building settings for outgoing
// mail: registration runs per event edition.
type EventConfig struct {
	Name    string
	Edition string
	// Domain is the public frontend host used in verification/reset links.
	Domain string
}

// Load reads configuration from environment variables.
// A .env file is applied first if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "registration"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenProvider:        getEnv("TOKEN_PROVIDER", TokenProviderJWT),
			SigningKey:           []byte(getEnv("SIGNING_KEY", "")),
			PasetoKey:            []byte(getEnv("PASETO_KEY", "")),
			SessionTokenDuration: getDurationEnv("SESSION_TOKEN_DURATION", 1*time.Hour),
		},
		Email: EmailConfig{
			SMTPHost:       getEnv("SMTP_HOST", ""),
			SMTPPort:       getEnv("SMTP_PORT", "587"),
			SMTPUser:       getEnv("SMTP_USER", ""),
			SMTPPassword:   getEnv("SMTP_PASS", ""),
			MailgunAPIBase: getEnv("MAILGUN_API_BASE", "https://api.mailgun.net/v3"),
			MailgunAPIKey:  getEnv("MAILGUN_API_KEY", ""),
			ListAddress:    getEnv("MAILING_LIST_ADDRESS", ""),
		},
		Event: EventConfig{
			Name:    getEnv("EVENT_NAME", "HackReg"),
			Edition: getEnv("EVENT_EDITION", ""),
			Domain:  getEnv("EVENT_DOMAIN", "localhost:3000"),
		},
	}

	switch cfg.Auth.TokenProvider {
	case TokenProviderJWT:
		if len(cfg.Auth.SigningKey) == 0 {
			return nil, fmt.Errorf("SIGNING_KEY is required for the jwt token provider")
		}
	case TokenProviderPaseto:
		if len(cfg.Auth.PasetoKey) != 32 {
			return nil, fmt.Errorf("PASETO_KEY must be exactly 32 bytes, got %d", len(cfg.Auth.PasetoKey))
		}
	default:
		return nil, fmt.Errorf("unknown token provider %q", cfg.Auth.TokenProvider)
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// channel_binding is required for Neon DB
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns the Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
