package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	App          AppConfig
	Auth         AuthConfig
	Onboarding   OnboardingConfig
	Notification NotificationConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string
	Format string // json or text
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment string
	Version     string
	Name        string
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	BcryptCost         int
	APIKeyPrefixLength int
}

// OnboardingConfig pins the status codes the lifecycle controller depends
// on. These must match seeded catalog rows; boot fails loudly when they
// don't.
type OnboardingConfig struct {
	InitialStatusCode    string
	SubmittedStatusCode  string
	CorrectionStatusCode string
	CorrectionReminder   time.Duration
}

// NotificationConfig holds notification service configuration
type NotificationConfig struct {
	BaseURL string
	Email   EmailConfig
	Slack   SlackConfig
}

// EmailConfig holds email notification configuration
type EmailConfig struct {
	Enabled      bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromAddress  string
}

// SlackConfig holds Slack notification configuration
type SlackConfig struct {
	Enabled    bool
	WebhookURL string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "backoffice"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
			Name:        getEnv("APP_NAME", "backoffice"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("AUTH_JWT_SECRET", ""),
			AccessTokenTTL:     getEnvAsDuration("AUTH_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL:    getEnvAsDuration("AUTH_REFRESH_TOKEN_TTL", 7*24*time.Hour),
			BcryptCost:         getEnvAsInt("AUTH_BCRYPT_COST", 10),
			APIKeyPrefixLength: getEnvAsInt("AUTH_API_KEY_PREFIX_LENGTH", 8),
		},
		Onboarding: OnboardingConfig{
			InitialStatusCode:    getEnv("ONBOARDING_INITIAL_STATUS", "REQSTATUS00030"),
			SubmittedStatusCode:  getEnv("ONBOARDING_SUBMITTED_STATUS", "REQSTATUS00033"),
			CorrectionStatusCode: getEnv("ONBOARDING_CORRECTION_STATUS", "REQSTATUS00034"),
			CorrectionReminder:   getEnvAsDuration("ONBOARDING_CORRECTION_REMINDER", 72*time.Hour),
		},
		Notification: NotificationConfig{
			BaseURL: getEnv("NOTIFICATION_BASE_URL", "http://localhost:8080"),
			Email: EmailConfig{
				Enabled:      getEnvAsBool("NOTIFICATION_EMAIL_ENABLED", false),
				SMTPHost:     getEnv("NOTIFICATION_SMTP_HOST", "smtp.gmail.com"),
				SMTPPort:     getEnvAsInt("NOTIFICATION_SMTP_PORT", 587),
				SMTPUser:     getEnv("NOTIFICATION_SMTP_USER", ""),
				SMTPPassword: getEnv("NOTIFICATION_SMTP_PASSWORD", ""),
				FromAddress:  getEnv("NOTIFICATION_FROM_ADDRESS", "noreply@example.com"),
			},
			Slack: SlackConfig{
				Enabled:    getEnvAsBool("NOTIFICATION_SLACK_ENABLED", false),
				WebhookURL: getEnv("NOTIFICATION_SLACK_WEBHOOK_URL", ""),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}

	if c.App.Environment == "production" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required in production")
	}

	if c.Onboarding.InitialStatusCode == "" {
		return fmt.Errorf("onboarding initial status code is required")
	}

	if c.Onboarding.SubmittedStatusCode == "" {
		return fmt.Errorf("onboarding submitted status code is required")
	}

	if c.Onboarding.CorrectionStatusCode == "" {
		return fmt.Errorf("onboarding correction status code is required")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
