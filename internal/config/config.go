package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/database"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port        int      `json:"port"`
	Host        string   `json:"host"`
	Environment string   `json:"environment"`
	CORSOrigins []string `json:"cors_origins"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBPath     string `json:"db_path"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBSSLMode  string `json:"db_sslmode"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret        string        `json:"jwt_secret"`
	JWTTTL           time.Duration `json:"jwt_ttl"`
	TelegramBotToken string        `json:"telegram_bot_token"`
	InitDataMaxAge   time.Duration `json:"init_data_max_age"`

	// Operations
	BackupDir         string `json:"backup_dir"`
	PGDumpPath        string `json:"pg_dump_path"`
	NewsletterWorkers int    `json:"newsletter_workers"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, Environment: %s, DBDriver: %s, DBPath: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], LogLevel: %s, JWTSecret: [REDACTED], TelegramBotToken: [REDACTED], BackupDir: %s, NewsletterWorkers: %d}",
		c.Port, c.Host, c.Environment, c.DBDriver, c.DBPath, c.DBHost, c.DBName, c.DBUser, c.LogLevel, c.BackupDir, c.NewsletterWorkers)
}

// Database builds the connection settings consumed by the database package
func (c *Config) Database() database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
	}
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// Returns an error if any required environment variable is missing or invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, err
	}

	botToken := GetEnvWithDefault("TELEGRAM_BOT_TOKEN", "")
	if botToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	driver := strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite"))
	switch driver {
	case "sqlite", "postgres", "postgresql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres)", driver)
	}

	config := &Config{
		Port:              port,
		Host:              GetEnvWithDefault("APP_HOST", "localhost"),
		Environment:       GetEnvWithDefault("APP_ENV", "development"),
		CORSOrigins:       splitList(GetEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
		DBDriver:          driver,
		DBPath:            GetEnvWithDefault("DB_PATH", "teezy.sqlite"),
		DBHost:            GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:            GetEnvWithDefault("DB_PORT", "5432"),
		DBName:            GetEnvWithDefault("DB_NAME", "teezy_loyalty"),
		DBUser:            GetEnvWithDefault("DB_USER", "postgres"),
		DBPassword:        GetEnvWithDefault("DB_PASSWORD", ""),
		DBSSLMode:         GetEnvWithDefault("DB_SSLMODE", "disable"),
		LogLevel:          GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:         GetEnvWithDefault("JWT_SECRET", "secret"),
		JWTTTL:            time.Duration(GetEnvAsType("JWT_TTL_HOURS", 24)) * time.Hour,
		TelegramBotToken:  botToken,
		InitDataMaxAge:    time.Duration(GetEnvAsType("INIT_DATA_MAX_AGE_HOURS", 24)) * time.Hour,
		BackupDir:         GetEnvWithDefault("BACKUP_DIR", "backups"),
		PGDumpPath:        GetEnvWithDefault("PG_DUMP_PATH", "pg_dump"),
		NewsletterWorkers: GetEnvAsType("NEWSLETTER_WORKERS", 4),
	}
	if config.NewsletterWorkers < 1 {
		return nil, errors.New("NEWSLETTER_WORKERS must be at least 1")
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
