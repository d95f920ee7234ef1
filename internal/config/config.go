package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends understood by StoreConfig.Backend.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendDynamo   = "dynamo"
)

// Config represents the full application configuration surface.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Kafka  KafkaConfig
	Auth   AuthConfig
	Report ReportConfig
	SMTP   SMTPConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig selects and configures the ledger document store.
type StoreConfig struct {
	Backend     string
	FilePath    string
	PostgresDSN string
	MongoURI    string
	MongoDBName string
	DynamoTable string
	AWSRegion   string
}

// KafkaConfig configures ledger event streaming. Empty Brokers disables publishing.
type KafkaConfig struct {
	Brokers          []string
	Topic            string
	GroupID          string
	ProjectorGroupID string
}

// AuthConfig holds API token settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
}

// ReportConfig holds inventory report export settings.
type ReportConfig struct {
	FilePath     string
	CronSchedule string
}

// SMTPConfig holds notifier mail settings.
type SMTPConfig struct {
	Host       string
	Port       string
	From       string
	AdminEmail string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	ttl, err := time.ParseDuration(getenvWithDefault("ACCESS_TOKEN_TTL", "8h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(getenvWithDefault("STORE_BACKEND", BackendFile)),
			FilePath:    getenvWithDefault("DATA_FILE", "inventory_data.json"),
			PostgresDSN: os.Getenv("DATABASE_URL"),
			MongoURI:    os.Getenv("MONGODB_URI"),
			MongoDBName: getenvWithDefault("MONGODB_DB_NAME", "stock_ledger"),
			DynamoTable: getenvWithDefault("DYNAMODB_TABLE", "stock-ledger"),
			AWSRegion:   os.Getenv("AWS_REGION"),
		},
		Kafka: KafkaConfig{
			Brokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
			Topic:   getenvWithDefault("KAFKA_TOPIC", "stock-ledger-events"),
			GroupID: getenvWithDefault("KAFKA_GROUP_ID", "stock-ledger-notifier"),

			ProjectorGroupID: getenvWithDefault("KAFKA_PROJECTOR_GROUP_ID", "stock-ledger-projector"),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			AccessTokenTTL: ttl,
		},
		Report: ReportConfig{
			FilePath:     getenvWithDefault("REPORT_FILE", "inventory_report.xlsx"),
			CronSchedule: os.Getenv("REPORT_CRON_SCHEDULE"),
		},
		SMTP: SMTPConfig{
			Host:       getenvWithDefault("SMTP_HOST", "localhost"),
			Port:       getenvWithDefault("SMTP_PORT", "1025"),
			From:       getenvWithDefault("SMTP_FROM", "noreply@example.com"),
			AdminEmail: os.Getenv("ADMIN_EMAIL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the selected store backend has what it needs.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Backend {
	case BackendFile:
		if c.Store.FilePath == "" {
			return errors.New("DATA_FILE must not be empty")
		}
	case BackendMemory:
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("DATABASE_URL must be provided for the postgres backend")
		}
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo backend")
		}
	case BackendDynamo:
		if c.Store.DynamoTable == "" {
			return errors.New("DYNAMODB_TABLE must not be empty")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}

	return nil
}

// ValidateAPI checks the settings only the HTTP service needs.
func (c *Config) ValidateAPI() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters long")
	}
	return nil
}

// KafkaEnabled reports whether ledger events should be streamed.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
