package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the full application configuration, loaded from environment
// variables with sensible local-development defaults.
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	Database      DatabaseConfig
	NATS          NATSConfig
	Valkey        ValkeyConfig
	Elasticsearch ElasticsearchConfig
	SMTP          SMTPConfig
	Storage       StorageConfig
	Invoice       InvoiceConfig
}

type DatabaseConfig struct {
	Host               string
	Port               int
	User               string
	Password           string
	DBName             string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	ConnMaxIdleTimeMin int
}

type NATSConfig struct {
	URL       string
	ClusterID string
	ClientID  string
}

type ValkeyConfig struct {
	Addr     string
	Password string
	Enabled  bool
}

type ElasticsearchConfig struct {
	URL        string
	Index      string
	Username   string
	Password   string
	MaxRetries int
	Enabled    bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseTLS   bool
	Timeout  time.Duration
}

type StorageConfig struct {
	Root    string
	BaseURL string
}

// InvoiceConfig tunes the invoice repair job in the worker.
type InvoiceConfig struct {
	RepairInterval time.Duration
	RepairAfter    time.Duration
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "eventgate"),
			Password:           getEnv("DB_PASSWORD", "eventgate"),
			DBName:             getEnv("DB_NAME", "eventgate"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: NATSConfig{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "eventgate"),
			ClientID:  getEnv("NATS_CLIENT_ID", "eventgate-api"),
		},

		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			Enabled:  getEnv("VALKEY_ENABLED", "false") == "true",
		},

		Elasticsearch: ElasticsearchConfig{
			URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Index:      getEnv("ELASTICSEARCH_INDEX", "events"),
			Username:   os.Getenv("ELASTICSEARCH_USERNAME"),
			Password:   os.Getenv("ELASTICSEARCH_PASSWORD"),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
			Enabled:    getEnv("ELASTICSEARCH_ENABLED", "false") == "true",
		},

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "tickets@eventgate.local"),
			FromName: getEnv("SMTP_FROM_NAME", "EventGate"),
			UseTLS:   getEnv("SMTP_USE_TLS", "true") == "true",
			Timeout:  time.Duration(getEnvInt("SMTP_TIMEOUT_SEC", 30)) * time.Second,
		},

		Storage: StorageConfig{
			Root:    getEnv("STORAGE_ROOT", "./storage/public"),
			BaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/storage"),
		},

		Invoice: InvoiceConfig{
			RepairInterval: time.Duration(getEnvInt("INVOICE_REPAIR_INTERVAL_SEC", 60)) * time.Second,
			RepairAfter:    time.Duration(getEnvInt("INVOICE_REPAIR_AFTER_SEC", 300)) * time.Second,
		},
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable value or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
