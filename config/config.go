package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendDynamoDB = "dynamodb"
	StoreBackendMemory   = "memory"
)

type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string

	StoreBackend string
	Postgres     PostgresConfig
	AWS          AWSConfig

	OpenSearch OpenSearchConfig
	Valkey     ValkeyConfig
	Kafka      KafkaConfig

	Audit AuditConfig
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Name)
}

type AWSConfig struct {
	Region        string
	Endpoint      string
	StoriesTable  string
	CommentsTable string
}

type OpenSearchConfig struct {
	Endpoint string
	Password string
	// Enabled turns on shipping validation outcomes to the validation log.
	Enabled bool
	Index   string
}

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

type KafkaConfig struct {
	Broker       string
	GroupID      string
	RequestTopic string
	ResultsTopic string
}

type AuditConfig struct {
	FlagThreshold float64
	Workers       int
	PageLimit     int
}

// Load reads the configuration from the environment. Call LoadEnv first
// when a .env file should be honoured.
func Load() Config {
	return Config{
		Env:          AppEnv(),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreBackendPostgres)),
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "storyguard"),
		},
		AWS: AWSConfig{
			Region:        getEnv("AWS_REGION", "us-west-2"),
			Endpoint:      getEnv("AWS_ENDPOINT", ""),
			StoriesTable:  getEnv("STORIES_TABLE", "Stories"),
			CommentsTable: getEnv("COMMENTS_TABLE", "Comments"),
		},
		OpenSearch: OpenSearchConfig{
			Endpoint: getEnv("OPENSEARCH_ENDPOINT", ""),
			Password: getEnv("OPENSEARCH_PASSWORD", ""),
			Enabled:  getEnvBool("VALIDATION_LOG_ENABLED", false),
			Index:    getEnv("VALIDATION_LOG_INDEX", "comment-validations"),
		},
		Valkey: ValkeyConfig{
			Address:  getEnv("VALKEY_INIT_ADDRESS", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			TLS:      getEnvBool("VALKEY_TLS", false),
		},
		Kafka: KafkaConfig{
			Broker:       getEnv("KAFKA_BROKER", "localhost:29092"),
			GroupID:      getEnv("KAFKA_CONSUMER_GROUP_ID", "storyguard-audit-group"),
			RequestTopic: getEnv("KAFKA_AUDIT_REQUEST_TOPIC", "comment-audit-request"),
			ResultsTopic: getEnv("KAFKA_AUDIT_RESULTS_TOPIC", "comment-audit-results"),
		},
		Audit: AuditConfig{
			FlagThreshold: getEnvFloat("AUDIT_FLAG_THRESHOLD", 0.3),
			Workers:       getEnvInt("AUDIT_WORKERS", 4),
			PageLimit:     getEnvInt("AUDIT_PAGE_LIMIT", 50),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("[Config] Invalid integer, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", defaultValue))
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("[Config] Invalid number, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Float64("default", defaultValue))
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
