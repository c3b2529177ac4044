// Package config provides configuration structures and validation for the commerce services.
// Values come from an optional .env file and the process environment and are validated
// once at startup.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration, one field per subsystem.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Razorpay    RazorpayConfig
	YouTube     YouTubeConfig
	Auth        AuthConfig
	Storage     StorageConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	SettlementTopic   string // Settlement retry requests
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	DLQTopic          string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
	TxMaxRetries    uint64        // Retries on serialization failure or deadlock
	TxRetryInterval time.Duration // Initial backoff between retries
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
	ClaimLease       time.Duration // How long a claimed message is hidden from other pollers
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size              int
	MaxSettleAttempts uint64 // Gateway retries per settlement request before DLQ
}

// RazorpayConfig contains payment gateway credentials and limits
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
	Timeout   time.Duration
}

// YouTubeConfig contains OAuth2 credentials for the video publisher
type YouTubeConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Timeout      time.Duration
}

// AuthConfig contains bearer token verification and password reset settings
type AuthConfig struct {
	JWTSecret     string
	ResetTokenTTL time.Duration
}

// StorageConfig points at the directory holding uploaded video files
type StorageConfig struct {
	UploadDir string
}

// ApprovalLockTTL outlives a full upload attempt so a slow publish keeps its lock
func (c *Config) ApprovalLockTTL() time.Duration {
	return c.YouTube.Timeout + 30*time.Second
}

// validate collects every configuration problem and reports them together
func (c *Config) validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.SettlementTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_SETTLEMENT_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}

	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	if c.Postgres.TxRetryInterval <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_TX_RETRY_INTERVAL must be greater than 0")
	}

	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}

	if c.Redis.Addr == "" {
		validationErrors = append(validationErrors, "REDIS_ADDR is required")
	}

	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}
	if c.Outbox.ClaimLease <= c.Outbox.PollingInterval {
		validationErrors = append(validationErrors, "OUTBOX_CLAIM_LEASE must be longer than OUTBOX_POLLING_INTERVAL")
	}

	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(c.Razorpay.Currency) != 3 {
		validationErrors = append(validationErrors, "RAZORPAY_CURRENCY must be a 3-letter code")
	}
	if c.Razorpay.Timeout < 10*time.Second || c.Razorpay.Timeout > 30*time.Second {
		validationErrors = append(validationErrors, "RAZORPAY_TIMEOUT must be between 10s and 30s")
	}
	if c.YouTube.Timeout < 10*time.Second || c.YouTube.Timeout > 30*time.Second {
		validationErrors = append(validationErrors, "YOUTUBE_TIMEOUT must be between 10s and 30s")
	}

	if c.Auth.JWTSecret == "" {
		validationErrors = append(validationErrors, "AUTH_JWT_SECRET is required")
	}
	if c.Auth.ResetTokenTTL <= 0 {
		validationErrors = append(validationErrors, "AUTH_RESET_TOKEN_TTL must be greater than 0")
	}

	if c.Storage.UploadDir == "" {
		validationErrors = append(validationErrors, "STORAGE_UPLOAD_DIR is required")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
