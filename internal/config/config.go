// Package config loads the ledger daemon configuration from defaults, an
// optional .env file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"strings"
	"time"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config holds the complete application configuration. Sections for
// backends that are not selected are loaded but not validated.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Store       StoreConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	Rules       RulesConfig
	WorkerPool  WorkerPoolConfig
}

type ApplicationConfig struct {
	Env  string
	Name string
}

type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// StoreConfig selects the backing store for all three aggregates
type StoreConfig struct {
	Backend string
}

type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string // Empty skips migrations on startup
}

type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig covers the command consumer, the change journal and the DLQ.
// Nothing Kafka related starts unless Enabled is set.
type KafkaConfig struct {
	Enabled           bool
	Brokers           string
	CommandTopic      string
	JournalTopic      string
	DLQTopic          string
	ConsumerGroup     string
	NumPartitions     int
	ReplicationFactor int
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	BatchSize         int           // Commands fetched before the batch is processed
	BatchWait         time.Duration // How long to wait for a batch to fill
}

// BrokerList splits the comma separated broker string
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// RulesConfig tunes ledger validation
type RulesConfig struct {
	FutureTolerance time.Duration // How far ahead of now an operation may be dated
}

type WorkerPoolConfig struct {
	Size int // Maximum number of concurrent command workers
}

// validate collects every violation so a misconfigured deployment fails
// with the full list at once
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

	if c.Rules.FutureTolerance < 0 {
		validationErrors = append(validationErrors, "RULES_FUTURE_TOLERANCE cannot be negative")
	}
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		validationErrors = append(validationErrors, c.Postgres.validate()...)
	case BackendMongo:
		validationErrors = append(validationErrors, c.MongoDB.validate()...)
	default:
		validationErrors = append(validationErrors, "STORE_BACKEND must be one of memory, postgres, mongo")
	}

	if c.Kafka.Enabled {
		validationErrors = append(validationErrors, c.Kafka.validate()...)
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

func (p PostgresConfig) validate() []string {
	var errs []string
	if p.URL == "" {
		errs = append(errs, "POSTGRES_URL is required")
	}
	if p.MaxConns <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if p.MinConns <= 0 {
		errs = append(errs, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if p.MinConns > p.MaxConns {
		errs = append(errs, "POSTGRES_MIN_CONNS cannot exceed POSTGRES_MAX_CONNS")
	}
	if p.ConnMaxLifetime <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if p.ConnMaxIdleTime <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	return errs
}

func (m MongoDBConfig) validate() []string {
	var errs []string
	if m.URI == "" {
		errs = append(errs, "MONGO_URI is required")
	}
	if m.Database == "" {
		errs = append(errs, "MONGO_DATABASE is required")
	}
	if m.Timeout <= 0 {
		errs = append(errs, "MONGO_TIMEOUT must be greater than 0")
	}
	if m.MaxPoolSize == 0 {
		errs = append(errs, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if m.MaxConnIdleTime <= 0 {
		errs = append(errs, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	return errs
}

func (k KafkaConfig) validate() []string {
	var errs []string
	if len(k.BrokerList()) == 0 {
		errs = append(errs, "KAFKA_BROKERS is required")
	}
	if k.CommandTopic == "" {
		errs = append(errs, "KAFKA_COMMAND_TOPIC is required")
	}
	if k.JournalTopic == "" {
		errs = append(errs, "KAFKA_JOURNAL_TOPIC is required")
	}
	if k.DLQTopic == "" {
		errs = append(errs, "KAFKA_DLQ_TOPIC is required")
	}
	if k.ConsumerGroup == "" {
		errs = append(errs, "KAFKA_CONSUMER_GROUP is required")
	}
	if k.NumPartitions <= 0 {
		errs = append(errs, "KAFKA_NUM_PARTITIONS must be greater than 0")
	}
	if k.ReplicationFactor <= 0 {
		errs = append(errs, "KAFKA_REPLICATION_FACTOR must be greater than 0")
	}
	if k.MinBytes <= 0 {
		errs = append(errs, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if k.MaxBytes < k.MinBytes {
		errs = append(errs, "KAFKA_CONSUMER_MAX_BYTES must not be less than KAFKA_CONSUMER_MIN_BYTES")
	}
	if k.MaxWait <= 0 {
		errs = append(errs, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if k.BatchSize <= 0 {
		errs = append(errs, "KAFKA_CONSUMER_BATCH_SIZE must be greater than 0")
	}
	if k.BatchWait <= 0 {
		errs = append(errs, "KAFKA_CONSUMER_BATCH_WAIT must be greater than 0")
	}
	return errs
}
