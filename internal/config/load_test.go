package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from a temp dir holding configs/<name>.env
func chdirTemp(t *testing.T, name, content string) {
	t.Helper()
	tempDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "configs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "configs", name+".env"), []byte(content), 0644))

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(originalWD) })
	require.NoError(t, os.Chdir(tempDir))
}

func defaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

func TestLoadConfig_HappyPath(t *testing.T) {
	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\nSTORE_BACKEND=%s\n",
		"TestLedger", 9090, "debug", "kafka1:9092, kafka2:9092", "Postgres",
	)
	chdirTemp(t, "test_happy", envContent)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)

	assert.Equal(t, "TestLedger", cfg.Application.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, []string{"kafka1:9092", "kafka2:9092"}, cfg.Kafka.BrokerList())

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "ledger_commands", cfg.Kafka.CommandTopic)
	assert.Equal(t, 24*time.Hour, cfg.Rules.FutureTolerance)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 10, cfg.WorkerPool.Size)

	cfgWithName, err := LoadConfigWithName("configs/test_happy")
	require.NoError(t, err)
	assert.Equal(t, "TestLedger", cfgWithName.Application.Name)

	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	assert.Equal(t, "TestLedger", cfgWithNameAndType.Application.Name)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	chdirTemp(t, "test_env", "SERVER_PORT=9090\n")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("RULES_FUTURE_TOLERANCE", "2h")

	cfg, err := LoadConfig("test_env")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Rules.FutureTolerance)
}

func TestLoadConfig_Invalid(t *testing.T) {
	chdirTemp(t, "test_invalid", "SERVER_PORT=0\nSTORE_BACKEND=sqlite\n")

	cfg, err := LoadConfig("test_invalid")

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT must be greater than 0")
	assert.Contains(t, err.Error(), "STORE_BACKEND must be one of")
}

func TestConfig_Validate(t *testing.T) {
	t.Run("DefaultsAreValid", func(t *testing.T) {
		assert.NoError(t, defaultConfig().validate())
	})

	t.Run("UnselectedBackendIsIgnored", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Postgres.URL = ""
		cfg.MongoDB.URI = ""
		assert.NoError(t, cfg.validate())
	})

	t.Run("PostgresChecked", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Store.Backend = BackendPostgres
		cfg.Postgres.URL = ""
		cfg.Postgres.MinConns = 50

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_URL is required")
		assert.Contains(t, err.Error(), "POSTGRES_MIN_CONNS cannot exceed POSTGRES_MAX_CONNS")
	})

	t.Run("MongoChecked", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Store.Backend = BackendMongo
		cfg.MongoDB.Database = ""

		assert.EqualError(t, cfg.validate(), "MONGO_DATABASE is required")
	})

	t.Run("KafkaCheckedOnlyWhenEnabled", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Kafka.Brokers = " , "
		cfg.Kafka.JournalTopic = ""
		assert.NoError(t, cfg.validate())

		cfg.Kafka.Enabled = true
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "KAFKA_BROKERS is required")
		assert.Contains(t, err.Error(), "KAFKA_JOURNAL_TOPIC is required")
	})

	t.Run("KafkaBatchChecked", func(t *testing.T) {
		cfg := defaultConfig()
		assert.Equal(t, 100, cfg.Kafka.BatchSize)
		assert.Equal(t, 100*time.Millisecond, cfg.Kafka.BatchWait)

		cfg.Kafka.Enabled = true
		cfg.Kafka.BatchSize = 0
		assert.EqualError(t, cfg.validate(), "KAFKA_CONSUMER_BATCH_SIZE must be greater than 0")
	})

	t.Run("NegativeTolerance", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Rules.FutureTolerance = -time.Minute
		assert.EqualError(t, cfg.validate(), "RULES_FUTURE_TOLERANCE cannot be negative")
	})
}
