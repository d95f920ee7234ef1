package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"APP_PORT", "STORE_BACKEND", "DATA_FILE", "DATABASE_URL", "MONGODB_URI",
		"MONGODB_DB_NAME", "DYNAMODB_TABLE", "AWS_REGION", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"KAFKA_GROUP_ID", "KAFKA_PROJECTOR_GROUP_ID", "JWT_SECRET", "ACCESS_TOKEN_TTL", "REPORT_FILE",
		"REPORT_CRON_SCHEDULE", "SMTP_HOST", "SMTP_PORT", "SMTP_FROM", "ADMIN_EMAIL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, "inventory_data.json", cfg.Store.FilePath)
	assert.Equal(t, "inventory_report.xlsx", cfg.Report.FilePath)
	assert.Equal(t, 8*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "stock-ledger-projector", cfg.Kafka.ProjectorGroupID)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("KAFKA_BROKERS")
	os.Unsetenv("STORE_BACKEND")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "STORE_BACKEND=memory\nKAFKA_BROKERS=k1:9092, k2:9092 ,\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("KAFKA_BROKERS")
		os.Unsetenv("STORE_BACKEND")
	})

	cfg, err := Load(envFile)

	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoad_UnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "sqlite")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Error(t, err)
}

func TestValidate_BackendRequirements(t *testing.T) {
	tests := []struct {
		name    string
		store   StoreConfig
		wantErr bool
	}{
		{"file ok", StoreConfig{Backend: BackendFile, FilePath: "data.json"}, false},
		{"file without path", StoreConfig{Backend: BackendFile}, true},
		{"memory", StoreConfig{Backend: BackendMemory}, false},
		{"postgres without dsn", StoreConfig{Backend: BackendPostgres}, true},
		{"postgres", StoreConfig{Backend: BackendPostgres, PostgresDSN: "postgres://x"}, false},
		{"mongo without uri", StoreConfig{Backend: BackendMongo}, true},
		{"dynamo", StoreConfig{Backend: BackendDynamo, DynamoTable: "t"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server: ServerConfig{Port: "8080"},
				Store:  tt.store,
				Auth:   AuthConfig{AccessTokenTTL: time.Hour},
			}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAPI_JWTSecret(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateAPI())

	cfg.Auth.JWTSecret = "short"
	assert.Error(t, cfg.ValidateAPI())

	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.ValidateAPI())
}
