package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"ONBOARD_ADDR", "DATABASE_URL", "KAFKA_BROKERS", "FURTHER_CHECKS_CLIENTS", "CLIENT_KEYS", "TOKEN_SIGNING_KEY", "CLAIM_TX_TIMEOUT", "CLIENT_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Database.DSN)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Claims.TxTimeout)
	assert.NotEmpty(t, cfg.Token.SigningKey)
	assert.Empty(t, cfg.Auth.ClientKeys)
	assert.Equal(t, 600, cfg.Limits.RequestsPerWindow)
	assert.Equal(t, time.Minute, cfg.Limits.Window)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ONBOARD_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,k1:9092")
	t.Setenv("FURTHER_CHECKS_CLIENTS", "npq, apply-for-qts")
	t.Setenv("CLIENT_KEYS", "npq=$2a$10$abc,apply-for-qts=$2a$10$def")
	t.Setenv("CLAIM_TX_TIMEOUT", "750ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"npq", "apply-for-qts"}, cfg.Claims.FurtherChecksClients)
	assert.Equal(t, map[string]string{"npq": "$2a$10$abc", "apply-for-qts": "$2a$10$def"}, cfg.Auth.ClientKeys)
	assert.Equal(t, 750*time.Millisecond, cfg.Claims.TxTimeout)
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "lots")
	t.Setenv("CLAIM_TX_TIMEOUT", "-1s")
	t.Setenv("CLIENT_KEYS", "missing-separator")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_MAX_OPEN_CONNS")
	assert.Contains(t, err.Error(), "CLAIM_TX_TIMEOUT")
	assert.Contains(t, err.Error(), "CLIENT_KEYS")
}
