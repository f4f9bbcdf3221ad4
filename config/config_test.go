package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/kidcanvas")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "kidcanvas_session", cfg.Auth.CookieName)
	assert.Equal(t, 168*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 4, cfg.Tasks.Workers)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.Google.Enabled())
}

func TestNewParsesLists(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/kidcanvas")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TASK_TIMEOUT", "5s")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Tasks.Timeout)
}

func TestNewRequiresSecrets(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := New()
	assert.Error(t, err)
}
