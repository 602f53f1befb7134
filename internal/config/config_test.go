package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "ROOM_GRACE_PERIOD", "REDIS_ADDR", "DATABASE_URL", "ALLOWED_ORIGINS", "HISTORIAN_FLUSH_MS"} {
		t.Setenv(k, "")
	}

	c := Load()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 10*time.Second, c.GracePeriod)
	assert.Empty(t, c.RedisAddr)
	assert.Empty(t, c.DatabaseURL)
	assert.Equal(t, 500*time.Millisecond, c.HistorianFlush)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ROOM_GRACE_PERIOD", "3s")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	c := Load()
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, 3*time.Second, c.GracePeriod)
	assert.Equal(t, 2, c.RedisDB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("ROOM_GRACE_PERIOD", "soon")
	t.Setenv("REDIS_DB", "two")

	c := Load()
	assert.Equal(t, 10*time.Second, c.GracePeriod)
	assert.Equal(t, 0, c.RedisDB)
}

func TestNewLogger(t *testing.T) {
	logger := Config{LogLevel: "debug", LogFormat: "json"}.NewLogger()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	logger = Config{LogLevel: "loud"}.NewLogger()
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
