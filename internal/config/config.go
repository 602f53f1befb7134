// Package config reads server and historian settings from the environment.
// Binaries import github.com/joho/godotenv/autoload so a local .env file is
// picked up before Load runs.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Port        string
	LogLevel    string
	LogFormat   string
	GracePeriod time.Duration

	RedisAddr          string
	RedisDB            int
	HistorianQueue     string
	HistorianBatchSize int
	HistorianFlush     time.Duration
	GameInactivity     time.Duration

	DatabaseURL     string
	TokenExpireTime string
	AllowedOrigins  []string

	// Both paths must be set to sign seat tokens with a persistent key pair.
	SeatKeyPrivate string
	SeatKeyPublic  string
}

// Load reads every setting, falling back to defaults.
func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		GracePeriod: getEnvDuration("ROOM_GRACE_PERIOD", 10*time.Second),

		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		HistorianQueue:     getEnv("HISTORIAN_QUEUE_NAME", "bussfix_actions"),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		GameInactivity:     time.Duration(getEnvInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,

		DatabaseURL:     os.Getenv("DATABASE_URL"),
		TokenExpireTime: getEnv("TOKEN_EXPIRE_TIME", "24h"),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "*")),

		SeatKeyPrivate: os.Getenv("SEAT_KEY_PRIVATE"),
		SeatKeyPublic:  os.Getenv("SEAT_KEY_PUBLIC"),
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithField("value", c.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
