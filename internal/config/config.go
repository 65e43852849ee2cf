// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/highcard/internal/gameapi"
	"github.com/sirupsen/logrus"
)

// EnvProduction is the HIGHCARD_ENV value for production deployments.
const EnvProduction = "production"

// Config holds the server settings read from the environment.
type Config struct {
	Env  string
	Addr string

	GameServiceURL string
	RequestTimeout time.Duration

	AllowedOrigins []string
	LogLevel       logrus.Level

	SessionSecret string

	RedisAddr      string
	RedisDB        int
	RoundQueueName string
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads the configuration from environment variables. A .env file is
// expected to have been loaded already (see godotenv/autoload in main).
func Load() (Config, error) {
	cfg := Config{
		Env:            strings.ToLower(getEnv("HIGHCARD_ENV", "development")),
		GameServiceURL: getEnv("GAME_SERVICE_URL", gameapi.DefaultBaseURL),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RoundQueueName: getEnv("ROUND_QUEUE_NAME", "highcard_rounds"),
	}
	if cfg.Env == "prod" {
		cfg.Env = EnvProduction
	}

	port := getEnv("PORT", "8080")
	if cfg.IsProduction() {
		// bind to all hosts in production mode
		cfg.Addr = ":" + port
	} else {
		cfg.Addr = "localhost:" + port
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", gameapi.DefaultTimeout.String()))
	if err != nil {
		return cfg, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if timeout < 0 {
		return cfg, fmt.Errorf("invalid REQUEST_TIMEOUT: %s is negative", timeout)
	}
	cfg.RequestTimeout = timeout

	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	defaultLevel := "debug"
	if cfg.IsProduction() {
		defaultLevel = "info"
	}
	cfg.LogLevel, err = logrus.ParseLevel(getEnv("LOG_LEVEL", defaultLevel))
	if err != nil {
		return cfg, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as integer, else a default value.
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
