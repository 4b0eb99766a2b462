// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store back-ends.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

// Event back-ends.
const (
	EventsRedis    = "redis"
	EventsRabbitMQ = "rabbitmq"
	EventsNone     = "none"
)

// Config holds all runtime configuration for the board service.
type Config struct {
	Port     string
	GRPCPort string

	StoreDriver string
	DatabaseURL string
	MongoURI    string
	MongoDB     string

	EventsDriver string
	RedisURL     string
	RabbitMQURL  string

	ReconcileInterval time.Duration
	CORSOrigins       []string

	LogLevel  string
	LogPretty bool
}

// Load reads environment variables (and a .env file when present) and
// returns a validated Config.
func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("BOARD_PORT", "8083"),
		GRPCPort:     getEnv("GRPC_PORT", "9083"),
		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      getEnv("MONGO_DB", "jobboard"),
		EventsDriver: strings.ToLower(getEnv("EVENTS_DRIVER", EventsRedis)),
		RedisURL:     os.Getenv("REDIS_URL"),
		RabbitMQURL:  os.Getenv("RABBITMQ_URL"),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	minutes, err := getEnvAsInt("RECONCILE_INTERVAL_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	if minutes <= 0 {
		return nil, fmt.Errorf("RECONCILE_INTERVAL_MINUTES must be positive, got %d", minutes)
	}
	cfg.ReconcileInterval = time.Duration(minutes) * time.Minute

	if cfg.LogPretty, err = getEnvAsBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StoreMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.EventsDriver {
	case EventsRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required")
		}
	case EventsRabbitMQ:
		if cfg.RabbitMQURL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL is required")
		}
	case EventsNone:
	default:
		return nil, fmt.Errorf("unknown EVENTS_DRIVER %q", cfg.EventsDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
