package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

type RedisConfig struct {
	Addr           string
	IdempotencyTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Buffer  int
}

type Config struct {
	App struct {
		Port string
	}
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireenv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("config: %s is required", key)
	}
	return v, nil
}

// Load reads configuration from the environment, taking a .env file into
// account if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.App.Port = getenv("APP_PORT", "8080")

	var err error
	if cfg.Postgres.Host, err = requireenv("DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.Postgres.Port, err = requireenv("DB_PORT"); err != nil {
		return nil, err
	}
	if cfg.Postgres.User, err = requireenv("DB_USER"); err != nil {
		return nil, err
	}
	if cfg.Postgres.Password, err = requireenv("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Postgres.DBName, err = requireenv("DB_NAME"); err != nil {
		return nil, err
	}
	cfg.Postgres.SSLMode = getenv("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = getenv("DB_MIGRATIONS_PATH", "migrations")

	maxConns, err := strconv.Atoi(getenv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid DB_MAX_CONNS: %w", err)
	}
	cfg.Postgres.MaxConns = int32(maxConns)

	minConns, err := strconv.Atoi(getenv("DB_MIN_CONNS", "2"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid DB_MIN_CONNS: %w", err)
	}
	cfg.Postgres.MinConns = int32(minConns)

	lifetime, err := time.ParseDuration(getenv("DB_MAX_CONN_LIFETIME", "30m"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid DB_MAX_CONN_LIFETIME: %w", err)
	}
	cfg.Postgres.MaxConnLifetime = lifetime

	cfg.Redis.Addr = getenv("REDIS_ADDR", "localhost:6379")
	idemTTL, err := time.ParseDuration(getenv("REDIS_IDEMPOTENCY_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid REDIS_IDEMPOTENCY_TTL: %w", err)
	}
	cfg.Redis.IdempotencyTTL = idemTTL

	cfg.Kafka.Brokers = strings.Split(getenv("KAFKA_BROKERS", "localhost:9092"), ",")
	cfg.Kafka.Topic = getenv("KAFKA_ORDER_TOPIC", "order.events")

	buffer, err := strconv.Atoi(getenv("KAFKA_BUFFER", "256"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid KAFKA_BUFFER: %w", err)
	}
	cfg.Kafka.Buffer = buffer

	return cfg, nil
}
