package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full service configuration, loaded from the environment with
// an optional .env file for local development.
type Config struct {
	HTTPPort string `envconfig:"APP_PORT" default:"8080"`
	DB       DBConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Rates    RatesConfig
	Redis    RedisConfig
}

type DBConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"     default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT"     default:"5432"`
	User     string `envconfig:"POSTGRES_USER"     default:"postgres"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	DBName   string `envconfig:"POSTGRES_DB"       default:"remitline"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE"  default:"disable"`
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"transfer-notifications"`
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
}

type RatesConfig struct {
	ProviderURL  string        `envconfig:"RATES_PROVIDER_URL" default:""`
	APIKey       string        `envconfig:"RATES_API_KEY" default:""`
	FetchTimeout time.Duration `envconfig:"RATES_FETCH_TIMEOUT" default:"3s"`
}

type RedisConfig struct {
	Addr    string `envconfig:"REDIS_ADDR" default:""`
	DB      int    `envconfig:"REDIS_DB" default:"0"`
	Enabled bool   `envconfig:"REDIS_ENABLED" default:"false"`
}

// NewConfig loads configuration from .env (when present) and the environment
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, relying on environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}

// DatabaseURL is the pgx / migrate style connection URL
func (d *DBConfig) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}
