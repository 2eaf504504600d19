package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Environment string `envconfig:"ENV" default:"development"`

	// Хранилище
	Store      string `envconfig:"STORE" default:"postgres"`
	DBDSN      string `envconfig:"DB_DSN"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	// HTTP
	HTTPAddr  string        `envconfig:"HTTP_ADDR" default:":8080"`
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"1h"`

	// RabbitMQ (пусто = события не публикуются)
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"surfbook.events"`

	// OpenTelemetry (пусто = трейсинг выключен)
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Расписание перевода прошедших занятий в COMPLETED
	CompletionSchedule string `envconfig:"COMPLETION_SCHEDULE" default:"*/5 * * * *"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию только из переменных окружения
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q: want %s or %s", c.Store, StorePostgres, StoreMemory)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}

	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
