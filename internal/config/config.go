package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the marketplace backend.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	RabbitMQ  RabbitMQConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Promotion PromotionConfig
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Addr string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// RabbitMQConfig holds RabbitMQ connection configuration.
type RabbitMQConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr string
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// PromotionConfig holds the promotion expiry sweep configuration.
type PromotionConfig struct {
	SweepInterval time.Duration
}

// Load reads configuration from the environment. A .env file next to the
// binary is loaded first when present; real environment variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr: getenv("HTTP_ADDR", ":3000"),
		},
		Database: DatabaseConfig{
			Host:     getenv("DB_HOST", "localhost"),
			User:     getenv("DB_USER", "grubmarket"),
			Password: getenv("DB_PASSWORD", "grubmarket"),
			Database: getenv("DB_NAME", "grubmarket"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     getenv("RABBITMQ_HOST", "localhost"),
			User:     getenv("RABBITMQ_USER", "guest"),
			Password: getenv("RABBITMQ_PASSWORD", "guest"),
		},
		Redis: RedisConfig{
			Addr: getenv("REDIS_ADDR", "localhost:6379"),
		},
		Auth: AuthConfig{
			Secret: os.Getenv("AUTH_SECRET"),
		},
	}

	var err error
	if cfg.Database.Port, err = getenvInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.RabbitMQ.Port, err = getenvInt("RABBITMQ_PORT", 5672); err != nil {
		return nil, err
	}
	if cfg.Auth.TokenTTL, err = getenvDuration("AUTH_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Promotion.SweepInterval, err = getenvDuration("PROMOTION_SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("AUTH_SECRET is required")
	}

	return cfg, nil
}

// DatabaseURL returns a PostgreSQL connection URL.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL.
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}
