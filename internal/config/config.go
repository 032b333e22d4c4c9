package config

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Leave     LeaveConfig
}

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"3000"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
}

type DBConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" required:"true"`
	Password    string `envconfig:"DB_PASSWORD" required:"true"`
	Name        string `envconfig:"DB_NAME" required:"true"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxRetries  int    `envconfig:"DB_MAX_RETRIES" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	Addr       string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	MaxRetries int    `envconfig:"REDIS_MAX_RETRIES" default:"5"`
}

type KafkaConfig struct {
	Broker       string        `envconfig:"KAFKA_BROKER"`
	PollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"3s"`
	BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

type RateLimitConfig struct {
	PerIP     float64 `envconfig:"RATE_LIMIT_IP_RPS" default:"20"`
	IPBurst   int     `envconfig:"RATE_LIMIT_IP_BURST" default:"40"`
	PerUser   float64 `envconfig:"RATE_LIMIT_USER_RPS" default:"5"`
	UserBurst int     `envconfig:"RATE_LIMIT_USER_BURST" default:"10"`
}

type LeaveConfig struct {
	// read_committed or serializable
	TxIsolation string `envconfig:"LEAVE_TX_ISOLATION" default:"read_committed"`
}

// IsolationLevel maps the configured name onto database/sql's levels.
func (c LeaveConfig) IsolationLevel() (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(c.TxIsolation)) {
	case "", "read_committed":
		return sql.LevelReadCommitted, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "serializable":
		return sql.LevelSerializable, nil
	default:
		return sql.LevelDefault, fmt.Errorf("unsupported LEAVE_TX_ISOLATION %q", c.TxIsolation)
	}
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if _, err := cfg.Leave.IsolationLevel(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		App: AppConfig{Env: "test", LogLevel: "error"},
		Server: ServerConfig{
			Port:         "8889",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		DB: DBConfig{
			Host:       "localhost",
			Port:       "15433",
			User:       "test",
			Password:   "test",
			Name:       "staffsync_test",
			SSLMode:    "disable",
			MaxRetries: 1,
		},
		Redis: RedisConfig{Addr: "localhost:16379", MaxRetries: 1},
		Kafka: KafkaConfig{PollInterval: time.Second, BatchSize: 10},
		JWT:   JWTConfig{Secret: "test-secret"},
		RateLimit: RateLimitConfig{
			PerIP:     100,
			IPBurst:   100,
			PerUser:   100,
			UserBurst: 100,
		},
		Leave: LeaveConfig{TxIsolation: "read_committed"},
	}
}
