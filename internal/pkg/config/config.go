package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.)
// - default: Values common across all environments (timeouts, cadences, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	DB     DBConfig
	CORS   CORSConfig
	Log    LogConfig
	Engine EngineConfig
	Queue  QueueConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

type StoreConfig struct {
	// postgres for deployments, memory for local runs and test doubles
	Driver string `envconfig:"STORE_DRIVER" default:"postgres"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"commerce"`
	Password string `envconfig:"DB_PASSWORD" default:"commerce"`
	DBName   string `envconfig:"DB_NAME" default:"commerce_core"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type EngineConfig struct {
	// exclusive: per-key lock with bounded wait; optimistic: versioned CAS
	Strategy        string        `envconfig:"ENGINE_STRATEGY" default:"exclusive"`
	LockWaitTimeout time.Duration `envconfig:"ENGINE_LOCK_WAIT_TIMEOUT" default:"5s"`
	MaxRetries      int           `envconfig:"ENGINE_MAX_RETRIES" default:"3"`
	RetryBackoff    time.Duration `envconfig:"ENGINE_RETRY_BACKOFF" default:"50ms"`
}

type QueueConfig struct {
	DrainInterval    time.Duration `envconfig:"QUEUE_DRAIN_INTERVAL" default:"1s"`
	DrainBatchSize   int           `envconfig:"QUEUE_DRAIN_BATCH_SIZE" default:"10"`
	PositionInterval time.Duration `envconfig:"QUEUE_POSITION_INTERVAL" default:"5s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		Log: LogConfig{
			Level: "error",
		},
		Engine: EngineConfig{
			Strategy:        "exclusive",
			LockWaitTimeout: 5 * time.Second,
			MaxRetries:      3,
			RetryBackoff:    10 * time.Millisecond,
		},
		Queue: QueueConfig{
			DrainInterval:    time.Second,
			DrainBatchSize:   10,
			PositionInterval: 5 * time.Second,
		},
	}
}
