package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	Env     string        `yaml:"env" env:"APP_ENV" env-default:"local"`
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Minio   MinioConfig   `yaml:"minio"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Worker  WorkerConfig  `yaml:"worker"`
	Compose ComposeConfig `yaml:"compose"`
	Retry   RetryConfig   `yaml:"retry"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DBConfig struct {
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"imager"`
	Password        string        `yaml:"password" env:"DB_PASSWORD" env-default:"imager"`
	Name            string        `yaml:"name" env:"DB_NAME" env-default:"imager"`
	SSLMode         string        `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"images"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	ComposeTopic string   `yaml:"compose_topic" env:"KAFKA_COMPOSE_TOPIC" env-default:"image-compose"`
	ResultsTopic string   `yaml:"results_topic" env:"KAFKA_RESULTS_TOPIC" env-default:"image-composed"`
	GroupID      string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"imager-group"`
}

type WorkerConfig struct {
	Concurrency int `yaml:"concurrency" env:"WORKER_CONCURRENCY" env-default:"4"`
}

// ComposeConfig carries the service-wide composition defaults. Per-upload
// options override them.
type ComposeConfig struct {
	CanvasWidth    int    `yaml:"canvas_width" env:"COMPOSE_CANVAS_WIDTH" env-default:"700"`
	CanvasHeight   int    `yaml:"canvas_height" env:"COMPOSE_CANVAS_HEIGHT" env-default:"365"`
	ForceFit       bool   `yaml:"force_fit" env:"COMPOSE_FORCE_FIT" env-default:"true"`
	BackgroundBlur bool   `yaml:"background_blur" env:"COMPOSE_BACKGROUND_BLUR" env-default:"true"`
	BlurRadius     int    `yaml:"blur_radius" env:"COMPOSE_BLUR_RADIUS" env-default:"75"`
	Border         bool   `yaml:"border" env:"COMPOSE_BORDER" env-default:"true"`
	BorderWidth    int    `yaml:"border_width" env:"COMPOSE_BORDER_WIDTH" env-default:"1"`
	BorderColor    string `yaml:"border_color" env:"COMPOSE_BORDER_COLOR" env-default:"255,255,255"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	Delay    time.Duration `yaml:"delay" env:"RETRY_DELAY" env-default:"500ms"`
	Backoff  float64       `yaml:"backoff" env:"RETRY_BACKOFF" env-default:"2"`
}

// MustLoad reads the optional .env file, then the YAML config pointed to
// by CONFIG_PATH, falling back to environment variables only.
func MustLoad() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) DBDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: c.Retry.Attempts,
		Delay:    c.Retry.Delay,
		Backoff:  c.Retry.Backoff,
	}
}
