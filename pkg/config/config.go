package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/vlasovmax/shopcore/pkg/utils"
)

type Config struct {
	Env      string       `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTP         `yaml:"http"`
	Postgres PG           `yaml:"postgres"`
	Redis    Redis        `yaml:"redis"`
	Kafka    Kafka        `yaml:"kafka"`
	Cache    Cache        `yaml:"cache"`
	Notify   Notify       `yaml:"notify"`
	Logger   LoggerConfig `yaml:"logger"`
}

type HTTP struct {
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:":3000"`
	Timeout time.Duration `yaml:"timeout" env-default:"4s"`
}

type PG struct {
	URL string `yaml:"url" env:"DB_URL"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	// Empty brokers keep notification delivery in-process (no backplane).
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_STATUS_TOPIC" env-default:"order.status"`
	GroupID string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"shopcore-notify"`
}

type Cache struct {
	TTL time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"1h"`
}

type Notify struct {
	// Per-session outbound buffer; events beyond it are dropped rather
	// than blocking the publisher.
	SessionBuffer int `yaml:"session_buffer" env:"NOTIFY_SESSION_BUFFER" env-default:"16"`
}

func MustLoad() *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exists: %v\n", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return &cfg
}
