package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultServiceName = "enigma"
	defaultSecretKey   = "dev_key"
	defaultDatabaseURL = "postgresql://localhost/mtmg-backend"
	defaultHTTPAddr    = ":5000"
)

type HTTPConfig struct {
	Addr string `koanf:"addr" mapstructure:"addr"`
}

type WebhookConfig struct {
	// Timeout bounds a single webhook POST. Zero means no timeout.
	Timeout time.Duration `koanf:"timeout" mapstructure:"timeout"`
}

type QueueConfig struct {
	RedisURL string `koanf:"redis_url" mapstructure:"redis_url"`
	Workers  int    `koanf:"workers" mapstructure:"workers"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	SecretKey   string        `koanf:"secret_key" mapstructure:"secret_key"`
	DatabaseURL string        `koanf:"database_url" mapstructure:"database_url"`
	Debug       bool          `koanf:"debug" mapstructure:"debug"`
	HTTP        HTTPConfig    `koanf:"http" mapstructure:"http"`
	Webhook     WebhookConfig `koanf:"webhook" mapstructure:"webhook"`
	Queue       QueueConfig   `koanf:"queue" mapstructure:"queue"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: defaultServiceName,
		SecretKey:   defaultSecretKey,
		DatabaseURL: defaultDatabaseURL,
		HTTP:        HTTPConfig{Addr: defaultHTTPAddr},
		Queue:       QueueConfig{Workers: 1},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("core: database_url is required")
	}
	if c.Webhook.Timeout < 0 {
		return fmt.Errorf("core: webhook.timeout must not be negative")
	}
	if c.Queue.Workers < 0 {
		return fmt.Errorf("core: queue.workers must not be negative")
	}
	return nil
}
