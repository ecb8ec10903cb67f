package core

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	EnvSecretKey      = "SECRET_KEY"
	EnvDatabaseURL    = "DATABASE_URL"
	EnvDebugMode      = "DEBUG_MODE"
	EnvPort           = "PORT"
	EnvWebhookTimeout = "WEBHOOK_TIMEOUT"
	EnvRedisURL       = "REDIS_URL"
)

// EnvConfigLoader reads the process environment into the raw layer consumed
// by CfgxConfigProvider. Unset variables are omitted so defaults survive.
type EnvConfigLoader struct {
	Lookup func(key string) (string, bool)
}

func NewEnvConfigLoader() EnvConfigLoader {
	return EnvConfigLoader{Lookup: os.LookupEnv}
}

func (l EnvConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		value, ok := lookup(key)
		if !ok {
			return "", false
		}
		value = strings.TrimSpace(value)
		return value, value != ""
	}

	raw := map[string]any{}
	if value, ok := get(EnvSecretKey); ok {
		raw["secret_key"] = value
	}
	if value, ok := get(EnvDatabaseURL); ok {
		raw["database_url"] = value
	}
	// DEBUG_MODE is truthy when set to anything non-empty.
	if _, ok := get(EnvDebugMode); ok {
		raw["debug"] = true
	}
	if value, ok := get(EnvPort); ok {
		raw["http"] = map[string]any{"addr": ":" + strings.TrimPrefix(value, ":")}
	}
	if value, ok := get(EnvWebhookTimeout); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("core: invalid %s %q: %w", EnvWebhookTimeout, value, err)
		}
		raw["webhook"] = map[string]any{"timeout": timeout}
	}
	if value, ok := get(EnvRedisURL); ok {
		raw["queue"] = map[string]any{"redis_url": value}
	}
	return raw, nil
}
