package core

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

type failingConfigProvider struct{}

func (failingConfigProvider) Load(context.Context, Config) (Config, error) {
	return Config{}, errors.New("database_url is invalid")
}

func TestNewService_DefaultDependencies(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	deps := svc.Dependencies()
	if deps.Logger == nil {
		t.Fatalf("expected default logger")
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected default logger provider")
	}
	if deps.ErrorMapper == nil {
		t.Fatalf("expected default error mapper")
	}
	if deps.ConfigProvider == nil {
		t.Fatalf("expected default config provider")
	}
	if deps.OptionsResolver == nil {
		t.Fatalf("expected default options resolver")
	}
	cfg := svc.Config()
	if cfg.ServiceName != "enigma" {
		t.Fatalf("expected default service_name=enigma, got %q", cfg.ServiceName)
	}
	if cfg.SecretKey != "dev_key" {
		t.Fatalf("expected default secret key, got %q", cfg.SecretKey)
	}
	if cfg.DatabaseURL != "postgresql://localhost/mtmg-backend" {
		t.Fatalf("expected default database url, got %q", cfg.DatabaseURL)
	}
	if cfg.Debug {
		t.Fatalf("expected debug off by default")
	}
	if cfg.Webhook.Timeout != 0 {
		t.Fatalf("expected no webhook timeout by default, got %s", cfg.Webhook.Timeout)
	}
}

func TestNewService_WithXOverrides(t *testing.T) {
	customLogger := newStubLogger()
	customProvider := stubLoggerProvider{logger: customLogger}
	customMapper := func(error) *goerrors.Error {
		return goerrors.New("mapped", goerrors.CategoryOperation)
	}
	persistenceClient := &struct{ Name string }{Name: "persistence"}
	configProvider := &fixedConfigProvider{cfg: Config{ServiceName: "from-provider"}}
	optionsResolver := &fixedOptionsResolver{cfg: Config{ServiceName: "resolved", DatabaseURL: "sqlite://x"}}
	store := newMemoryEnigmaStore()
	scheduler := &capturingScheduler{}

	svc, err := NewService(Config{ServiceName: "runtime"},
		WithLogger(customLogger),
		WithLoggerProvider(customProvider),
		WithErrorMapper(customMapper),
		WithPersistenceClient(persistenceClient),
		WithConfigProvider(configProvider),
		WithOptionsResolver(optionsResolver),
		WithEnigmaStore(store),
		WithNotificationScheduler(scheduler),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	deps := svc.Dependencies()
	if resolved := deps.LoggerProvider.GetLogger("enigma.override"); resolved == nil {
		t.Fatalf("expected logger provider to resolve custom logger")
	}
	if deps.PersistenceClient != persistenceClient {
		t.Fatalf("expected custom persistence client override")
	}
	if deps.ConfigProvider != configProvider {
		t.Fatalf("expected custom config provider override")
	}
	if deps.OptionsResolver != optionsResolver {
		t.Fatalf("expected custom options resolver override")
	}
	if deps.EnigmaStore != store {
		t.Fatalf("expected custom enigma store")
	}
	if deps.NotificationScheduler != scheduler {
		t.Fatalf("expected custom notification scheduler")
	}
	if got := svc.Config().ServiceName; got != "resolved" {
		t.Fatalf("expected options resolver output config, got %q", got)
	}
}

func TestNewService_ConfigLayeringPrecedence(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"service_name": "from-config",
		"database_url": "sqlite://from-config.db",
		"queue": map[string]any{
			"redis_url": "redis://localhost:6379/0",
		},
	}})

	svc, err := NewService(Config{ServiceName: "from-runtime"}, WithConfigProvider(provider))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	cfg := svc.Config()
	if cfg.ServiceName != "from-runtime" {
		t.Fatalf("expected runtime layer to win, got %q", cfg.ServiceName)
	}
	if cfg.DatabaseURL != "sqlite://from-config.db" {
		t.Fatalf("expected config layer database url, got %q", cfg.DatabaseURL)
	}
	if cfg.Queue.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("expected config layer redis url, got %q", cfg.Queue.RedisURL)
	}
	if cfg.SecretKey != "dev_key" {
		t.Fatalf("expected default secret key to survive, got %q", cfg.SecretKey)
	}
}

func TestNewService_ConfigProviderErrorIsMapped(t *testing.T) {
	_, err := NewService(Config{}, WithConfigProvider(failingConfigProvider{}))
	if err == nil {
		t.Fatalf("expected config error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected mapped go-errors envelope, got %T", err)
	}
	if rich.TextCode != EnigmaErrorBadInput {
		t.Fatalf("expected %q, got %q", EnigmaErrorBadInput, rich.TextCode)
	}
}

func TestEnvConfigLoader_ReadsProcessSettings(t *testing.T) {
	env := map[string]string{
		EnvSecretKey:      "s3cr3t",
		EnvDatabaseURL:    "postgres://db/enigma",
		EnvDebugMode:      "1",
		EnvPort:           "8080",
		EnvWebhookTimeout: "5s",
		EnvRedisURL:       "redis://cache:6379/1",
	}
	loader := EnvConfigLoader{Lookup: func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}}

	cfg, err := LoadConfig(context.Background(), NewCfgxConfigProvider(loader), Config{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SecretKey != "s3cr3t" || cfg.DatabaseURL != "postgres://db/enigma" {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if !cfg.Debug {
		t.Fatalf("expected DEBUG_MODE to enable debug")
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.Webhook.Timeout != 5*time.Second {
		t.Fatalf("expected 5s webhook timeout, got %s", cfg.Webhook.Timeout)
	}
	if cfg.Queue.RedisURL != "redis://cache:6379/1" {
		t.Fatalf("unexpected redis url %q", cfg.Queue.RedisURL)
	}
}

func TestEnvConfigLoader_EmptyDebugModeIsOff(t *testing.T) {
	loader := EnvConfigLoader{Lookup: func(key string) (string, bool) {
		if key == EnvDebugMode {
			return "", true
		}
		return "", false
	}}
	raw, err := loader.LoadRaw(context.Background())
	if err != nil {
		t.Fatalf("load raw: %v", err)
	}
	if _, ok := raw["debug"]; ok {
		t.Fatalf("expected empty DEBUG_MODE to be ignored")
	}
}

func TestEnvConfigLoader_RejectsBadTimeout(t *testing.T) {
	loader := EnvConfigLoader{Lookup: func(key string) (string, bool) {
		if key == EnvWebhookTimeout {
			return "soon", true
		}
		return "", false
	}}
	if _, err := loader.LoadRaw(context.Background()); err == nil {
		t.Fatalf("expected invalid timeout error")
	}
}
