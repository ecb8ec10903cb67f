package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-enigma/adapters/gocommand"
	enigmacommand "github.com/goliatone/go-enigma/command"
	"github.com/goliatone/go-enigma/core"
	enigmamigrations "github.com/goliatone/go-enigma/migrations"
	enigmaquery "github.com/goliatone/go-enigma/query"
)

type stubEnv map[string]any

func (s stubEnv) LoadRaw(context.Context) (map[string]any, error) {
	out := make(map[string]any, len(s))
	for key, value := range s {
		out[key] = value
	}
	return out, nil
}

func TestResolveDatabase(t *testing.T) {
	tests := []struct {
		url     string
		driver  string
		dsn     string
		dialect string
	}{
		{url: "postgresql://localhost/mtmg-backend", driver: "postgres", dsn: "postgresql://localhost/mtmg-backend", dialect: enigmamigrations.DialectPostgres},
		{url: "postgres://u:p@db:5432/enigma", driver: "postgres", dsn: "postgres://u:p@db:5432/enigma", dialect: enigmamigrations.DialectPostgres},
		{url: "sqlite:///var/lib/enigma.db", driver: "sqlite3", dsn: "/var/lib/enigma.db", dialect: enigmamigrations.DialectSQLite},
		{url: "file:enigma.db?cache=shared", driver: "sqlite3", dsn: "file:enigma.db?cache=shared", dialect: enigmamigrations.DialectSQLite},
	}
	for _, tt := range tests {
		got, err := resolveDatabase(tt.url)
		if err != nil {
			t.Fatalf("%s: resolve: %v", tt.url, err)
		}
		if got.driver != tt.driver || got.dsn != tt.dsn || got.dialect != tt.dialect {
			t.Fatalf("%s: unexpected target %#v", tt.url, got)
		}
	}

	for _, bad := range []string{"", "mysql://db/enigma", "sqlite://"} {
		if _, err := resolveDatabase(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	env := stubEnv{
		"database_url": "postgres://env/enigma",
		"queue":        map[string]any{"redis_url": "redis://env:6379/0"},
	}
	flags := &rootFlags{databaseURL: "sqlite:///tmp/flag.db", webhookTimeout: 3 * time.Second}

	cfg, err := loadConfig(context.Background(), flags, env)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DatabaseURL != "sqlite:///tmp/flag.db" {
		t.Fatalf("expected flag database url, got %q", cfg.DatabaseURL)
	}
	if cfg.Queue.RedisURL != "redis://env:6379/0" {
		t.Fatalf("expected environment redis url, got %q", cfg.Queue.RedisURL)
	}
	if cfg.Webhook.Timeout != 3*time.Second {
		t.Fatalf("expected flag webhook timeout, got %s", cfg.Webhook.Timeout)
	}
	if cfg.HTTP.Addr != ":5000" {
		t.Fatalf("expected default addr, got %q", cfg.HTTP.Addr)
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd(io.Discard, io.Discard)
	want := map[string]bool{"serve": false, "migrate": false, "create": false, "list": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("expected %q subcommand", name)
		}
	}
}

func TestCreateAndListCommands(t *testing.T) {
	clearEnigmaEnv(t)
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "enigma.db")

	var out bytes.Buffer
	root := newRootCmd(&out, io.Discard)
	root.SetArgs([]string{
		"--database-url", dbURL,
		"create",
		"--secret", "abc123",
		"--target-url", "https://example.com/prize",
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out.String(), "abc123") {
		t.Fatalf("expected created record in output, got %q", out.String())
	}

	out.Reset()
	root = newRootCmd(&out, io.Discard)
	root.SetArgs([]string{"--database-url", dbURL, "list", "--json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("list: %v", err)
	}
	var records []core.Enigma
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("decode list output %q: %v", out.String(), err)
	}
	if len(records) != 1 || records[0].Secret != "abc123" || records[0].DiscoveryCount != 0 {
		t.Fatalf("unexpected records %#v", records)
	}
}

func TestWithDispatcher_RoutesAdminMessages(t *testing.T) {
	clearEnigmaEnv(t)
	flags := &rootFlags{
		databaseURL:    "sqlite://" + filepath.Join(t.TempDir(), "enigma.db"),
		webhookTimeout: 3 * time.Second,
	}

	err := withDispatcher(context.Background(), flags, io.Discard, func(ctx context.Context) error {
		collector := gocmd.NewResult[core.Enigma]()
		msg := enigmacommand.CreateEnigmaMessage{Input: core.CreateEnigmaInput{Secret: "abc123", TargetURL: "https://example.com/prize"}}
		if err := gocommand.Dispatch(gocmd.ContextWithResult(ctx, collector), msg); err != nil {
			t.Fatalf("dispatch create: %v", err)
		}
		created, ok := collector.Load()
		if !ok || created.ID == "" {
			t.Fatalf("expected created record in result collector")
		}

		found, err := gocommand.Query[enigmaquery.GetEnigmaMessage, core.Enigma](ctx, enigmaquery.GetEnigmaMessage{ID: created.ID})
		if err != nil {
			t.Fatalf("query get: %v", err)
		}
		if found.Secret != "abc123" {
			t.Fatalf("expected stored secret, got %q", found.Secret)
		}

		records, err := gocommand.Query[enigmaquery.ListEnigmasMessage, []core.Enigma](ctx, enigmaquery.ListEnigmasMessage{})
		if err != nil {
			t.Fatalf("query list: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("with dispatcher: %v", err)
	}
}

func TestCreateCommand_RejectsMissingSecret(t *testing.T) {
	clearEnigmaEnv(t)
	root := newRootCmd(io.Discard, io.Discard)
	root.SetArgs([]string{
		"--database-url", "sqlite://" + filepath.Join(t.TempDir(), "enigma.db"),
		"create",
		"--target-url", "https://example.com/prize",
	})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestApp_DiscoveryDeliversWebhook(t *testing.T) {
	ctx := context.Background()
	received := make(chan map[string]string, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	cfg := core.DefaultConfig()
	cfg.DatabaseURL = "sqlite://" + filepath.Join(t.TempDir(), "enigma.db")
	a, err := newApp(ctx, cfg, io.Discard)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.close()

	if _, err := a.service.CreateEnigma(ctx, core.CreateEnigmaInput{
		Secret:     "abc123",
		TargetURL:  "https://example.com/prize",
		WebhookURL: hook.URL,
	}); err != nil {
		t.Fatalf("create enigma: %v", err)
	}
	if err := a.worker.Start(ctx); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.worker.Stop(stopCtx)
	}()

	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	resp, err := http.PostForm(srv.URL+"/enigma", url.Values{"name": {"Ana"}, "secret": {"abc123"}})
	if err != nil {
		t.Fatalf("post enigma: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result core.VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Status != core.StatusSuccess || result.URL != "https://example.com/prize" {
		t.Fatalf("unexpected result %#v", result)
	}

	select {
	case payload := <-received:
		if payload["value1"] != "abc123" || payload["value2"] != "1" || payload["value3"] != "Ana" {
			t.Fatalf("unexpected webhook payload %#v", payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for webhook")
	}

	health, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("expected healthy database, got %d", health.StatusCode)
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.DatabaseURL = "sqlite://" + filepath.Join(t.TempDir(), "enigma.db")
	cfg.HTTP.Addr = "127.0.0.1:0"
	a, err := newApp(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}

func clearEnigmaEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{core.EnvDatabaseURL, core.EnvRedisURL, core.EnvWebhookTimeout, core.EnvPort, core.EnvDebugMode} {
		t.Setenv(key, "")
	}
}
