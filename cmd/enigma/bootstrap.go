package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-enigma/adapters/gojob"
	"github.com/goliatone/go-enigma/adapters/gologger"
	"github.com/goliatone/go-enigma/core"
	"github.com/goliatone/go-enigma/inbound"
	enigmamigrations "github.com/goliatone/go-enigma/migrations"
	"github.com/goliatone/go-enigma/queue"
	sqlstore "github.com/goliatone/go-enigma/store/sql"
	"github.com/goliatone/go-enigma/webhooks"
	jobqueue "github.com/goliatone/go-job/queue"
	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const shutdownTimeout = 10 * time.Second

type persistenceConfig struct {
	debug  bool
	driver string
	server string
}

func (c persistenceConfig) GetDebug() bool {
	return c.debug
}

func (c persistenceConfig) GetDriver() string {
	return c.driver
}

func (c persistenceConfig) GetServer() string {
	return c.server
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return "go-enigma"
}

// databaseTarget is a database URL resolved to a sql driver and bun dialect.
type databaseTarget struct {
	driver  string
	dsn     string
	dialect string
}

func resolveDatabase(databaseURL string) (databaseTarget, error) {
	raw := strings.TrimSpace(databaseURL)
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return databaseTarget{driver: "postgres", dsn: raw, dialect: enigmamigrations.DialectPostgres}, nil
	case strings.HasPrefix(lower, "sqlite://"):
		dsn := raw[len("sqlite://"):]
		if dsn == "" {
			return databaseTarget{}, fmt.Errorf("enigma: sqlite database url %q has no path", databaseURL)
		}
		return databaseTarget{driver: "sqlite3", dsn: dsn, dialect: enigmamigrations.DialectSQLite}, nil
	case strings.HasPrefix(lower, "file:"):
		return databaseTarget{driver: "sqlite3", dsn: raw, dialect: enigmamigrations.DialectSQLite}, nil
	default:
		return databaseTarget{}, fmt.Errorf("enigma: unsupported database url %q", databaseURL)
	}
}

func openPersistence(cfg core.Config) (*persistence.Client, databaseTarget, error) {
	target, err := resolveDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, databaseTarget{}, err
	}
	sqlDB, err := sql.Open(target.driver, target.dsn)
	if err != nil {
		return nil, target, fmt.Errorf("enigma: open %s database: %w", target.dialect, err)
	}
	if target.dialect == enigmamigrations.DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	pcfg := persistenceConfig{debug: cfg.Debug, driver: target.driver, server: target.dsn}
	var client *persistence.Client
	if target.dialect == enigmamigrations.DialectSQLite {
		client, err = persistence.New(pcfg, sqlDB, sqlitedialect.New())
	} else {
		client, err = persistence.New(pcfg, sqlDB, pgdialect.New())
	}
	if err != nil {
		_ = sqlDB.Close()
		return nil, target, fmt.Errorf("enigma: persistence client: %w", err)
	}
	return client, target, nil
}

func migrate(ctx context.Context, client *persistence.Client, dialect string) error {
	err := enigmamigrations.Register(ctx, dialect, func(_ context.Context, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	})
	if err != nil {
		return err
	}
	return client.Migrate(ctx)
}

type notificationQueue interface {
	jobqueue.Enqueuer
	jobqueue.Dequeuer
	Close() error
}

func openQueue(cfg core.Config) (notificationQueue, error) {
	if strings.TrimSpace(cfg.Queue.RedisURL) == "" {
		return queue.NewMemoryQueue(), nil
	}
	return queue.NewRedisQueueFromURL(cfg.Queue.RedisURL)
}

func newLoggers(w io.Writer, debug bool) (*gologger.ConsoleProvider, glog.Logger) {
	provider := gologger.NewConsoleProvider(gologger.NewConsoleLogger(w, debug))
	return provider, provider.GetLogger("enigma")
}

// app owns every long-lived resource behind the serve command.
type app struct {
	config  core.Config
	logger  glog.Logger
	client  *persistence.Client
	queue   notificationQueue
	service *core.Service
	worker  *queue.Worker
	handler *inbound.Server
}

func newApp(ctx context.Context, cfg core.Config, logs io.Writer) (*app, error) {
	provider, logger := newLoggers(logs, cfg.Debug)

	client, target, err := openPersistence(cfg)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, client, target.dialect); err != nil {
		_ = client.Close()
		return nil, err
	}

	notifications, err := openQueue(cfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	a := &app{config: cfg, logger: logger, client: client, queue: notifications}
	fail := func(err error) (*app, error) {
		a.close()
		return nil, err
	}

	a.service, err = core.NewService(cfg,
		core.WithLoggerProvider(provider),
		core.WithPersistenceClient(client),
		core.WithRepositoryFactory(sqlstore.NewRepositoryFactory()),
		core.WithNotificationScheduler(webhooks.NewQueueDispatcher(notifications)),
	)
	if err != nil {
		return fail(err)
	}

	notifier := webhooks.NewNotifier(
		webhooks.WithTimeout(cfg.Webhook.Timeout),
		webhooks.WithLogger(provider.GetLogger("enigma.webhooks")),
	)
	a.worker, err = queue.NewWorker(notifications, webhooks.NewHandler(notifier),
		queue.WithConcurrency(cfg.Queue.Workers),
		queue.WithHook(gojob.NewLoggingHook(provider.GetLogger("enigma.worker"))),
		queue.WithWorkerLogger(provider.GetLogger("enigma.worker")),
	)
	if err != nil {
		return fail(err)
	}

	a.handler, err = inbound.NewServer(a.service,
		inbound.WithLogger(provider.GetLogger("enigma.inbound")),
		inbound.WithHealthCheck(func(ctx context.Context) error {
			return client.DB().PingContext(ctx)
		}),
	)
	if err != nil {
		return fail(err)
	}
	return a, nil
}

// run serves HTTP until ctx is done. The worker outlives ctx so requests
// finishing during shutdown can still enqueue; it is stopped after the server.
func (a *app) run(ctx context.Context) error {
	if err := a.worker.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	serveErr := inbound.ListenAndServe(ctx, a.config.HTTP.Addr, a.handler, shutdownTimeout, a.logger)

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.worker.Stop(stopCtx); err != nil {
		a.logger.Warn("worker did not stop cleanly", "error", err)
	}
	return serveErr
}

func (a *app) close() {
	if a == nil {
		return
	}
	if a.queue != nil {
		_ = a.queue.Close()
	}
	if a.client != nil {
		_ = a.client.Close()
	}
}
