package main

import (
	"context"
	"io"
	"time"

	"github.com/goliatone/go-enigma/core"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	databaseURL    string
	redisURL       string
	addr           string
	debug          bool
	webhookTimeout time.Duration
	workers        int
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "enigma",
		Short: "Serve and manage secret-phrase puzzles",
		Long: `enigma serves the puzzle verification endpoint and manages puzzle records.

Settings come from the environment (SECRET_KEY, DATABASE_URL, DEBUG_MODE, PORT,
WEBHOOK_TIMEOUT, REDIS_URL) and can be overridden with flags.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.databaseURL, "database-url", "", "database connection URL (postgres:// or sqlite://)")
	pf.StringVar(&flags.redisURL, "redis-url", "", "redis URL for the notification queue; empty uses an in-process queue")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(flags),
		newMigrateCmd(flags),
		newCreateCmd(flags),
		newListCmd(flags),
	)
	return root
}

// loadConfig layers defaults, environment and flags, flags winning.
func loadConfig(ctx context.Context, flags *rootFlags, loader core.RawConfigLoader) (core.Config, error) {
	if loader == nil {
		loader = core.NewEnvConfigLoader()
	}
	runtime := core.Config{}
	if flags != nil {
		runtime.DatabaseURL = flags.databaseURL
		runtime.Debug = flags.debug
		runtime.HTTP.Addr = flags.addr
		runtime.Webhook.Timeout = flags.webhookTimeout
		runtime.Queue.RedisURL = flags.redisURL
		runtime.Queue.Workers = flags.workers
	}
	cfg, err := core.LoadConfig(ctx, core.NewCfgxConfigProvider(loader), runtime)
	if err != nil {
		return core.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}
