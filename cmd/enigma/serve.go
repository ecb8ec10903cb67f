package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /enigma and deliver discovery webhooks",
		Long: `serve migrates the database, starts the webhook worker and listens for
verification requests until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx, flags, nil)
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()
			return a.run(ctx)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address, e.g. :5000")
	cmd.Flags().DurationVar(&flags.webhookTimeout, "webhook-timeout", 0, "timeout for each webhook call; 0 means none")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "number of webhook workers")
	return cmd
}
