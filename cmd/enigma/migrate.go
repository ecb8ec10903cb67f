package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the enigma schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, flags, nil)
			if err != nil {
				return err
			}
			client, target, err := openPersistence(cfg)
			if err != nil {
				return err
			}
			defer client.Close()
			if err := migrate(ctx, client, target.dialect); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", target.dialect)
			return nil
		},
	}
}
