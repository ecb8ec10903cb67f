package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	gocmd "github.com/goliatone/go-command"
	enigma "github.com/goliatone/go-enigma"
	"github.com/goliatone/go-enigma/adapters/gocommand"
	enigmacommand "github.com/goliatone/go-enigma/command"
	"github.com/goliatone/go-enigma/core"
	enigmaquery "github.com/goliatone/go-enigma/query"
	sqlstore "github.com/goliatone/go-enigma/store/sql"
	"github.com/spf13/cobra"
)

// withDispatcher opens the database, applies migrations and subscribes the
// facade handlers on the go-command dispatcher for the duration of fn. Admin
// commands never schedule notifications.
func withDispatcher(ctx context.Context, flags *rootFlags, logs io.Writer, fn func(context.Context) error) error {
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

	provider, _ := newLoggers(logs, cfg.Debug)
	svc, err := enigma.NewService(cfg,
		enigma.WithLoggerProvider(provider),
		enigma.WithPersistenceClient(client),
		enigma.WithRepositoryFactory(sqlstore.NewRepositoryFactory()),
	)
	if err != nil {
		return err
	}
	facade, err := enigma.NewFacade(svc)
	if err != nil {
		return err
	}
	subs, err := facade.Register(gocommand.NewRegistryAdapter(nil))
	if err != nil {
		return err
	}
	defer subs.Unsubscribe()
	return fn(ctx)
}

func newCreateCmd(flags *rootFlags) *cobra.Command {
	var input core.CreateEnigmaInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a puzzle record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withDispatcher(ctx, flags, cmd.ErrOrStderr(), func(ctx context.Context) error {
				collector := gocmd.NewResult[core.Enigma]()
				if err := gocommand.Dispatch(gocmd.ContextWithResult(ctx, collector), enigmacommand.CreateEnigmaMessage{Input: input}); err != nil {
					return err
				}
				created, ok := collector.Load()
				if !ok {
					return fmt.Errorf("enigma: create returned no record")
				}
				return writeEnigmas(cmd.OutOrStdout(), false, created)
			})
		},
	}
	cmd.Flags().StringVar(&input.Secret, "secret", "", "secret phrase that solves the puzzle")
	cmd.Flags().StringVar(&input.TargetURL, "target-url", "", "URL revealed on a correct answer")
	cmd.Flags().StringVar(&input.WebhookURL, "webhook-url", "", "optional URL notified on each discovery")
	return cmd
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List puzzle records with their discovery counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withDispatcher(ctx, flags, cmd.ErrOrStderr(), func(ctx context.Context) error {
				records, err := gocommand.Query[enigmaquery.ListEnigmasMessage, []core.Enigma](ctx, enigmaquery.ListEnigmasMessage{})
				if err != nil {
					return err
				}
				return writeEnigmas(cmd.OutOrStdout(), asJSON, records...)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func writeEnigmas(w io.Writer, asJSON bool, records ...core.Enigma) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSECRET\tDISCOVERIES\tTARGET\tWEBHOOK")
	for _, record := range records {
		webhook := record.WebhookURL
		if webhook == "" {
			webhook = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", record.ID, record.Secret, record.DiscoveryCount, record.TargetURL, webhook)
	}
	return tw.Flush()
}
