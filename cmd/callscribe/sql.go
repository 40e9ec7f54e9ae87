package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/callscribe/internal/console"
	"github.com/MikeSquared-Agency/callscribe/internal/shell"
	"github.com/MikeSquared-Agency/callscribe/internal/store"
)

func newSQLCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "sql",
		Short:       "Interactive PostgreSQL query shell",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cc.requireDatabase(); err != nil {
				return err
			}
			ctx := cmd.Context()

			db, err := store.New(ctx, cc.cfg.DatabaseURL, cc.cfg.DBSchema, cc.logger)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Connected to PostgreSQL.")

			con, err := console.New(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer con.Close()

			return shell.New(db, con, con.Out(), cc.cfg.SQLMaxRows, cc.logger).Run(ctx)
		},
	}
}
