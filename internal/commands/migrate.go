package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"household-ledger/internal/app"
)

func newMigrateCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			deps, err := app.New(cfg, app.Options{})
			if err != nil {
				return err
			}
			defer deps.Close()

			n, err := deps.DB.Migrate(cmd.Context())
			if err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s, %d statements)\n", deps.DB.Driver(), n)
			return nil
		},
	}
}
