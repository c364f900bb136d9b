package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"household-ledger/internal/app"
)

func newRemindersCommand(g *globals) *cobra.Command {
	remindersCmd := &cobra.Command{
		Use:   "reminders",
		Short: "Plan reminder operations",
	}
	remindersCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Send the reminders that are due now and exit",
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

			n, err := deps.Scheduler.RunOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("sending reminders: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, id := range deps.Household.Participants() {
				for _, msg := range deps.Outbox.Drain(id) {
					fmt.Fprintf(out, "→ %d\n%s\n\n", id, msg)
				}
			}
			fmt.Fprintf(out, "%d plan(s) notified\n", n)
			return nil
		},
	})
	return remindersCmd
}
