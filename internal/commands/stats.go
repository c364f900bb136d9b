package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"household-ledger/internal/app"
	"household-ledger/internal/format"
	"household-ledger/internal/models"
)

func newStatsCommand(g *globals) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print household totals for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParsePeriod(period)
			if err != nil {
				return err
			}
			cfg, err := g.load()
			if err != nil {
				return err
			}
			deps, err := app.New(cfg, app.Options{})
			if err != nil {
				return err
			}
			defer deps.Close()

			ctx := cmd.Context()
			participants := deps.Household.Participants()
			totals, err := deps.DB.PeriodTotals(ctx, participants, p)
			if err != nil {
				return fmt.Errorf("loading totals: %w", err)
			}
			cats, err := deps.DB.CategoryTotals(ctx, participants, models.KindExpense, p, 0)
			if err != nil {
				return fmt.Errorf("loading categories: %w", err)
			}
			rows, err := deps.DB.UserTotals(ctx, participants, p)
			if err != nil {
				return fmt.Errorf("loading per-user totals: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, format.PeriodStats("Домохозяйство за "+format.PeriodLabel(p), totals, cats))
			for _, r := range rows {
				fmt.Fprintf(out, "%s: %s / %s\n", r.User.DisplayName(), format.Money(r.Income), format.Money(r.Expense))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", string(models.PeriodMonth), "today, week, month or all")

	return cmd
}
