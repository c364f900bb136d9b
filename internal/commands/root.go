package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"household-ledger/internal/app"
	"household-ledger/internal/buildinfo"
	"household-ledger/internal/config"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	getenv     func(string) string
}

func (g *globals) load() (*config.Config, error) {
	return app.LoadConfig(g.configPath, g.getenv)
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Getenv)
}

func newRootCommand(getenv func(string) string) *cobra.Command {
	g := &globals{getenv: getenv}

	rootCmd := &cobra.Command{
		Use:     "householdctl",
		Short:   "Operate the household ledger assistant",
		Version: fmt.Sprintf("%s (commit: %s)", buildinfo.Version, buildinfo.Commit),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "path to household.yaml (defaults to $HOUSEHOLD_CONFIG)")

	rootCmd.AddCommand(
		newConfigCommand(g),
		newMigrateCommand(g),
		newConsoleCommand(g),
		newRemindersCommand(g),
		newStatsCommand(g),
	)

	return rootCmd
}
