package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"household-ledger/internal/config"
)

func newConfigCommand(g *globals) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration file operations",
	}
	configCmd.AddCommand(newConfigInitCommand(), newConfigShowCommand(g))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		participants string
		timezone     string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a household.yaml with defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "household.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			return runConfigInit(cmd, path, participants, timezone, force)
		},
	}

	cmd.Flags().StringVar(&participants, "participants", "", "comma-separated chat user ids (required)")
	_ = cmd.MarkFlagRequired("participants")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone of the household")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, path, participants, timezone string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
	}

	cfg := config.Default()
	for _, field := range strings.Split(participants, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing participant %q: %w", field, err)
		}
		cfg.Household.Participants = append(cfg.Household.Participants, config.Participant{ID: id})
	}
	if timezone != "" {
		cfg.Household.Timezone = timezone
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s for %d participants\n", path, len(cfg.Household.Participants))
	return nil
}

func newConfigShowCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "participants: %v\n", cfg.ParticipantIDs())
			fmt.Fprintf(out, "timezone:     %s\n", cfg.Household.Timezone)
			fmt.Fprintf(out, "database:     %s\n", cfg.Database.Driver)
			fmt.Fprintf(out, "listen:       %s\n", cfg.Server.Addr)
			fmt.Fprintf(out, "reminders:    %t (lead %s, every %s)\n", cfg.Reminders.Enabled, cfg.Reminders.Lead, cfg.Reminders.PollInterval)
			return cfg.Validate()
		},
	}
}
