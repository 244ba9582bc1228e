package commands

import (
	"fmt"

	"ticket-agent/internal/config"
	"ticket-agent/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	debug   bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "ticket-agent",
	Short: "ticket-agent ranks a GitHub issue backlog with explainable scores",
	Long: `ticket-agent syncs GitHub issues into a local Postgres database, ranks the
open backlog with an explainable multi-factor score, infers workflow states,
recommends bounties, and simulates how alternate scoring weights reorder
the backlog.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("ticket-agent starting")
		return nil
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print full scoring inputs and breakdowns")
}

// requireRepo guards commands that need a configured repository.
func requireRepo() error {
	if cfg.Owner == "" || cfg.Repo == "" {
		return fmt.Errorf("no repository configured; set TICKET_REPO=owner/repo")
	}
	return nil
}

// requireDatabase guards commands that need the ticket store.
func requireDatabase() error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("no database configured; set DATABASE_URL")
	}
	return nil
}
