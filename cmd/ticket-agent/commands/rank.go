package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticket-agent/internal/ranking"
	"ticket-agent/internal/store"
	"ticket-agent/internal/ticket"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank open tickets with explanations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRepo(); err != nil {
			return err
		}

		ctx := cmd.Context()
		tickets, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		engine := ranking.NewEngine(cfg.Scoring)
		result, err := engine.Rank(ctx, tickets, time.Now().UTC())
		if err != nil {
			return err
		}

		printRanking(result)
		return nil
	},
}

// loadSnapshot loads every stored ticket of the configured repo. The engine
// decides which ones enter the ranking.
func loadSnapshot(ctx context.Context) ([]ticket.Ticket, error) {
	if err := requireDatabase(); err != nil {
		return nil, err
	}

	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tickets, err := db.ListTickets(ctx, cfg.RepoIdentifier(), "")
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, fmt.Errorf("no tickets stored for %s; run `ticket-agent sync` first", cfg.RepoIdentifier())
	}
	return tickets, nil
}

func printRanking(result *ranking.Result) {
	header := color.New(color.Bold)
	header.Printf("%-4s %-28s %8s  %-12s %10s  %s\n", "#", "TICKET", "SCORE", "STATE", "BOUNTY", "TOP SIGNALS")

	for _, rt := range result.Ranked {
		fmt.Printf("%-4d %-28s %8.3f  %-12s %10.2f  %s\n",
			rt.Position, rt.TicketID, rt.FinalScore, rt.State, rt.Bounty.Value, topSignals(&rt))
		if debug {
			printBreakdown(&rt)
		}
	}

	fmt.Printf("\n%d tickets ranked, %d skipped\n", len(result.Ranked), len(result.Skipped))
	for _, skipped := range result.Skipped {
		color.Yellow("  skipped %s: %s", skipped.TicketID, skipped.Reason)
	}
	for _, warning := range result.Warnings {
		color.Yellow("  warning: %s", warning)
	}
}

func topSignals(rt *ranking.RankedTicket) string {
	components := rt.Breakdown.Components()
	return fmt.Sprintf("%s %.3f, %s %.3f",
		components[0].Signal, components[0].Contribution,
		components[1].Signal, components[1].Contribution)
}

func printBreakdown(rt *ranking.RankedTicket) {
	data, err := json.MarshalIndent(rt.Breakdown, "     ", "  ")
	if err != nil {
		return
	}
	fmt.Printf("     %s\n", data)
	fmt.Printf("     state: %s (%s)\n", rt.State, rt.StateExplanation)
	fmt.Printf("     bounty: %s\n", rt.Bounty.Explanation)
}

func init() {
	rootCmd.AddCommand(rankCmd)
}
