package commands

import (
	"fmt"
	"time"

	"ticket-agent/internal/ranking"
	"ticket-agent/internal/store"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var ticketCmd = &cobra.Command{
	Use:   "ticket <id>",
	Short: "Show a ticket's score, state and bounty by id",
	Long: `Scores a single stored ticket on demand, including closed tickets that are
excluded from the default ranking. The id is the canonical owner/repo#number
form, e.g. "acme/widgets#42".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireDatabase(); err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		t, err := db.GetTicket(ctx, args[0])
		if err != nil {
			return err
		}

		engine := ranking.NewEngine(cfg.Scoring)
		rt, warnings, err := engine.ScoreOne(*t, time.Now().UTC())
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		bold.Printf("%s: %s\n", rt.TicketID, t.Title)
		fmt.Printf("status: %s   state: %s (%s)\n", t.Status, rt.State, rt.StateExplanation)
		fmt.Printf("score:  %.3f\n", rt.FinalScore)
		fmt.Printf("bounty: %.2f (%s)\n", rt.Bounty.Value, rt.Bounty.Confidence)
		fmt.Printf("%s\n", rt.Explanation)

		if debug {
			fmt.Println()
			printBreakdown(rt)
			if len(t.StateHistory) > 0 {
				fmt.Println("     history:")
				for _, tr := range t.StateHistory {
					from := "(none)"
					if tr.From != nil {
						from = string(*tr.From)
					}
					fmt.Printf("       %s -> %s at %s\n", from, tr.To, tr.At.Format(time.RFC3339))
				}
			}
		}

		for _, warning := range warnings {
			color.Yellow("warning: %s", warning)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ticketCmd)
}
