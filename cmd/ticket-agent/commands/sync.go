package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticket-agent/internal/github"
	"ticket-agent/internal/scoring"
	"ticket-agent/internal/store"
	"ticket-agent/internal/ticket"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var syncState string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync GitHub issues into the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRepo(); err != nil {
			return err
		}
		if err := requireDatabase(); err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}

		client := github.NewClient(cfg.GitHub)
		synced, err := syncRepo(ctx, client, db)
		if err != nil {
			return err
		}

		fmt.Printf("Synced %d tickets from %s\n", synced, cfg.RepoIdentifier())
		return nil
	},
}

func syncRepo(ctx context.Context, client github.Client, db *store.Store) (int, error) {
	const perPage = 100
	now := time.Now().UTC()
	synced := 0

	for page := 1; ; page++ {
		issues, err := client.ListIssues(ctx, cfg.Owner, cfg.Repo, syncState, page, perPage)
		if err != nil {
			return synced, fmt.Errorf("failed to list issues (page %d): %w", page, err)
		}
		if len(issues) == 0 {
			break
		}

		for _, issue := range issues {
			// The issues listing includes pull requests; tickets are issues only.
			if issue.IsPullRequest() {
				continue
			}

			t, err := buildTicket(ctx, client, db, issue, now)
			if err != nil {
				log.Warn().Err(err).Int("issue", issue.Number).Msg("Skipping issue during sync")
				continue
			}

			if err := db.UpsertTicket(ctx, t); err != nil {
				return synced, err
			}
			synced++
		}

		if len(issues) < perPage {
			break
		}
	}

	log.Info().Int("synced", synced).Str("repo", cfg.RepoIdentifier()).Msg("Sync complete")
	return synced, nil
}

func buildTicket(ctx context.Context, client github.Client, db *store.Store, issue github.IssueDTO, now time.Time) (*ticket.Ticket, error) {
	comments, err := client.ListComments(ctx, cfg.Owner, cfg.Repo, issue.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	timeline, err := client.ListTimeline(ctx, cfg.Owner, cfg.Repo, issue.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeline: %w", err)
	}

	prior, err := db.GetTicket(ctx, ticket.TicketID(cfg.Owner, cfg.Repo, issue.Number))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	t := github.MapIssue(cfg.Owner, cfg.Repo, issue, comments, timeline, prior)

	// The sync path is the one place that writes derived fields back onto
	// the stored ticket; the ranking core only ever reads them.
	inference := scoring.InferState(&t, now)
	t.InferredState = inference.State
	t.StateHistory = inference.History

	if sig, err := scoring.ExtractSignals(&t, now, cfg.Scoring); err == nil {
		if breakdown, _, err := scoring.Score(sig, cfg.Scoring.Weights); err == nil {
			t.ScoreBreakdown = breakdown.Contributions()
		}
	}

	return &t, nil
}

func init() {
	syncCmd.Flags().StringVar(&syncState, "state", "all", "issue state to sync: open, closed or all")
	rootCmd.AddCommand(syncCmd)
}
