package ranking

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"sort"
	"time"

	"ticket-agent/internal/scoring"
	"ticket-agent/internal/ticket"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Engine turns a ticket snapshot into a deterministic ranked backlog.
// One engine is safe for concurrent use: every pass operates on its own
// derived structures and never mutates the input tickets.
type Engine struct {
	cfg     *scoring.Config
	workers int
}

// NewEngine creates a ranking engine for the given scoring policy.
func NewEngine(cfg *scoring.Config) *Engine {
	return &Engine{cfg: cfg, workers: runtime.NumCPU()}
}

// Rank scores the open tickets of the snapshot under the policy's weight
// vector and returns them ordered by descending score. Closed tickets are
// excluded from the ranking; malformed tickets are skipped with a reason
// instead of failing the batch. An invalid weight vector is fatal.
func (e *Engine) Rank(ctx context.Context, tickets []ticket.Ticket, now time.Time) (*Result, error) {
	return e.rankWith(ctx, tickets, now, e.cfg.Weights)
}

// Simulate re-ranks the same snapshot once per alternate weight configuration
// and reports per-ticket position deltas against the baseline. Neither the
// input collection nor the baseline result is mutated, so baselines produced
// earlier stay valid for diffing.
func (e *Engine) Simulate(ctx context.Context, tickets []ticket.Ticket, now time.Time, alternates []map[string]float64) (*Simulation, error) {
	baseline, err := e.rankWith(ctx, tickets, now, e.cfg.Weights)
	if err != nil {
		return nil, err
	}

	sim := &Simulation{Baseline: baseline}
	for _, weights := range alternates {
		result, err := e.rankWith(ctx, tickets, now, weights)
		if err != nil {
			return nil, err
		}

		deltas := make(map[string]int, len(result.Ranked))
		for _, rt := range result.Ranked {
			if base, ok := baseline.Ticket(rt.TicketID); ok {
				deltas[rt.TicketID] = base.Position - rt.Position
			}
		}
		sim.Runs = append(sim.Runs, SimulationRun{
			Weights: maps.Clone(weights),
			Result:  result,
			Deltas:  deltas,
		})
	}
	return sim, nil
}

// ScoreOne scores a single ticket on demand, regardless of status, for the
// lookup path. Position is 0 because the ticket is scored outside a ranking.
func (e *Engine) ScoreOne(t ticket.Ticket, now time.Time) (*RankedTicket, []string, error) {
	if err := scoring.ValidateWeights(e.cfg.Weights); err != nil {
		return nil, nil, err
	}
	rt, warnings, err := e.scoreTicket(&t, now, e.cfg.Weights)
	if err != nil {
		return nil, nil, err
	}
	return rt, warnings, nil
}

func (e *Engine) rankWith(ctx context.Context, tickets []ticket.Ticket, now time.Time, weights map[string]float64) (*Result, error) {
	// Weight validation is fatal and happens before any ticket is scored.
	if err := scoring.ValidateWeights(weights); err != nil {
		return nil, err
	}

	type outcome struct {
		ranked   *RankedTicket
		skipped  *SkippedTicket
		warnings []string
	}
	outcomes := make([]outcome, len(tickets))

	// Per-ticket scoring is embarrassingly parallel: the snapshot is
	// read-only and each worker writes only its own slot.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range tickets {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := &tickets[i]
			rt, warnings, err := e.scoreTicket(t, now, weights)
			if err != nil {
				var reason string
				if invalid, ok := err.(*ticket.InvalidTicketError); ok {
					reason = invalid.Reason
				} else {
					reason = err.Error()
				}
				outcomes[i] = outcome{skipped: &SkippedTicket{TicketID: skippedID(t), Reason: reason}}
				return nil
			}
			outcomes[i] = outcome{ranked: rt, warnings: warnings}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		GeneratedAt: now,
		Weights:     maps.Clone(weights),
	}
	seenWarnings := make(map[string]bool)
	closedCount := 0
	for i := range outcomes {
		o := outcomes[i]
		if o.skipped != nil {
			result.Skipped = append(result.Skipped, *o.skipped)
			continue
		}
		for _, w := range o.warnings {
			if !seenWarnings[w] {
				seenWarnings[w] = true
				result.Warnings = append(result.Warnings, w)
			}
		}
		if tickets[i].Status == ticket.StatusClosed {
			closedCount++
			continue
		}
		result.Ranked = append(result.Ranked, *o.ranked)
	}
	sort.Strings(result.Warnings)

	// Total order: score desc, then older created_at first, then id lexical.
	sort.Slice(result.Ranked, func(i, j int) bool {
		a, b := result.Ranked[i], result.Ranked[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.TicketID < b.TicketID
	})
	for i := range result.Ranked {
		result.Ranked[i].Position = i + 1
	}

	log.Debug().
		Int("ranked", len(result.Ranked)).
		Int("skipped", len(result.Skipped)).
		Int("closed", closedCount).
		Time("now", now).
		Msg("Ranking pass complete")

	return result, nil
}

func (e *Engine) scoreTicket(t *ticket.Ticket, now time.Time, weights map[string]float64) (*RankedTicket, []string, error) {
	sig, err := scoring.ExtractSignals(t, now, e.cfg)
	if err != nil {
		return nil, nil, err
	}

	inference := scoring.InferState(t, now)

	breakdown, warnings, err := scoring.Score(sig, weights)
	if err != nil {
		return nil, nil, err
	}

	bounty := scoring.RecommendBounty(&breakdown, sig, t, e.cfg.Bounty)

	return &RankedTicket{
		TicketID:         t.ID,
		Title:            t.Title,
		FinalScore:       breakdown.FinalScore,
		Breakdown:        breakdown,
		State:            inference.State,
		StateExplanation: inference.Explanation,
		StateHistory:     inference.History,
		Bounty:           bounty,
		Explanation:      explain(t, &breakdown),
		CreatedAt:        t.CreatedAt,
	}, warnings, nil
}

// explain summarizes the top-2 contributing components in one line.
func explain(t *ticket.Ticket, b *scoring.Breakdown) string {
	components := b.Components()
	first, second := components[0], components[1]
	return fmt.Sprintf("%s scores %.3f, driven by %s (%.3f) and %s (%.3f)",
		t.ID, b.FinalScore,
		first.Signal, first.Contribution,
		second.Signal, second.Contribution)
}

func skippedID(t *ticket.Ticket) string {
	if t.ID != "" {
		return t.ID
	}
	return "(unknown)"
}
