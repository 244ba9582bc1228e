package ranking

import (
	"time"

	"ticket-agent/internal/scoring"
	"ticket-agent/internal/ticket"
)

// RankedTicket is one entry of a ranking pass. Immutable once produced;
// a new pass (or simulation) builds a disjoint new collection.
type RankedTicket struct {
	Position         int                          `json:"position"`
	TicketID         string                       `json:"ticket_id"`
	Title            string                       `json:"title"`
	FinalScore       float64                      `json:"final_score"`
	Breakdown        scoring.Breakdown            `json:"score_breakdown"`
	State            ticket.ProgressState         `json:"inferred_state"`
	StateExplanation string                       `json:"state_explanation"`
	StateHistory     []ticket.StateTransition     `json:"state_history,omitempty"`
	Bounty           scoring.BountyRecommendation `json:"bounty"`
	Explanation      string                       `json:"explanation"`
	CreatedAt        time.Time                    `json:"created_at"`
}

// SkippedTicket records a ticket excluded from a ranking pass and why.
type SkippedTicket struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// Result is the output of one ranking pass: positions are 1-based and
// contiguous, skipped tickets carry their exclusion reasons, and warnings
// hold non-fatal diagnostics such as unknown weight-vector signals.
type Result struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Weights     map[string]float64 `json:"weights"`
	Ranked      []RankedTicket     `json:"ranked"`
	Skipped     []SkippedTicket    `json:"skipped,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// Ticket looks up a ranked ticket by id within this pass.
func (r *Result) Ticket(id string) (*RankedTicket, bool) {
	for i := range r.Ranked {
		if r.Ranked[i].TicketID == id {
			return &r.Ranked[i], true
		}
	}
	return nil, false
}

// SimulationRun is one alternate-weight ranking compared against a baseline.
// Deltas maps ticket id to baseline position minus simulated position, so a
// positive delta means the ticket moved up the backlog.
type SimulationRun struct {
	Weights map[string]float64 `json:"weights"`
	Result  *Result            `json:"result"`
	Deltas  map[string]int     `json:"position_deltas"`
}

// Simulation is the outcome of a what-if pass: the baseline ranking plus one
// run per alternate weight configuration, none of them sharing state.
type Simulation struct {
	Baseline *Result         `json:"baseline"`
	Runs     []SimulationRun `json:"runs"`
}
