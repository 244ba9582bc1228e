package scoring

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"ticket-agent/internal/ticket"
)

// Inference is the outcome of one state-inference pass over a ticket.
// History is a fresh slice: the caller's stored ticket is never mutated,
// so the inference stays a pure pass over the snapshot.
type Inference struct {
	State       ticket.ProgressState
	Explanation string
	Transition  ticket.StateTransition
	History     []ticket.StateTransition
}

// InferState maps a ticket's raw fields to a ProgressState. The heuristics
// run in fixed priority order; the first match wins:
//
//  1. closed status            -> Done
//  2. assignee + review signal -> In Review
//  3. assignee                 -> In Progress
//  4. "ready" label, no assignee -> Ready
//  5. otherwise                -> Backlog
func InferState(t *ticket.Ticket, now time.Time) Inference {
	state, explanation := inferState(t)

	var from *ticket.ProgressState
	if t.InferredState != "" {
		prev := t.InferredState
		from = &prev
	}
	transition := ticket.StateTransition{From: from, To: state, At: now}

	history := slices.Clone(t.StateHistory)
	history = append(history, transition)

	return Inference{
		State:       state,
		Explanation: explanation,
		Transition:  transition,
		History:     history,
	}
}

func inferState(t *ticket.Ticket) (ticket.ProgressState, string) {
	if t.Status == ticket.StatusClosed {
		return ticket.StateDone, "ticket is closed"
	}

	if t.HasAssignee() {
		if hasReviewLabel(t) {
			return ticket.StateInReview, "assigned with a review label"
		}
		if pr, ok := readyPR(t); ok {
			return ticket.StateInReview, fmt.Sprintf("assigned with PR #%d ready for review", pr.Number)
		}
		return ticket.StateInProgress, fmt.Sprintf("assigned to %s", strings.Join(t.Assignees, ", "))
	}

	if hasReadyLabel(t) {
		return ticket.StateReady, "carries a ready label and is unassigned"
	}

	return ticket.StateBacklog, "no assignee or workflow label"
}

func hasReviewLabel(t *ticket.Ticket) bool {
	for _, label := range t.Labels {
		if strings.Contains(strings.ToLower(label), "review") {
			return true
		}
	}
	return false
}

func hasReadyLabel(t *ticket.Ticket) bool {
	for _, label := range t.Labels {
		if strings.Contains(strings.ToLower(label), "ready") {
			return true
		}
	}
	return false
}

func readyPR(t *ticket.Ticket) (ticket.LinkedPR, bool) {
	for _, pr := range t.LinkedPRs {
		if pr.ReadyForReview() {
			return pr, true
		}
	}
	return ticket.LinkedPR{}, false
}
