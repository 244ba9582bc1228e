package ticket

import (
	"fmt"
	"time"
)

// Status is the issue-tracker lifecycle status of a ticket.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// LinkedPR carries the detail of a pull request referencing a ticket.
type LinkedPR struct {
	Number int    `json:"number"`
	Title  string `json:"title,omitempty"`
	State  string `json:"state,omitempty"`
	Merged bool   `json:"merged,omitempty"`
	Draft  bool   `json:"draft,omitempty"`
}

// ReadyForReview reports whether the pull request is open and out of draft,
// i.e. someone has put work up for review against this ticket.
func (pr LinkedPR) ReadyForReview() bool {
	return pr.State == "open" && !pr.Draft
}

// Ticket is one unit of work synced from the issue tracker. The scoring and
// ranking core treats tickets as a read-only snapshot; only the sync path
// writes the optional derived fields (InferredState, ScoreBreakdown,
// StateHistory) back to the store.
type Ticket struct {
	ID             string     `json:"id"` // "owner/repo#number"
	RepoIdentifier string     `json:"repo_identifier"`
	IssueNumber    int        `json:"issue_number"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	Labels         []string   `json:"labels"`
	Assignees      []string   `json:"assignees"`
	Milestone      string     `json:"milestone,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CommentCount   int        `json:"comment_count"`
	ReactionsCount int        `json:"reactions_count"`
	LinkedPRs      []LinkedPR `json:"linked_prs"`
	Status         Status     `json:"status"`

	// Derived fields from a previous sync, if any.
	InferredState  ProgressState      `json:"inferred_state,omitempty"`
	ScoreBreakdown map[string]float64 `json:"score_breakdown,omitempty"`
	StateHistory   []StateTransition  `json:"state_history,omitempty"`
}

// TicketID builds the canonical ticket identifier for a repo issue.
func TicketID(owner, repo string, number int) string {
	return fmt.Sprintf("%s/%s#%d", owner, repo, number)
}

// InvalidTicketError reports a ticket that violates a field invariant.
// Such tickets are excluded from a ranking pass rather than failing the batch.
type InvalidTicketError struct {
	TicketID string
	Reason   string
}

func (e *InvalidTicketError) Error() string {
	return fmt.Sprintf("invalid ticket %s: %s", e.TicketID, e.Reason)
}

// Validate checks the structural invariants of a ticket. Corrupt timestamps
// or negative counters are reported, never silently clamped.
func (t *Ticket) Validate() error {
	if t.ID == "" {
		return &InvalidTicketError{TicketID: "(unknown)", Reason: "empty ticket id"}
	}
	if t.Status != StatusOpen && t.Status != StatusClosed {
		return &InvalidTicketError{TicketID: t.ID, Reason: fmt.Sprintf("unknown status %q", t.Status)}
	}
	if t.CreatedAt.IsZero() {
		return &InvalidTicketError{TicketID: t.ID, Reason: "missing created_at"}
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return &InvalidTicketError{TicketID: t.ID, Reason: "updated_at precedes created_at"}
	}
	if t.LastActivityAt.Before(t.UpdatedAt) {
		return &InvalidTicketError{TicketID: t.ID, Reason: "last_activity_at precedes updated_at"}
	}
	if t.CommentCount < 0 {
		return &InvalidTicketError{TicketID: t.ID, Reason: "negative comment_count"}
	}
	if t.ReactionsCount < 0 {
		return &InvalidTicketError{TicketID: t.ID, Reason: "negative reactions_count"}
	}
	return nil
}

// HasAssignee reports whether anyone is assigned to the ticket.
func (t *Ticket) HasAssignee() bool {
	return len(t.Assignees) > 0
}
