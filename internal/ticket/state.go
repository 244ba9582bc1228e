package ticket

import "time"

// ProgressState is the inferred workflow state of a ticket. States are
// totally ordered by workflow progression, though re-inference may assign
// any state regardless of the previous one.
type ProgressState string

const (
	StateBacklog    ProgressState = "Backlog"
	StateReady      ProgressState = "Ready"
	StateInProgress ProgressState = "In Progress"
	StateInReview   ProgressState = "In Review"
	StateDone       ProgressState = "Done"
)

// States lists all progress states in workflow order.
var States = []ProgressState{StateBacklog, StateReady, StateInProgress, StateInReview, StateDone}

// Order returns the position of the state in the workflow progression,
// or -1 for an unknown state.
func (s ProgressState) Order() int {
	for i, state := range States {
		if s == state {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the known progress states.
func (s ProgressState) Valid() bool {
	return s.Order() >= 0
}

// StateTransition records one inference outcome in a ticket's state history.
// From is nil for the first inference.
type StateTransition struct {
	From *ProgressState `json:"from"`
	To   ProgressState  `json:"to"`
	At   time.Time      `json:"at"`
}
