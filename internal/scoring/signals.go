package scoring

import (
	"math"
	"strings"
	"time"

	"ticket-agent/internal/ticket"
)

// Recognized signal names.
const (
	SignalRecency    = "recency"
	SignalEngagement = "engagement"
	SignalLinkage    = "linkage"
	SignalLabels     = "labels"
)

// KnownSignals lists every recognized signal in canonical order.
var KnownSignals = []string{SignalRecency, SignalEngagement, SignalLinkage, SignalLabels}

// Signals holds the normalized [0,1] feature values extracted from one
// ticket. Higher is more urgent/valuable.
type Signals struct {
	Recency    float64 `json:"recency"`
	Engagement float64 `json:"engagement"`
	Linkage    float64 `json:"linkage"`
	Labels     float64 `json:"labels"`
}

// Value returns the signal by name.
func (s Signals) Value(name string) (float64, bool) {
	switch name {
	case SignalRecency:
		return s.Recency, true
	case SignalEngagement:
		return s.Engagement, true
	case SignalLinkage:
		return s.Linkage, true
	case SignalLabels:
		return s.Labels, true
	}
	return 0, false
}

// ExtractSignals derives the normalized signals for one ticket at the given
// time. The ticket is validated first; a ticket violating the timestamp or
// counter invariants yields an InvalidTicketError, never clamped values.
func ExtractSignals(t *ticket.Ticket, now time.Time, cfg *Config) (Signals, error) {
	if err := t.Validate(); err != nil {
		return Signals{}, err
	}
	return Signals{
		Recency:    recencySignal(t, now, cfg.Recency),
		Engagement: engagementSignal(t, cfg.Engagement),
		Linkage:    linkageSignal(t),
		Labels:     labelSignal(t, cfg.Labels),
	}, nil
}

// recencySignal decays exponentially with the time since last activity.
// Half-life and horizon come from policy; beyond the horizon the signal
// floors at 0 so ancient tickets cannot cling to residual urgency.
func recencySignal(t *ticket.Ticket, now time.Time, cfg RecencyConfig) float64 {
	ageDays := now.Sub(t.LastActivityAt).Hours() / 24
	if ageDays <= 0 {
		return 1
	}
	if ageDays >= cfg.HorizonDays {
		return 0
	}
	return math.Exp2(-ageDays / cfg.HalfLifeDays)
}

// engagementSignal grows logarithmically in comments+reactions so a single
// loud ticket cannot dominate the backlog, saturating at 1.
func engagementSignal(t *ticket.Ticket, cfg EngagementConfig) float64 {
	total := float64(t.CommentCount + t.ReactionsCount)
	if total <= 0 {
		return 0
	}
	v := math.Log1p(total) / math.Log1p(cfg.Saturation)
	return math.Min(v, 1)
}

// linkageSignal rewards linked pull requests. Any linked PR signals active
// work, so one link already yields a floor of 0.5; further links push the
// value toward 1.
func linkageSignal(t *ticket.Ticket) float64 {
	n := len(t.LinkedPRs)
	if n == 0 {
		return 0
	}
	return math.Min(0.5+0.125*float64(n-1), 1)
}

// labelSignal sums the configured label weights, clipped to [0,1].
// Unknown labels contribute nothing.
func labelSignal(t *ticket.Ticket, table map[string]float64) float64 {
	var sum float64
	for _, label := range t.Labels {
		sum += table[strings.ToLower(label)]
	}
	return math.Max(0, math.Min(sum, 1))
}
