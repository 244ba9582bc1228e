package scoring

import (
	"fmt"
	"math"
	"strings"

	"ticket-agent/internal/ticket"
)

// Confidence is the qualitative reliability band of a bounty estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// BountyRecommendation is a suggested monetary value for a ticket, with a
// confidence band derived from data sparsity. Computed fresh per ranking
// pass and never persisted by the core.
type BountyRecommendation struct {
	Value       float64    `json:"value"`
	Confidence  Confidence `json:"confidence"`
	Explanation string     `json:"explanation"`
}

// RecommendBounty derives a bounty from the score breakdown and the raw
// engagement/linkage signals. Pure function of its inputs.
//
// value = base_rate * final_score * complexity_multiplier, where the
// multiplier grows with body length (up to +0.5) and epic-class labels
// (+0.5), so it spans [1.0, 2.0].
func RecommendBounty(b *Breakdown, sig Signals, t *ticket.Ticket, cfg BountyConfig) BountyRecommendation {
	multiplier := complexityMultiplier(t, cfg)
	value := math.Round(cfg.BaseRate*b.FinalScore*multiplier*100) / 100
	if value < 0 {
		value = 0
	}

	confidence, rationale := confidenceBand(sig, cfg)
	dominant := b.Dominant()
	explanation := fmt.Sprintf(
		"Bounty of %.2f driven mainly by %s (%.2f of %.2f); %s confidence because %s.",
		value, dominant.Signal, dominant.Contribution, b.FinalScore, confidence, rationale,
	)

	return BountyRecommendation{Value: value, Confidence: confidence, Explanation: explanation}
}

func complexityMultiplier(t *ticket.Ticket, cfg BountyConfig) float64 {
	m := 1.0
	m += 0.5 * math.Min(float64(len(t.Body))/float64(cfg.BodyLengthRef), 1)
	if hasEpicLabel(t, cfg.EpicLabels) {
		m += 0.5
	}
	return m
}

func hasEpicLabel(t *ticket.Ticket, epicLabels []string) bool {
	for _, label := range t.Labels {
		lower := strings.ToLower(label)
		for _, epic := range epicLabels {
			if lower == epic {
				return true
			}
		}
	}
	return false
}

func confidenceBand(sig Signals, cfg BountyConfig) (Confidence, string) {
	switch {
	case sig.Engagement >= cfg.HighEngagement && sig.Linkage >= cfg.HighLinkage:
		return ConfidenceHigh, "engagement and linkage both provide strong evidence"
	case sig.Engagement < cfg.SparseBelow && sig.Linkage < cfg.SparseBelow:
		return ConfidenceLow, "engagement and linkage data is too sparse"
	default:
		return ConfidenceMedium, "only partial engagement or linkage evidence is available"
	}
}
