package scoring

import (
	"fmt"
	"sort"
)

// Component is one signal's share of a final score.
type Component struct {
	Signal       string  `json:"signal"`
	Raw          float64 `json:"raw"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Breakdown is the explainable decomposition of a final score. Each known
// signal has a fixed slot; weight-vector entries that match no known signal
// land in Ignored instead of silently disappearing.
type Breakdown struct {
	Recency    Component `json:"recency"`
	Engagement Component `json:"engagement"`
	Linkage    Component `json:"linkage"`
	Labels     Component `json:"labels"`
	Ignored    []string  `json:"ignored,omitempty"`
	FinalScore float64   `json:"final_score"`
}

// Components returns the four known components ordered by descending
// absolute contribution, ties broken by signal name for determinism.
func (b *Breakdown) Components() []Component {
	components := []Component{b.Recency, b.Engagement, b.Linkage, b.Labels}
	sort.Slice(components, func(i, j int) bool {
		ci, cj := components[i], components[j]
		ai, aj := abs(ci.Contribution), abs(cj.Contribution)
		if ai != aj {
			return ai > aj
		}
		return ci.Signal < cj.Signal
	})
	return components
}

// Dominant returns the component with the largest absolute contribution.
func (b *Breakdown) Dominant() Component {
	return b.Components()[0]
}

// Contributions flattens the breakdown to a signal-to-contribution map,
// the shape persisted with the ticket between syncs.
func (b *Breakdown) Contributions() map[string]float64 {
	return map[string]float64{
		SignalRecency:    b.Recency.Contribution,
		SignalEngagement: b.Engagement.Contribution,
		SignalLinkage:    b.Linkage.Contribution,
		SignalLabels:     b.Labels.Contribution,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Score combines extracted signals with a weight vector into a final score
// and its breakdown. Signals absent from the weight vector get weight 0;
// weight entries naming no known signal are collected as warnings, not
// errors. A negative or non-finite weight aborts with InvalidWeightError.
func Score(sig Signals, weights map[string]float64) (Breakdown, []string, error) {
	if err := ValidateWeights(weights); err != nil {
		return Breakdown{}, nil, err
	}

	component := func(signal string, raw float64) Component {
		w := weights[signal]
		return Component{Signal: signal, Raw: raw, Weight: w, Contribution: w * raw}
	}

	b := Breakdown{
		Recency:    component(SignalRecency, sig.Recency),
		Engagement: component(SignalEngagement, sig.Engagement),
		Linkage:    component(SignalLinkage, sig.Linkage),
		Labels:     component(SignalLabels, sig.Labels),
	}
	b.FinalScore = b.Recency.Contribution + b.Engagement.Contribution +
		b.Linkage.Contribution + b.Labels.Contribution

	var warnings []string
	for name := range weights {
		if _, ok := sig.Value(name); !ok {
			b.Ignored = append(b.Ignored, name)
		}
	}
	sort.Strings(b.Ignored)
	for _, name := range b.Ignored {
		warnings = append(warnings, fmt.Sprintf("unknown signal %q in weight configuration, ignored", name))
	}

	return b, warnings, nil
}
