package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds one scoring policy: the signal weight vector plus the tunable
// curve parameters behind each extractor and the bounty recommendation.
// The specific numeric curves are policy, not law; only monotonicity and
// boundedness of the resulting signals are guaranteed.
type Config struct {
	Weights    map[string]float64 `toml:"weights"`
	Recency    RecencyConfig      `toml:"recency"`
	Engagement EngagementConfig   `toml:"engagement"`
	Labels     map[string]float64 `toml:"labels"`
	Bounty     BountyConfig       `toml:"bounty"`
}

// RecencyConfig controls the activity decay curve.
type RecencyConfig struct {
	HalfLifeDays float64 `toml:"half_life_days" validate:"gt=0"`
	HorizonDays  float64 `toml:"horizon_days" validate:"gt=0"`
}

// EngagementConfig controls the saturation of the engagement signal.
// Saturation is the comment+reaction count at which the signal reaches 1.0.
type EngagementConfig struct {
	Saturation float64 `toml:"saturation" validate:"gt=0"`
}

// BountyConfig controls the bounty value formula and confidence thresholds.
type BountyConfig struct {
	BaseRate       float64  `toml:"base_rate" validate:"gte=0"`
	HighEngagement float64  `toml:"high_engagement" validate:"gte=0,lte=1"`
	HighLinkage    float64  `toml:"high_linkage" validate:"gte=0,lte=1"`
	SparseBelow    float64  `toml:"sparse_below" validate:"gte=0,lte=1"`
	EpicLabels     []string `toml:"epic_labels"`
	BodyLengthRef  int      `toml:"body_length_ref" validate:"gt=0"`
}

// DefaultConfig returns the built-in scoring policy.
func DefaultConfig() *Config {
	return &Config{
		Weights: map[string]float64{
			SignalRecency:    1.0,
			SignalEngagement: 1.0,
			SignalLinkage:    0.8,
			SignalLabels:     1.2,
		},
		Recency: RecencyConfig{
			HalfLifeDays: 7,
			HorizonDays:  90,
		},
		Engagement: EngagementConfig{
			Saturation: 50,
		},
		Labels: map[string]float64{
			"urgent":        1.0,
			"blocker":       0.9,
			"security":      0.9,
			"bug":           0.6,
			"enhancement":   0.3,
			"documentation": 0.15,
		},
		Bounty: BountyConfig{
			BaseRate:       200,
			HighEngagement: 0.4,
			HighLinkage:    0.5,
			SparseBelow:    0.05,
			EpicLabels:     []string{"epic", "large", "size/xl"},
			BodyLengthRef:  2000,
		},
	}
}

// InvalidWeightError reports a malformed weight configuration. It is fatal
// to an entire ranking call: no ticket is scored under a bad weight vector.
type InvalidWeightError struct {
	Signal string
	Weight float64
	Reason string
}

func (e *InvalidWeightError) Error() string {
	return fmt.Sprintf("invalid weight for signal %q (%v): %s", e.Signal, e.Weight, e.Reason)
}

// ValidateWeights rejects negative or non-finite weights. Unknown signal
// names are allowed here; they surface as warnings at scoring time.
func ValidateWeights(weights map[string]float64) error {
	for signal, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return &InvalidWeightError{Signal: signal, Weight: w, Reason: "weight must be finite"}
		}
		if w < 0 {
			return &InvalidWeightError{Signal: signal, Weight: w, Reason: "weight must be non-negative"}
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the whole policy: the weight vector, the label table and
// the struct-level bounds on every curve parameter.
func (c *Config) Validate() error {
	if err := ValidateWeights(c.Weights); err != nil {
		return err
	}
	for label, w := range c.Labels {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("invalid label weight for %q: must be finite", label)
		}
	}
	// Label matching is case-insensitive; fold policy keys to lower case once
	// so a TOML table with "Urgent" behaves the same as "urgent".
	for label, w := range c.Labels {
		if lower := strings.ToLower(label); lower != label {
			delete(c.Labels, label)
			c.Labels[lower] = w
		}
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid scoring config: %w", err)
	}
	return nil
}
