package scoring

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestScore_BreakdownSumsToFinalScore(t *testing.T) {
	sig := Signals{Recency: 0.7, Engagement: 0.3, Linkage: 0.5, Labels: 0.9}
	weights := map[string]float64{
		SignalRecency:    1.0,
		SignalEngagement: 2.5,
		SignalLinkage:    0.8,
		SignalLabels:     1.2,
	}

	b, warnings, err := Score(sig, weights)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}

	var sum float64
	for _, c := range b.Components() {
		sum += c.Contribution
	}
	if math.Abs(sum-b.FinalScore) > 1e-9 {
		t.Errorf("Expected contributions to sum to final score, got %f vs %f", sum, b.FinalScore)
	}

	want := 0.7*1.0 + 0.3*2.5 + 0.5*0.8 + 0.9*1.2
	if math.Abs(b.FinalScore-want) > 1e-9 {
		t.Errorf("Expected final score %f, got %f", want, b.FinalScore)
	}
}

func TestScore_ZeroWeightsYieldZero(t *testing.T) {
	sig := Signals{Recency: 1, Engagement: 1, Linkage: 1, Labels: 1}
	weights := map[string]float64{
		SignalRecency:    0,
		SignalEngagement: 0,
		SignalLinkage:    0,
		SignalLabels:     0,
	}

	b, _, err := Score(sig, weights)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.FinalScore != 0 {
		t.Errorf("Expected final score 0, got %f", b.FinalScore)
	}
}

func TestScore_MissingWeightMeansZeroContribution(t *testing.T) {
	sig := Signals{Recency: 1, Engagement: 1, Linkage: 1, Labels: 1}
	weights := map[string]float64{SignalRecency: 2}

	b, _, err := Score(sig, weights)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.FinalScore != 2 {
		t.Errorf("Expected only recency to contribute, got %f", b.FinalScore)
	}
	if b.Engagement.Contribution != 0 {
		t.Errorf("Expected zero engagement contribution, got %f", b.Engagement.Contribution)
	}
}

func TestScore_UnknownSignalWarnsButSucceeds(t *testing.T) {
	sig := Signals{Recency: 0.5}
	weights := map[string]float64{
		SignalRecency: 1,
		"velocity":    3,
	}

	b, warnings, err := Score(sig, weights)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "velocity") {
		t.Fatalf("Expected one warning naming velocity, got %v", warnings)
	}
	if len(b.Ignored) != 1 || b.Ignored[0] != "velocity" {
		t.Errorf("Expected velocity in ignored bucket, got %v", b.Ignored)
	}
	if b.FinalScore != 0.5 {
		t.Errorf("Expected unknown signal to contribute nothing, got %f", b.FinalScore)
	}
}

func TestScore_RejectsNegativeWeight(t *testing.T) {
	_, _, err := Score(Signals{}, map[string]float64{SignalRecency: -0.1})
	if err == nil {
		t.Fatal("Expected error for negative weight")
	}
	var invalid *InvalidWeightError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidWeightError, got %T", err)
	}
	if invalid.Signal != SignalRecency {
		t.Errorf("Expected signal name in error, got %q", invalid.Signal)
	}
}

func TestScore_RejectsNonFiniteWeight(t *testing.T) {
	for _, w := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, _, err := Score(Signals{}, map[string]float64{SignalLabels: w}); err == nil {
			t.Errorf("Expected error for weight %v", w)
		}
	}
}

func TestComponents_OrderedByAbsoluteContribution(t *testing.T) {
	sig := Signals{Recency: 0.1, Engagement: 0.9, Linkage: 0.5, Labels: 0.3}
	weights := map[string]float64{
		SignalRecency:    1,
		SignalEngagement: 1,
		SignalLinkage:    1,
		SignalLabels:     1,
	}

	b, _, err := Score(sig, weights)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	components := b.Components()
	for i := 1; i < len(components); i++ {
		if components[i-1].Contribution < components[i].Contribution {
			t.Errorf("Components out of order at %d: %v", i, components)
		}
	}
	if components[0].Signal != SignalEngagement {
		t.Errorf("Expected engagement to dominate, got %q", components[0].Signal)
	}
	if b.Dominant().Signal != SignalEngagement {
		t.Errorf("Expected Dominant to return engagement, got %q", b.Dominant().Signal)
	}
}

func TestComponents_TieBrokenBySignalName(t *testing.T) {
	sig := Signals{Recency: 0.5, Engagement: 0.5, Linkage: 0.5, Labels: 0.5}
	weights := map[string]float64{
		SignalRecency:    1,
		SignalEngagement: 1,
		SignalLinkage:    1,
		SignalLabels:     1,
	}

	b, _, err := Score(sig, weights)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	components := b.Components()
	want := []string{SignalEngagement, SignalLabels, SignalLinkage, SignalRecency}
	for i, c := range components {
		if c.Signal != want[i] {
			t.Errorf("Position %d: expected %q, got %q", i, want[i], c.Signal)
		}
	}
}

func TestValidateWeights_AllowsUnknownNames(t *testing.T) {
	// Unknown names are a warning at scoring time, not a validation failure.
	if err := ValidateWeights(map[string]float64{"velocity": 1}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Default config must validate, got %v", err)
	}
}

func TestConfigValidate_RejectsBadCurveParameters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Recency.HalfLifeDays = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero half-life")
	}

	cfg = DefaultConfig()
	cfg.Bounty.BaseRate = -5
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for negative base rate")
	}

	cfg = DefaultConfig()
	cfg.Labels["urgent"] = math.Inf(1)
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for non-finite label weight")
	}
}
