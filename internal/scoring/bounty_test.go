package scoring

import (
	"math"
	"strings"
	"testing"
)

func scoredBreakdown(t *testing.T, sig Signals) Breakdown {
	t.Helper()
	b, _, err := Score(sig, DefaultConfig().Weights)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return b
}

func TestRecommendBounty_ValueFormula(t *testing.T) {
	cfg := DefaultConfig()
	sig := Signals{Recency: 0.5, Engagement: 0.5, Linkage: 0.5, Labels: 0.5}
	b := scoredBreakdown(t, sig)

	tk := openTicket("acme/widgets#40") // empty body, no labels: multiplier 1.0
	rec := RecommendBounty(&b, sig, &tk, cfg.Bounty)

	want := math.Round(cfg.Bounty.BaseRate*b.FinalScore*100) / 100
	if rec.Value != want {
		t.Errorf("Expected value %f, got %f", want, rec.Value)
	}
	if rec.Value < 0 {
		t.Error("Bounty must be non-negative")
	}
}

func TestRecommendBounty_BodyLengthRaisesMultiplier(t *testing.T) {
	cfg := DefaultConfig()
	sig := Signals{Recency: 0.5}
	b := scoredBreakdown(t, sig)

	short := openTicket("acme/widgets#41")
	long := openTicket("acme/widgets#42")
	long.Body = strings.Repeat("x", cfg.Bounty.BodyLengthRef) // full +0.5

	shortRec := RecommendBounty(&b, sig, &short, cfg.Bounty)
	longRec := RecommendBounty(&b, sig, &long, cfg.Bounty)

	if longRec.Value <= shortRec.Value {
		t.Errorf("Expected long body to raise the bounty: %f vs %f", longRec.Value, shortRec.Value)
	}
	wantRatio := 1.5
	if math.Abs(longRec.Value/shortRec.Value-wantRatio) > 0.01 {
		t.Errorf("Expected ratio ~%.1f, got %f", wantRatio, longRec.Value/shortRec.Value)
	}
}

func TestRecommendBounty_EpicLabelRaisesMultiplier(t *testing.T) {
	cfg := DefaultConfig()
	sig := Signals{Recency: 0.5}
	b := scoredBreakdown(t, sig)

	plain := openTicket("acme/widgets#43")
	epic := openTicket("acme/widgets#44")
	epic.Labels = []string{"Epic"}

	plainRec := RecommendBounty(&b, sig, &plain, cfg.Bounty)
	epicRec := RecommendBounty(&b, sig, &epic, cfg.Bounty)

	if epicRec.Value <= plainRec.Value {
		t.Errorf("Expected epic label to raise the bounty: %f vs %f", epicRec.Value, plainRec.Value)
	}
}

func TestRecommendBounty_ConfidenceBands(t *testing.T) {
	cfg := DefaultConfig()
	tk := openTicket("acme/widgets#45")

	cases := []struct {
		name string
		sig  Signals
		want Confidence
	}{
		{"rich data", Signals{Engagement: 0.8, Linkage: 0.9}, ConfidenceHigh},
		{"sparse data", Signals{Engagement: 0.0, Linkage: 0.0}, ConfidenceLow},
		{"partial data", Signals{Engagement: 0.8, Linkage: 0.0}, ConfidenceMedium},
		{"boundary", Signals{Engagement: 0.4, Linkage: 0.5}, ConfidenceHigh},
	}
	for _, c := range cases {
		b := scoredBreakdown(t, c.sig)
		rec := RecommendBounty(&b, c.sig, &tk, cfg.Bounty)
		if rec.Confidence != c.want {
			t.Errorf("%s: expected %q, got %q", c.name, c.want, rec.Confidence)
		}
	}
}

func TestRecommendBounty_ExplanationCitesDominantComponent(t *testing.T) {
	cfg := DefaultConfig()
	sig := Signals{Labels: 0.9, Recency: 0.1}
	b := scoredBreakdown(t, sig)
	tk := openTicket("acme/widgets#46")

	rec := RecommendBounty(&b, sig, &tk, cfg.Bounty)
	if !strings.Contains(rec.Explanation, SignalLabels) {
		t.Errorf("Expected explanation to cite labels, got %q", rec.Explanation)
	}
	if !strings.Contains(rec.Explanation, string(rec.Confidence)) {
		t.Errorf("Expected explanation to cite confidence, got %q", rec.Explanation)
	}
}

func TestRecommendBounty_ZeroScoreZeroValue(t *testing.T) {
	cfg := DefaultConfig()
	sig := Signals{}
	b := scoredBreakdown(t, sig)
	tk := openTicket("acme/widgets#47")

	rec := RecommendBounty(&b, sig, &tk, cfg.Bounty)
	if rec.Value != 0 {
		t.Errorf("Expected zero bounty for zero score, got %f", rec.Value)
	}
	if rec.Confidence != ConfidenceLow {
		t.Errorf("Expected low confidence with no data, got %q", rec.Confidence)
	}
}
