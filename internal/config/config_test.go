package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ticket-agent/internal/scoring"
)

func setBaseEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	t.Setenv("TICKET_REPO", "acme/widgets")
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("DATABASE_URL", "postgres://localhost/tickets")
	t.Setenv("SCORING_CONFIG", "")
	os.Unsetenv("SCORING_CONFIG")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Owner != "acme" || cfg.Repo != "widgets" {
		t.Errorf("Expected acme/widgets, got %s/%s", cfg.Owner, cfg.Repo)
	}
	if cfg.RepoIdentifier() != "acme/widgets" {
		t.Errorf("Unexpected repo identifier %q", cfg.RepoIdentifier())
	}
	if cfg.GitHub.Token != "test-token" {
		t.Errorf("Expected token from env, got %q", cfg.GitHub.Token)
	}
	if cfg.Scoring == nil {
		t.Fatal("Expected a scoring config")
	}
	if cfg.Scoring.Weights[scoring.SignalRecency] != 1.0 {
		t.Errorf("Expected default recency weight 1.0, got %f", cfg.Scoring.Weights[scoring.SignalRecency])
	}
}

func TestLoad_RejectsMalformedRepo(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TICKET_REPO", "not-a-repo")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for malformed TICKET_REPO")
	}
}

func TestLoad_ScoringPolicyOverlay(t *testing.T) {
	dir := setBaseEnv(t)

	policy := `
[weights]
recency = 2.5
engagement = 1.0
linkage = 0.8
labels = 1.2

[bounty]
base_rate = 100.0
`
	path := filepath.Join(dir, "scoring.toml")
	if err := os.WriteFile(path, []byte(policy), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Scoring.Weights[scoring.SignalRecency] != 2.5 {
		t.Errorf("Expected overridden recency weight 2.5, got %f", cfg.Scoring.Weights[scoring.SignalRecency])
	}
	if cfg.Scoring.Bounty.BaseRate != 100 {
		t.Errorf("Expected overridden base rate 100, got %f", cfg.Scoring.Bounty.BaseRate)
	}
	// Untouched sections keep their defaults.
	if cfg.Scoring.Recency.HalfLifeDays != 7 {
		t.Errorf("Expected default half-life 7, got %f", cfg.Scoring.Recency.HalfLifeDays)
	}
}

func TestLoad_RejectsNegativePolicyWeight(t *testing.T) {
	dir := setBaseEnv(t)

	policy := `
[weights]
recency = -1.0
`
	if err := os.WriteFile(filepath.Join(dir, "scoring.toml"), []byte(policy), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for negative weight in policy file")
	}
	var invalid *scoring.InvalidWeightError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidWeightError, got %T: %v", err, err)
	}
}

func TestLoadWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alt.toml")

	content := `
[weights]
recency = 0.0
labels = 4.0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	weights, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if weights["labels"] != 4.0 || weights["recency"] != 0.0 {
		t.Errorf("Unexpected weights: %v", weights)
	}
}

func TestLoadWeights_RejectsEmptyAndInvalid(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.toml")
	if err := os.WriteFile(empty, []byte("# nothing here\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWeights(empty); err == nil {
		t.Error("Expected error for a weight file without a [weights] table")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[weights]\nrecency = -3.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWeights(bad); err == nil {
		t.Error("Expected error for a negative weight")
	}
}
