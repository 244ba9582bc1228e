package commands

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
	"time"

	"ticket-agent/internal/config"
	"ticket-agent/internal/ranking"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	simulateWeights     []string
	simulateWeightFiles []string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate how alternate scoring weights reorder the backlog",
	Long: `Re-ranks the stored snapshot under one or more alternate weight
configurations and shows per-ticket position changes against the baseline.

Overrides are applied on top of the active weight vector:

  ticket-agent simulate --weight recency=2.0 --weight labels=0.5

Each --weights-file adds a separate configuration from a TOML [weights] table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRepo(); err != nil {
			return err
		}

		alternates, err := buildAlternates()
		if err != nil {
			return err
		}
		if len(alternates) == 0 {
			return fmt.Errorf("nothing to simulate; pass --weight or --weights-file")
		}

		ctx := cmd.Context()
		tickets, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		engine := ranking.NewEngine(cfg.Scoring)
		sim, err := engine.Simulate(ctx, tickets, time.Now().UTC(), alternates)
		if err != nil {
			return err
		}

		printSimulation(sim)
		return nil
	},
}

func buildAlternates() ([]map[string]float64, error) {
	var alternates []map[string]float64

	if len(simulateWeights) > 0 {
		weights := maps.Clone(cfg.Scoring.Weights)
		for _, override := range simulateWeights {
			name, value, ok := strings.Cut(override, "=")
			if !ok {
				return nil, fmt.Errorf("invalid --weight %q, want name=value", override)
			}
			w, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid --weight value %q: %w", value, err)
			}
			weights[strings.TrimSpace(name)] = w
		}
		alternates = append(alternates, weights)
	}

	for _, path := range simulateWeightFiles {
		weights, err := config.LoadWeights(path)
		if err != nil {
			return nil, err
		}
		alternates = append(alternates, weights)
	}

	return alternates, nil
}

func printSimulation(sim *ranking.Simulation) {
	bold := color.New(color.Bold)

	for i, run := range sim.Runs {
		bold.Printf("Simulation %d: %s\n", i+1, formatWeights(run.Weights))
		bold.Printf("%-4s %-6s %-28s %8s  %s\n", "#", "Δ", "TICKET", "SCORE", "WAS")

		for _, rt := range run.Result.Ranked {
			// Deltas hold baseline minus simulated position, so the baseline
			// position is recovered by adding the delta back.
			delta := run.Deltas[rt.TicketID]
			was := rt.Position + delta
			fmt.Printf("%-4d %-6s %-28s %8.3f  #%d\n",
				rt.Position, formatDelta(delta), rt.TicketID, rt.FinalScore, was)
			if debug {
				printBreakdown(&rt)
			}
		}

		for _, warning := range run.Result.Warnings {
			color.Yellow("  warning: %s", warning)
		}
		fmt.Println()
	}
}

func formatDelta(delta int) string {
	switch {
	case delta > 0:
		return color.GreenString("+%d", delta)
	case delta < 0:
		return color.RedString("%d", delta)
	default:
		return "="
	}
}

func formatWeights(weights map[string]float64) string {
	var parts []string
	for _, signal := range sortedKeys(weights) {
		parts = append(parts, fmt.Sprintf("%s=%.2f", signal, weights[signal]))
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	simulateCmd.Flags().StringArrayVar(&simulateWeights, "weight", nil, "override a signal weight as name=value (repeatable)")
	simulateCmd.Flags().StringArrayVar(&simulateWeightFiles, "weights-file", nil, "TOML file with a [weights] table (repeatable)")
	rootCmd.AddCommand(simulateCmd)
}
