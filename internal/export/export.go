// Package export writes a ranking result to disk. Files are written to a
// temp path and renamed so a crashed export never leaves a half-written file.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"ticket-agent/internal/ranking"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps a CLI flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json, csv or markdown)", s)
}

// Write encodes the result in the given format and writes it to path.
func Write(result *ranking.Result, format Format, path string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(result, "", "  ")
	case FormatCSV:
		data, err = encodeCSV(result)
	case FormatMarkdown:
		data = []byte(encodeMarkdown(result))
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode ranking: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize export file: %w", err)
	}

	log.Info().Str("path", path).Str("format", string(format)).Int("tickets", len(result.Ranked)).Msg("Exported ranking")
	return nil
}

func encodeCSV(result *ranking.Result) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{"position", "ticket_id", "final_score", "inferred_state", "bounty_value", "bounty_confidence", "explanation"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, rt := range result.Ranked {
		record := []string{
			strconv.Itoa(rt.Position),
			rt.TicketID,
			strconv.FormatFloat(rt.FinalScore, 'f', 4, 64),
			string(rt.State),
			strconv.FormatFloat(rt.Bounty.Value, 'f', 2, 64),
			string(rt.Bounty.Confidence),
			rt.Explanation,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func encodeMarkdown(result *ranking.Result) string {
	var sb strings.Builder
	sb.WriteString("# Ranked Backlog\n\n")
	sb.WriteString(fmt.Sprintf("Generated at %s. %d ranked, %d skipped.\n\n",
		result.GeneratedAt.Format("2006-01-02 15:04:05 MST"), len(result.Ranked), len(result.Skipped)))

	sb.WriteString("| # | Ticket | Score | State | Bounty | Confidence |\n")
	sb.WriteString("|---|--------|-------|-------|--------|------------|\n")
	for _, rt := range result.Ranked {
		sb.WriteString(fmt.Sprintf("| %d | %s | %.3f | %s | %.2f | %s |\n",
			rt.Position, rt.TicketID, rt.FinalScore, rt.State, rt.Bounty.Value, rt.Bounty.Confidence))
	}

	if chart := scoreChart(result); chart != "" {
		sb.WriteString("\n")
		sb.WriteString(chart)
		sb.WriteString("\n")
	}

	if len(result.Skipped) > 0 {
		sb.WriteString("\n## Skipped\n\n")
		for _, skipped := range result.Skipped {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", skipped.TicketID, skipped.Reason))
		}
	}
	return sb.String()
}

// scoreChart renders a Mermaid bar chart of the top-10 scores.
func scoreChart(result *ranking.Result) string {
	if len(result.Ranked) == 0 {
		return ""
	}

	top := result.Ranked
	if len(top) > 10 {
		top = top[:10]
	}

	var labels []string
	var values []string
	for _, rt := range top {
		labels = append(labels, fmt.Sprintf("\"#%d\"", rt.Position))
		values = append(values, fmt.Sprintf("%.2f", rt.FinalScore))
	}

	maxY := top[0].FinalScore * 1.2
	if maxY <= 0 {
		maxY = 1
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Backlog Scores\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Score\" 0 --> %.1f\n", maxY))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}
