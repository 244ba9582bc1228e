package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"ticket-agent/internal/export"
	"ticket-agent/internal/ranking"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ranked backlog to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRepo(); err != nil {
			return err
		}

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		tickets, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		engine := ranking.NewEngine(cfg.Scoring)
		result, err := engine.Rank(ctx, tickets, time.Now().UTC())
		if err != nil {
			return err
		}

		path := exportOut
		if path == "" {
			path = filepath.Join(cfg.ExportDir, "backlog."+extension(format))
		}

		if err := export.Write(result, format, path); err != nil {
			return err
		}

		fmt.Printf("Exported %d tickets to %s (%d skipped)\n", len(result.Ranked), path, len(result.Skipped))
		return nil
	},
}

func extension(format export.Format) string {
	if format == export.FormatMarkdown {
		return "md"
	}
	return string(format)
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format: json, csv or markdown")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: <data path>/exports/backlog.<ext>)")
	rootCmd.AddCommand(exportCmd)
}
