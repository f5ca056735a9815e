package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codesense/internal/export"
)

func newHistoryCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded analyses",
		Long: `History reads the configured store. Only the kuzu backend outlives the
process, so set server.store to kuzu (or pass --record to analyze with it)
for history to accumulate.`,
	}
	cmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "output format: text or json")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer history.Close()

			records, err := history.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			w := cmd.OutOrStdout()
			if isJSON(format) {
				return writeJSON(w, records)
			}
			for _, rec := range records {
				fmt.Fprintf(w, "%s  %s  %-10s %-7s score %3d  review %3d  issues %d\n",
					rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.Language, rec.Status,
					rec.Score, rec.ReviewScore, rec.IssueCount)
			}
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries; 0 lists everything")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer history.Close()

			rec, err := history.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if isJSON(format) {
				return writeJSON(w, rec)
			}
			fmt.Fprintf(w, "%s: %s %s, score %d, review %d, recorded %s\n",
				rec.ID, rec.Language, rec.Status, rec.Score, rec.ReviewScore, rec.CreatedAt.Format(time.RFC3339))
			writeIssues(w, rec.Issues)
			for _, fn := range rec.Functions {
				fmt.Fprintf(w, "complexity %-24s %d (line %d)\n", fn.Name, fn.Complexity, fn.Line)
			}
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate the recorded analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer history.Close()

			st, err := history.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("history stats: %w", err)
			}
			w := cmd.OutOrStdout()
			if isJSON(format) {
				return writeJSON(w, st)
			}
			fmt.Fprintf(w, "analyses: %d, mean score: %.1f\n", st.Total, st.MeanScore)
			for _, kc := range st.IssuesByKind {
				fmt.Fprintf(w, "%6d  %s\n", kc.Count, kc.Kind)
			}
			return nil
		},
	}

	var (
		exportLimit int
		outPath     string
	)
	exp := &cobra.Command{
		Use:   "export",
		Short: "Export the history as JSON or a Markdown report",
		Long: `Export writes the recorded analyses and their aggregate statistics. The
Markdown form includes a Mermaid pie chart of issue kinds.

Example:
  codesense history export -f markdown -o history.md
  codesense history export -f json -n 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer history.Close()

			doc, err := export.ExportHistory(cmd.Context(), history, exportLimit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}

			switch strings.ToLower(format) {
			case "json":
				return export.WriteJSON(w, doc)
			case "markdown", "md", "text":
				return export.WriteMarkdown(w, doc)
			default:
				return fmt.Errorf("invalid --format %q (want json or markdown)", format)
			}
		},
	}
	exp.Flags().IntVarP(&exportLimit, "limit", "n", 0, "maximum number of records; 0 exports everything")
	exp.Flags().StringVarP(&outPath, "output", "o", "", "write to this file instead of stdout")

	cmd.AddCommand(list, show, stats, exp)
	return cmd
}

func isJSON(format string) bool {
	return strings.EqualFold(format, "json")
}
