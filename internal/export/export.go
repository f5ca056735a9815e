// Package export renders the analysis history as a JSON document or a
// Markdown report.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dusk-indust/codesense/internal/store"
)

// HistoryExport is the top-level JSON export structure.
type HistoryExport struct {
	ExportedAt string         `json:"exportedAt"`
	Stats      store.Stats    `json:"stats"`
	Records    []store.Record `json:"records"`
}

// ExportHistory collects up to limit records, newest first, and the
// aggregate statistics from st. A limit <= 0 exports everything.
func ExportHistory(ctx context.Context, st store.Store, limit int) (*HistoryExport, error) {
	records, err := st.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	stats, err := st.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	if records == nil {
		records = []store.Record{}
	}
	return &HistoryExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stats:      *stats,
		Records:    records,
	}, nil
}

// WriteJSON writes exp as indented JSON.
func WriteJSON(w io.Writer, exp *HistoryExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exp)
}

// WriteMarkdown writes a human-readable report: a summary, a Mermaid pie
// chart of issue kinds and one table row per record.
func WriteMarkdown(w io.Writer, exp *HistoryExport) error {
	var sb strings.Builder

	sb.WriteString("# codesense history\n\n")
	fmt.Fprintf(&sb, "Exported %s. %d analyses, mean score %.1f.\n\n",
		exp.ExportedAt, exp.Stats.Total, exp.Stats.MeanScore)

	if chart := IssueChart(exp.Stats.IssuesByKind); chart != "" {
		sb.WriteString("## Issues by kind\n\n```mermaid\n")
		sb.WriteString(chart)
		sb.WriteString("```\n\n")
	}

	if len(exp.Records) > 0 {
		sb.WriteString("## Analyses\n\n")
		sb.WriteString("| ID | Recorded | Language | Status | Score | Review | Issues |\n")
		sb.WriteString("|---|---|---|---|---|---|---|\n")
		for _, rec := range exp.Records {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %d | %d | %d |\n",
				rec.ID, rec.CreatedAt.UTC().Format(time.RFC3339), rec.Language, rec.Status,
				rec.Score, rec.ReviewScore, rec.IssueCount)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// IssueChart produces a Mermaid pie chart of issue counts, or "" when there
// are none. Labels are quoted, so double quotes in kinds are replaced.
func IssueChart(counts []store.KindCount) string {
	if len(counts) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("pie title Issues by kind\n")
	for _, kc := range counts {
		fmt.Fprintf(&sb, "  %q : %d\n", strings.ReplaceAll(kc.Kind, `"`, "'"), kc.Count)
	}
	return sb.String()
}
