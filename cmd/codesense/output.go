package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/codesense/internal/analysis"
	"github.com/dusk-indust/codesense/internal/report"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeAnalysis(w io.Writer, format string, result report.AnalysisResult) error {
	switch strings.ToLower(format) {
	case "json":
		return writeJSON(w, result)
	case "text", "":
		fmt.Fprintf(w, "%s: %s, score %d, %d issue(s)\n",
			result.Language, result.Status, result.Meta.Score, result.IssueCount)
		writeIssues(w, result.Issues)
		if d := result.Meta.CommentDensity; d != nil {
			fmt.Fprintf(w, "comment density: %.2f\n", *d)
		}
		for _, fc := range result.Meta.Complexity {
			fmt.Fprintf(w, "complexity %-24s %d (line %d)\n", fc.Name, fc.Complexity, fc.Line)
		}
		return nil
	default:
		return fmt.Errorf("invalid --format %q (want text or json)", format)
	}
}

func writeBatch(w io.Writer, format string, results []analysis.JobResult) error {
	if strings.EqualFold(format, "json") {
		return writeJSON(w, results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s\n", r.Name)
		if err := writeAnalysis(w, format, r.Result); err != nil {
			return err
		}
	}
	return nil
}

func writeReview(w io.Writer, format string, result report.AnalysisResult, rv report.Review) error {
	switch strings.ToLower(format) {
	case "json":
		return writeJSON(w, struct {
			Analysis report.AnalysisResult `json:"analysis"`
			Review   report.Review         `json:"review"`
		}{result, rv})
	case "text", "":
		fmt.Fprintf(w, "%s: review score %d, readability %d/10, analysis score %d\n",
			result.Language, rv.Score, rv.ReadabilityScore, result.Meta.Score)
		fmt.Fprintln(w, rv.Summary)
		for _, line := range rv.Feedback {
			fmt.Fprintf(w, "  - %s\n", line)
		}
		return nil
	default:
		return fmt.Errorf("invalid --format %q (want text or json)", format)
	}
}

func writeIssues(w io.Writer, issues []report.Issue) {
	for _, is := range issues {
		loc := "      "
		if is.Line > 0 {
			loc = fmt.Sprintf("%5d:", is.Line)
		}
		sev := ""
		if is.Severity != report.SeverityNone {
			sev = fmt.Sprintf(" [%s]", is.Severity)
		}
		fmt.Fprintf(w, "%s%s %s: %s\n", loc, sev, is.Kind, is.Detail)
	}
}
