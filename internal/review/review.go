// Package review turns an analysis result into a human-oriented review:
// readability, performance hints, a kind-weighted quality score and
// feedback text.
package review

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dusk-indust/codesense/internal/config"
	"github.com/dusk-indust/codesense/internal/report"
)

const (
	maxReadability = 10
	minReadability = 1
)

// Builder derives reviews. It is stateless apart from its configuration.
type Builder struct {
	cfg config.Review
}

// NewBuilder returns a Builder using the weights and limits in cfg.
func NewBuilder(cfg config.Review) *Builder {
	return &Builder{cfg: cfg}
}

// Build reviews result. It reads the snippet from result.Code and never
// modifies result.
func (b *Builder) Build(result report.AnalysisResult) report.Review {
	readability := b.Readability(result.Code)
	hints := Hints(result.Language, result.Code)
	score := b.QualityScore(result.Issues, readability)

	feedback := make([]string, 0, len(result.Issues)+len(hints))
	for _, is := range result.Issues {
		feedback = append(feedback, fmt.Sprintf("%s: %s", is.Kind, is.Detail))
	}
	feedback = append(feedback, hints...)

	return report.Review{
		Score:            score,
		ReadabilityScore: readability,
		Performance:      hints,
		Issues:           report.CopyIssues(result.Issues),
		Feedback:         feedback,
		Summary:          Summary(score),
	}
}

// QualityScore is 100 minus the kind weight of every issue and the
// readability shortfall, floored at 0.
func (b *Builder) QualityScore(issues []report.Issue, readability int) int {
	weight := 0
	for _, is := range issues {
		weight += b.KindWeight(is.Kind)
	}
	return max(0, 100-weight-(maxReadability-readability))
}

// KindWeight classifies an issue by the words in its kind, ignoring its
// severity.
func (b *Builder) KindWeight(kind string) int {
	k := strings.ToLower(kind)
	switch {
	case containsAny(k, "error", "syntax"):
		return b.cfg.ErrorWeight
	case containsAny(k, "high", "complex", "raw pointer"):
		return b.cfg.SevereWeight
	case containsAny(k, "missing", "unused", "deprecated"):
		return b.cfg.MinorWeight
	default:
		return b.cfg.DefaultWeight
	}
}

// Readability scores code from 1 to 10, losing points for long lines, lines
// mixing tabs with spaces and sheer length.
func (b *Builder) Readability(code string) int {
	var lines []string
	if code != "" {
		lines = strings.Split(code, "\n")
	}

	score := maxReadability
	if meanLineLength(lines) > float64(b.cfg.MaxMeanLineLength) {
		score -= 3
	}
	if mixedIndentation(lines) {
		score -= 2
	}
	if len(lines) > b.cfg.MaxLines {
		score -= 2
	}
	return max(minReadability, score)
}

func meanLineLength(lines []string) float64 {
	if len(lines) == 0 {
		return 0
	}
	total := 0
	for _, l := range lines {
		total += utf8.RuneCountInString(l)
	}
	return float64(total) / float64(len(lines))
}

// mixedIndentation reports whether some line holds both a tab and a
// four-space run. Tabs on one line and spaces on another do not count.
func mixedIndentation(lines []string) bool {
	for _, l := range lines {
		if strings.Contains(l, "\t") && strings.Contains(l, "    ") {
			return true
		}
	}
	return false
}

// Summary maps a quality score to its fixed verdict.
func Summary(score int) string {
	switch {
	case score > 85:
		return "Excellent code quality. Minor improvements possible."
	case score > 70:
		return "Good code quality but has room for improvement."
	case score > 50:
		return "Average code quality. Needs refactoring."
	default:
		return "Poor code quality. Major improvements required."
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
