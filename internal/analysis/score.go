package analysis

import (
	"github.com/dusk-indust/codesense/internal/config"
	"github.com/dusk-indust/codesense/internal/report"
)

// MaxScore is the score of a snippet with no penalized issues.
const MaxScore = 100

// Score subtracts the configured penalty of each issue's severity from
// MaxScore and clamps the result to [0, MaxScore]. Issues without a
// severity cost nothing.
func Score(issues []report.Issue, cfg config.Scoring) int {
	score := MaxScore
	for _, is := range issues {
		score -= penalty(is.Severity, cfg)
	}
	return max(0, min(MaxScore, score))
}

func penalty(sev report.Severity, cfg config.Scoring) int {
	switch sev {
	case report.SeverityLow:
		return cfg.LowPenalty
	case report.SeverityMedium:
		return cfg.MediumPenalty
	case report.SeverityHigh:
		return cfg.HighPenalty
	}
	return 0
}
