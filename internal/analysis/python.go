package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/codesense/internal/lint"
	"github.com/dusk-indust/codesense/internal/metrics"
	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/syntax"
)

// Issue categories of a Python analysis, in the order they are merged.
const (
	catLint = iota
	catImports
	catComplexity
	catDensity
	numCategories
)

type pythonAnalysis struct {
	a *Analyzer
}

func (p *pythonAnalysis) Language() report.Language { return report.LangPython }

// Run parses code once and fans the read-only tree out to the structural
// linter and the metric extractors. A syntax error short-circuits with a
// single issue and score 0.
func (p *pythonAnalysis) Run(ctx context.Context, code string) (report.AnalysisResult, error) {
	result := report.NewResult(report.LangPython, code, nil)

	tree, err := p.a.parser.Parse(ctx, []byte(code))
	if err != nil {
		if se, ok := syntax.AsSyntaxError(err); ok {
			result.Fail(lint.SyntaxErrorIssue(se))
			return result, nil
		}
		return result, fmt.Errorf("parse python: %w", err)
	}
	parents := syntax.BuildParentIndex(tree)

	var (
		found      [numCategories][]report.Issue
		complexity []report.FunctionComplexity
		density    float64
		stats      report.CodeStats
	)

	g, gctx := errgroup.WithContext(ctx)
	goSafe(gctx, g, "structural lint", func() {
		found[catLint] = p.a.python.Lint(tree, parents)
	})
	goSafe(gctx, g, "unused imports", func() {
		found[catImports] = p.importIssues(tree)
	})
	goSafe(gctx, g, "complexity", func() {
		complexity = metrics.FunctionComplexities(tree)
		found[catComplexity] = p.complexityIssues(complexity)
	})
	goSafe(gctx, g, "comment density", func() {
		density = metrics.CommentDensity(code)
		found[catDensity] = p.densityIssues(density)
	})
	goSafe(gctx, g, "code stats", func() {
		stats = metrics.Summarize(tree)
	})
	if err := g.Wait(); err != nil {
		return result, err
	}

	var issues []report.Issue
	for _, cat := range found {
		issues = append(issues, cat...)
	}
	result.SetIssues(issues)
	result.Meta.Complexity = complexity
	result.Meta.CommentDensity = &density
	result.Meta.Stats = &stats
	return result, nil
}

// goSafe runs fn on g, turning a panic into the group's error. A canceled
// context stops the task before it starts.
func goSafe(ctx context.Context, g *errgroup.Group, name string, fn func()) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s: panic: %v", name, r)
			}
		}()
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fn()
		return nil
	})
}

func (p *pythonAnalysis) importIssues(tree *syntax.Tree) []report.Issue {
	var out []report.Issue
	for _, b := range metrics.UnusedImports(tree) {
		out = append(out, report.Issue{
			Kind:     report.KindUnusedImport,
			Detail:   fmt.Sprintf("'%s' is imported but never used.", b.Name),
			Line:     b.Line,
			Severity: report.SeverityLow,
		})
	}
	return out
}

func (p *pythonAnalysis) complexityIssues(fns []report.FunctionComplexity) []report.Issue {
	s := p.a.cfg.Scoring
	var out []report.Issue
	for _, fc := range fns {
		var kind string
		var sev report.Severity
		switch {
		case fc.Complexity > s.HighComplexity:
			kind, sev = report.KindHighComplexity, report.SeverityHigh
		case fc.Complexity > s.ModerateComplexity:
			kind, sev = report.KindModerateComplexity, report.SeverityMedium
		default:
			continue
		}
		out = append(out, report.Issue{
			Kind:     kind,
			Detail:   fmt.Sprintf("Function '%s' has cyclomatic complexity %d.", fc.Name, fc.Complexity),
			Line:     fc.Line,
			Severity: sev,
		})
	}
	return out
}

func (p *pythonAnalysis) densityIssues(density float64) []report.Issue {
	floor := p.a.cfg.Scoring.MinCommentDensity
	if density >= floor {
		return nil
	}
	return []report.Issue{{
		Kind:     report.KindLowDocumentation,
		Detail:   fmt.Sprintf("Comment density is %.2f; aim for at least %.2f.", density, floor),
		Severity: report.SeverityMedium,
	}}
}
