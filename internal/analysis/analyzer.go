// Package analysis dispatches a code snippet to the analysis variant for its
// language, merges the findings and scores the result.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/dusk-indust/codesense/internal/config"
	"github.com/dusk-indust/codesense/internal/lint"
	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/syntax"
)

// Observer is notified after every analysis, including failed ones.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveAnalysis(result report.AnalysisResult, elapsed time.Duration)
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithParser replaces the tree-sitter Python parser.
func WithParser(p syntax.Parser) Option {
	return func(a *Analyzer) {
		a.parser = p
	}
}

// WithLogger sets the logger used for dispatch and failure messages.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithObserver registers an observer for completed analyses.
func WithObserver(o Observer) Option {
	return func(a *Analyzer) {
		a.observer = o
	}
}

// Analyzer runs the per-language analysis variants. It holds no per-request
// state and may be shared by concurrent callers.
type Analyzer struct {
	cfg      *config.Config
	parser   syntax.Parser
	logger   *slog.Logger
	observer Observer

	python *lint.PythonLinter
	js     *lint.JSLinter
	cpp    *lint.CppLinter
}

// New creates an Analyzer. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &Analyzer{
		cfg:    cfg,
		parser: syntax.NewTreeSitterParser(),
		logger: slog.Default(),
		python: lint.NewPythonLinter(cfg.Lint),
		js:     lint.NewJSLinter(),
		cpp:    lint.NewCppLinter(cfg.Lint),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces the report for code written in language. It never fails:
// syntax errors, unsupported languages and internal faults are all encoded
// in the returned result.
func (a *Analyzer) Analyze(ctx context.Context, code, language string) report.AnalysisResult {
	start := time.Now()
	v := a.variantFor(language)
	a.logger.Debug("dispatch analysis", "language", v.Language(), "bytes", len(code))

	result := a.run(ctx, v, code)
	if a.observer != nil {
		a.observer.ObserveAnalysis(result, time.Since(start))
	}
	return result
}

// run executes v and converts any error or panic into the Analyzer Failure
// form.
func (a *Analyzer) run(ctx context.Context, v Variant, code string) (result report.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("analysis panicked",
				"language", v.Language(), "panic", r, "stack", string(debug.Stack()))
			result = failure(v.Language(), code, fmt.Errorf("panic: %v", r))
		}
	}()

	result, err := v.Run(ctx, code)
	if err != nil {
		a.logger.Warn("analysis failed", "language", v.Language(), "error", err)
		return failure(v.Language(), code, err)
	}
	if result.Status == report.StatusSuccess {
		result.Meta.Score = Score(result.Issues, a.cfg.Scoring)
	}
	return result
}

func failure(language report.Language, code string, err error) report.AnalysisResult {
	r := report.NewResult(language, code, nil)
	r.Fail(report.Issue{
		Kind:     report.KindAnalyzerFailure,
		Detail:   err.Error(),
		Severity: report.SeverityHigh,
	})
	return r
}
