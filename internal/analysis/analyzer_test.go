package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dusk-indust/codesense/internal/config"
	"github.com/dusk-indust/codesense/internal/lint"
	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// stubParser returns a fixed error, or panics when panicMsg is set.
type stubParser struct {
	err      error
	panicMsg string
}

func (s stubParser) Parse(context.Context, []byte) (*syntax.Tree, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return nil, s.err
}

// recordingObserver keeps every observed result.
type recordingObserver struct {
	mu      sync.Mutex
	results []report.AnalysisResult
}

func (o *recordingObserver) ObserveAnalysis(r report.AnalysisResult, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, r)
}

func newTestAnalyzer(opts ...Option) *Analyzer {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(nil, append([]Option{WithLogger(quiet)}, opts...)...)
}

func kinds(issues []report.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Kind)
	}
	return out
}

// ifChain builds a documented, commented function with n sequential ifs,
// giving it complexity n+1.
func ifChain(n int) string {
	var b strings.Builder
	b.WriteString("def branchy(x):\n    \"\"\"Many branches.\"\"\"\n")
	for i := range n {
		fmt.Fprintf(&b, "    # case %d\n    if x: return %d\n", i, i)
	}
	b.WriteString("    return x\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		tag  string
		want report.Language
		ok   bool
	}{
		{"python", report.LangPython, true},
		{"", report.LangPython, true},
		{"  PYTHON ", report.LangPython, true},
		{"js", report.LangJavaScript, true},
		{"JavaScript", report.LangJavaScript, true},
		{"c++", report.LangCpp, true},
		{"CPP", report.LangCpp, true},
		{" Ruby ", report.Language("ruby"), false},
	}
	for _, tc := range cases {
		got, ok := NormalizeLanguage(tc.tag)
		assert.Equal(t, tc.want, got, tc.tag)
		assert.Equal(t, tc.ok, ok, tc.tag)
	}
}

func TestLanguageForPath(t *testing.T) {
	cases := map[string]report.Language{
		"main.py":          report.LangPython,
		"src/app.JS":       report.LangJavaScript,
		"lib/index.mjs":    report.LangJavaScript,
		"engine/core.cpp":  report.LangCpp,
		"include/vec.hpp":  report.LangCpp,
		"include/legacy.h": report.LangCpp,
	}
	for path, want := range cases {
		got, ok := LanguageForPath(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}

	_, ok := LanguageForPath("README.md")
	assert.False(t, ok)
	_, ok = LanguageForPath("Makefile")
	assert.False(t, ok)
}

func TestAnalyze_Python(t *testing.T) {
	code := "import os\nimport sys\n\n\ndef main():\n    \"\"\"Entry.\"\"\"\n    return sys.argv\n"
	res := newTestAnalyzer().Analyze(context.Background(), code, "python")

	assert.Equal(t, report.StatusSuccess, res.Status)
	assert.Equal(t, report.LangPython, res.Language)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, report.Issue{
		Kind:     report.KindUnusedImport,
		Detail:   "'os' is imported but never used.",
		Line:     1,
		Severity: report.SeverityLow,
	}, res.Issues[0])
	assert.Equal(t, 1, res.IssueCount)
	assert.Equal(t, 99, res.Meta.Score)

	require.Len(t, res.Meta.Complexity, 1)
	assert.Equal(t, "main", res.Meta.Complexity[0].Name)
	assert.Equal(t, 1, res.Meta.Complexity[0].Complexity)

	require.NotNil(t, res.Meta.CommentDensity)
	assert.InDelta(t, 0.2, *res.Meta.CommentDensity, 1e-9)
	require.NotNil(t, res.Meta.Stats)
	assert.Equal(t, 1, res.Meta.Stats.FunctionCount)
	assert.Equal(t, code, res.Code)
}

func TestAnalyze_PythonCategoryOrder(t *testing.T) {
	code := "import os\n\ndef f():\n    return 1\n"
	res := newTestAnalyzer().Analyze(context.Background(), code, "python")

	assert.Equal(t, []string{
		lint.KindMissingDocstring,
		report.KindUnusedImport,
		report.KindLowDocumentation,
	}, kinds(res.Issues))
	// low 1 + medium 3; the structural issue is free.
	assert.Equal(t, 96, res.Meta.Score)
}

func TestAnalyze_ComplexityThresholds(t *testing.T) {
	a := newTestAnalyzer()

	plain := a.Analyze(context.Background(), ifChain(9), "python")
	assert.Empty(t, plain.Issues)
	assert.Equal(t, 100, plain.Meta.Score)

	moderate := a.Analyze(context.Background(), ifChain(10), "python")
	require.Len(t, moderate.Issues, 1)
	assert.Equal(t, report.KindModerateComplexity, moderate.Issues[0].Kind)
	assert.Equal(t, report.SeverityMedium, moderate.Issues[0].Severity)
	assert.Equal(t, "Function 'branchy' has cyclomatic complexity 11.", moderate.Issues[0].Detail)
	assert.Equal(t, 1, moderate.Issues[0].Line)
	assert.Equal(t, 97, moderate.Meta.Score)

	high := a.Analyze(context.Background(), ifChain(20), "python")
	require.Len(t, high.Issues, 1)
	assert.Equal(t, report.KindHighComplexity, high.Issues[0].Kind)
	assert.Equal(t, report.SeverityHigh, high.Issues[0].Severity)
	assert.Equal(t, 93, high.Meta.Score)
}

func TestAnalyze_SyntaxError(t *testing.T) {
	obs := &recordingObserver{}
	res := newTestAnalyzer(WithObserver(obs)).Analyze(context.Background(), "print((1)\n", "python")

	assert.Equal(t, report.StatusError, res.Status)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, report.KindSyntaxError, res.Issues[0].Kind)
	assert.GreaterOrEqual(t, res.Issues[0].Line, 1)
	assert.Equal(t, 1, res.IssueCount)
	assert.Zero(t, res.Meta.Score)
	assert.Nil(t, res.Meta.Complexity)
	assert.Nil(t, res.Meta.CommentDensity)
	require.Len(t, obs.results, 1)
}

func TestAnalyze_SyntaxErrorGrammarTolerates(t *testing.T) {
	cases := map[string]struct {
		src  string
		line int
	}{
		"unexpected indent": {"x = 1\n    y = 2\n", 2},
		"python 2 print":    {"print \"hello\"\n", 1},
		"tab and space mix": {"def f():\n\tx = 1\n        return x\n", 3},
	}
	a := newTestAnalyzer()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := a.Analyze(context.Background(), tc.src, "python")
			assert.Equal(t, report.StatusError, res.Status)
			require.Len(t, res.Issues, 1)
			assert.Equal(t, report.KindSyntaxError, res.Issues[0].Kind)
			assert.Equal(t, tc.line, res.Issues[0].Line)
			assert.Zero(t, res.Meta.Score)
		})
	}
}

func TestAnalyze_JavaScript(t *testing.T) {
	res := newTestAnalyzer().Analyze(context.Background(), "var x = 1;\n", " JS ")

	assert.Equal(t, report.StatusSuccess, res.Status)
	assert.Equal(t, report.LangJavaScript, res.Language)
	assert.Equal(t, []string{lint.KindUseOfVar}, kinds(res.Issues))
	assert.Equal(t, 100, res.Meta.Score, "pattern findings carry no severity")
	assert.Nil(t, res.Meta.CommentDensity)
}

func TestAnalyze_Cpp(t *testing.T) {
	res := newTestAnalyzer().Analyze(context.Background(), "using namespace std;\n", "C++")

	assert.Equal(t, report.LangCpp, res.Language)
	assert.Equal(t, []string{lint.KindUsingNamespaceStd}, kinds(res.Issues))
	assert.Equal(t, 1, res.Issues[0].Line)
}

func TestAnalyze_Unsupported(t *testing.T) {
	res := newTestAnalyzer().Analyze(context.Background(), "puts 'hi'", "ruby")

	assert.Equal(t, report.StatusSuccess, res.Status)
	assert.Equal(t, report.Language("ruby"), res.Language)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, report.KindUnsupportedLanguage, res.Issues[0].Kind)
	assert.Equal(t, report.SeverityHigh, res.Issues[0].Severity)
	assert.Equal(t, "Language 'ruby' is not supported yet.", res.Issues[0].Detail)
	assert.Equal(t, 93, res.Meta.Score)
}

// ---------------------------------------------------------------------------
// Safety net
// ---------------------------------------------------------------------------

func TestAnalyze_ParserErrorBecomesFailure(t *testing.T) {
	a := newTestAnalyzer(WithParser(stubParser{err: errors.New("grammar unavailable")}))
	res := a.Analyze(context.Background(), "x = 1\n", "python")

	assert.Equal(t, report.StatusError, res.Status)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, report.KindAnalyzerFailure, res.Issues[0].Kind)
	assert.Equal(t, report.SeverityHigh, res.Issues[0].Severity)
	assert.Contains(t, res.Issues[0].Detail, "grammar unavailable")
	assert.Zero(t, res.Meta.Score)
	assert.Equal(t, report.LangPython, res.Language)
}

func TestAnalyze_PanicBecomesFailure(t *testing.T) {
	a := newTestAnalyzer(WithParser(stubParser{panicMsg: "corrupt tree"}))
	res := a.Analyze(context.Background(), "x = 1\n", "python")

	assert.Equal(t, report.StatusError, res.Status)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, report.KindAnalyzerFailure, res.Issues[0].Kind)
	assert.Contains(t, res.Issues[0].Detail, "corrupt tree")
	assert.Zero(t, res.Meta.Score)
}

func TestAnalyze_SyntaxErrorFromStubIsNotFailure(t *testing.T) {
	a := newTestAnalyzer(WithParser(stubParser{err: &syntax.SyntaxError{Line: 4, Msg: "invalid syntax"}}))
	res := a.Analyze(context.Background(), "whatever", "python")

	require.Len(t, res.Issues, 1)
	assert.Equal(t, report.KindSyntaxError, res.Issues[0].Kind)
	assert.Equal(t, 4, res.Issues[0].Line)
}

func TestAnalyze_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestAnalyzer().Analyze(ctx, "x = 1\n", "python")
	assert.Equal(t, report.StatusError, res.Status)
	assert.Equal(t, report.KindAnalyzerFailure, res.Issues[0].Kind)
}

func TestGoSafe_RecoversPanic(t *testing.T) {
	var g errgroup.Group
	goSafe(context.Background(), &g, "exploding", func() { panic("boom") })
	err := g.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exploding")
	assert.Contains(t, err.Error(), "boom")
}

// ---------------------------------------------------------------------------
// Invariants
// ---------------------------------------------------------------------------

func TestAnalyze_Invariants(t *testing.T) {
	a := newTestAnalyzer()
	inputs := []struct{ code, lang string }{
		{"", "python"},
		{"x = 1\n", "python"},
		{"def f(:\n", "python"},
		{ifChain(30), "python"},
		{"", "javascript"},
		{strings.Repeat("var a\n", 200), "js"},
		{strings.Repeat("int *p = (int*)malloc(1);\n", 50), "cpp"},
		{"", "cobol"},
	}
	for _, in := range inputs {
		res := a.Analyze(context.Background(), in.code, in.lang)
		assert.Equal(t, len(res.Issues), res.IssueCount, in.lang)
		assert.GreaterOrEqual(t, res.Meta.Score, 0)
		assert.LessOrEqual(t, res.Meta.Score, 100)
		assert.NotNil(t, res.Issues)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := newTestAnalyzer()
	code := "import os, sys\nfrom re import compile\n\ndef f(a, b):\n    if a and b:\n        return a\n    return b\n"
	first := a.Analyze(context.Background(), code, "python")
	for range 5 {
		assert.Equal(t, first, a.Analyze(context.Background(), code, "python"))
	}
}

func TestAnalyze_ConcurrentCallers(t *testing.T) {
	a := newTestAnalyzer()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := a.Analyze(context.Background(), ifChain(i), "python")
			assert.Equal(t, report.StatusSuccess, res.Status)
		}()
	}
	wg.Wait()
}

func TestAnalyze_Observer(t *testing.T) {
	obs := &recordingObserver{}
	a := newTestAnalyzer(WithObserver(obs))
	a.Analyze(context.Background(), "var a;\n", "js")
	a.Analyze(context.Background(), "x", "ruby")

	require.Len(t, obs.results, 2)
	assert.Equal(t, report.LangJavaScript, obs.results[0].Language)
	assert.Equal(t, report.Language("ruby"), obs.results[1].Language)
}

func TestNew_UsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Scoring.LowPenalty = 10
	a := New(cfg, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	res := a.Analyze(context.Background(), "import os\n# comment\n", "python")
	assert.Equal(t, 90, res.Meta.Score)
}
