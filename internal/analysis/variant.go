package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/codesense/internal/lint"
	"github.com/dusk-indust/codesense/internal/report"
)

// Variant is the analysis for one language. The set is closed: variantFor
// returns a pythonAnalysis, a textAnalysis for JavaScript or C++, or an
// unsupportedAnalysis.
type Variant interface {
	// Language is the normalized tag reported in the result.
	Language() report.Language

	// Run produces the issues and metrics for code. The score is filled in
	// by the Analyzer. A returned error becomes an Analyzer Failure.
	Run(ctx context.Context, code string) (report.AnalysisResult, error)
}

var (
	_ Variant = (*pythonAnalysis)(nil)
	_ Variant = (*textAnalysis)(nil)
	_ Variant = unsupportedAnalysis{}
)

var languageAliases = map[string]report.Language{
	"":           report.LangPython,
	"python":     report.LangPython,
	"javascript": report.LangJavaScript,
	"js":         report.LangJavaScript,
	"cpp":        report.LangCpp,
	"c++":        report.LangCpp,
}

// NormalizeLanguage trims and lower-cases tag and resolves aliases. An empty
// tag means Python. For an unknown tag it returns the cleaned tag and false.
func NormalizeLanguage(tag string) (report.Language, bool) {
	clean := strings.ToLower(strings.TrimSpace(tag))
	if lang, ok := languageAliases[clean]; ok {
		return lang, true
	}
	return report.Language(clean), false
}

var extToLanguage = map[string]report.Language{
	".py":  report.LangPython,
	".pyw": report.LangPython,
	".js":  report.LangJavaScript,
	".jsx": report.LangJavaScript,
	".mjs": report.LangJavaScript,
	".cjs": report.LangJavaScript,
	".cpp": report.LangCpp,
	".cc":  report.LangCpp,
	".cxx": report.LangCpp,
	".hpp": report.LangCpp,
	".hh":  report.LangCpp,
	".h":   report.LangCpp,
}

// LanguageForPath guesses the language of a file from its extension.
func LanguageForPath(path string) (report.Language, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

func (a *Analyzer) variantFor(tag string) Variant {
	lang, ok := NormalizeLanguage(tag)
	if !ok {
		return unsupportedAnalysis{tag: lang}
	}
	switch lang {
	case report.LangJavaScript:
		return &textAnalysis{lang: lang, linter: a.js}
	case report.LangCpp:
		return &textAnalysis{lang: lang, linter: a.cpp}
	default:
		return &pythonAnalysis{a: a}
	}
}

// textAnalysis runs a single pattern linter over the raw text. It backs
// both the JavaScript and the C++ variants.
type textAnalysis struct {
	lang   report.Language
	linter lint.TextLinter
}

func (t *textAnalysis) Language() report.Language { return t.lang }

func (t *textAnalysis) Run(ctx context.Context, code string) (report.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return report.AnalysisResult{}, err
	}
	return report.NewResult(t.lang, code, t.linter.Lint(code)), nil
}

type unsupportedAnalysis struct {
	tag report.Language
}

func (u unsupportedAnalysis) Language() report.Language { return u.tag }

func (u unsupportedAnalysis) Run(_ context.Context, code string) (report.AnalysisResult, error) {
	return report.NewResult(u.tag, code, []report.Issue{{
		Kind:     report.KindUnsupportedLanguage,
		Detail:   fmt.Sprintf("Language '%s' is not supported yet.", u.tag),
		Severity: report.SeverityHigh,
	}}), nil
}
