package lint

import (
	"regexp"
	"strings"

	"github.com/dusk-indust/codesense/internal/report"
)

// JavaScript issue kinds.
const (
	KindUseOfVar         = "Use of var"
	KindMissingSemicolon = "Missing semicolon"
	KindDebugLog         = "Debug log"
)

var (
	varDeclRe  = regexp.MustCompile(`\bvar\s`)
	consoleLog = regexp.MustCompile(`\bconsole\.log\b`)
)

// JSLinter flags legacy declarations, missing statement terminators and
// leftover console logging in JavaScript. It assigns no severities.
type JSLinter struct {
	rules []lineRule
}

var _ TextLinter = (*JSLinter)(nil)

// NewJSLinter returns a JSLinter with its fixed rule set.
func NewJSLinter() *JSLinter {
	return &JSLinter{rules: []lineRule{
		{
			kind:   KindUseOfVar,
			detail: "Avoid 'var'. Use 'let' or 'const' instead.",
			match:  matches(varDeclRe),
		},
		{
			kind:   KindMissingSemicolon,
			detail: "Possible missing semicolon at end of line.",
			match:  missingSemicolon,
		},
		{
			kind:   KindDebugLog,
			detail: "Avoid leaving console.log in production code.",
			match:  matches(consoleLog),
		},
	}}
}

// Lint scans code line by line.
func (l *JSLinter) Lint(code string) []report.Issue {
	return runLineRules(splitLines(code), l.rules)
}

// missingSemicolon is a heuristic: a non-empty line that is not a comment,
// does not open or close a block and does not already end a statement.
func missingSemicolon(line string) bool {
	s := strings.TrimSpace(line)
	switch {
	case s == "", s == "{", s == "}":
		return false
	case strings.HasSuffix(s, ";"):
		return false
	case strings.HasPrefix(s, "//"):
		return false
	case strings.HasSuffix(s, "{"), strings.HasSuffix(s, "}"):
		return false
	}
	return true
}
