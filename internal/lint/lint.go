// Package lint holds the rule-based linters: a structural linter over the
// Python syntax tree and line-oriented pattern linters for JavaScript and C++.
package lint

import (
	"regexp"
	"strings"

	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/syntax"
)

// TextLinter scans raw source text. Implementations never fail: malformed
// input simply yields fewer issues.
type TextLinter interface {
	Lint(code string) []report.Issue
}

// lineRule flags every line matching a predicate with the same issue.
type lineRule struct {
	kind   string
	detail string
	match  func(line string) bool
}

// runLineRules applies each rule over every line, one rule at a time, so
// issues come out grouped by rule and in line order within a rule.
func runLineRules(lines []string, rules []lineRule) []report.Issue {
	var issues []report.Issue
	for _, r := range rules {
		for i, line := range lines {
			if r.match(line) {
				issues = append(issues, report.Issue{
					Kind:   r.kind,
					Detail: r.detail,
					Line:   i + 1,
				})
			}
		}
	}
	return issues
}

// matches adapts a regular expression to a lineRule predicate.
func matches(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

// splitLines splits code into lines the way a text editor numbers them:
// \n, \r\n and \r all end a line and a trailing line break does not start a
// new empty line.
func splitLines(code string) []string {
	if code == "" {
		return nil
	}
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.ReplaceAll(code, "\r", "\n")
	lines := strings.Split(code, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// SyntaxErrorIssue converts a parse failure into the single issue reported
// for it.
func SyntaxErrorIssue(err *syntax.SyntaxError) report.Issue {
	return report.Issue{
		Kind:     report.KindSyntaxError,
		Detail:   err.Error(),
		Line:     err.Line,
		Severity: report.SeverityHigh,
	}
}
