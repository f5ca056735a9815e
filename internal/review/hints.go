package review

import (
	"strings"

	"github.com/dusk-indust/codesense/internal/report"
)

// hint is a performance suggestion triggered when every one of its needles
// occurs somewhere in the snippet.
type hint struct {
	needles []string
	text    string
}

var languageHints = map[report.Language][]hint{
	report.LangPython: {
		{[]string{"for", "range"}, "Use list comprehensions or generators instead of loops for better performance."},
		{[]string{"print("}, "Remove print/debug statements in production."},
	},
	report.LangCpp: {
		{[]string{"new "}, "Avoid unnecessary object creation inside loops."},
		{[]string{"*"}, "Prefer smart pointers over raw pointers for memory safety."},
	},
	report.LangJavaScript: {
		{[]string{"=="}, "Use === instead of == for strict equality."},
		{[]string{"var "}, "Use let or const instead of var."},
	},
}

// Hints returns the performance suggestions for code, in a fixed order.
// Languages without hints yield an empty list.
func Hints(language report.Language, code string) []string {
	out := []string{}
	for _, h := range languageHints[language] {
		if containsAll(code, h.needles) {
			out = append(out, h.text)
		}
	}
	return out
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
