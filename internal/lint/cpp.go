package lint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dusk-indust/codesense/internal/config"
	"github.com/dusk-indust/codesense/internal/report"
)

// C++ issue kinds.
const (
	KindUsingNamespaceStd  = "Using namespace std"
	KindCAllocation        = "C allocation"
	KindFreeCall           = "Free call"
	KindRawPointer         = "Raw pointer"
	KindHeaderGuardMissing = "Header guard missing"
	KindLargeFile          = "Large file"
)

var (
	usingStdRe     = regexp.MustCompile(`\busing\s+namespace\s+std\b`)
	cAllocRe       = regexp.MustCompile(`\b(malloc|calloc)\s*\(`)
	freeRe         = regexp.MustCompile(`\bfree\s*\(`)
	pointerDeclRe  = regexp.MustCompile(`\b\w+\s*\*\s*\w+`)
	smartPointerRe = regexp.MustCompile(`\bstd::(unique_ptr|shared_ptr)\b`)
	includeGuardRe = regexp.MustCompile(`#ifndef\s+\w+\s*\n#define\s+\w+`)
)

// CppLinter flags namespace pollution, manual memory management and missing
// include guards in C++. It assigns no severities.
type CppLinter struct {
	cfg   config.Lint
	rules []lineRule
}

var _ TextLinter = (*CppLinter)(nil)

// NewCppLinter returns a CppLinter using the file-level limits in cfg.
func NewCppLinter(cfg config.Lint) *CppLinter {
	return &CppLinter{
		cfg: cfg,
		rules: []lineRule{
			{
				kind:   KindUsingNamespaceStd,
				detail: "Avoid 'using namespace std;' in headers or global scope.",
				match:  matches(usingStdRe),
			},
			{
				kind:   KindCAllocation,
				detail: "Prefer new/delete or smart pointers (unique_ptr/shared_ptr) in modern C++.",
				match:  matches(cAllocRe),
			},
			{
				kind:   KindFreeCall,
				detail: "Ensure matching allocation/deallocation; prefer RAII.",
				match:  matches(freeRe),
			},
			{
				kind:   KindRawPointer,
				detail: "Consider using smart pointers instead of raw pointers.",
				match: func(line string) bool {
					return pointerDeclRe.MatchString(line) && !smartPointerRe.MatchString(line)
				},
			},
		},
	}
}

// Lint runs the line rules, then the whole-file checks.
func (l *CppLinter) Lint(code string) []report.Issue {
	lines := splitLines(code)
	issues := runLineRules(lines, l.rules)

	if len(lines) >= l.cfg.IncludeGuardMinLines && !hasIncludeGuard(lines, l.cfg.IncludeGuardWindow) {
		issues = append(issues, report.Issue{
			Kind:   KindHeaderGuardMissing,
			Detail: "Add `#pragma once` or include guards.",
		})
	}

	if len(lines) > l.cfg.MaxFileLines {
		issues = append(issues, report.Issue{
			Kind:   KindLargeFile,
			Detail: fmt.Sprintf("File has %d lines; consider splitting modules.", len(lines)),
		})
	}
	return issues
}

// hasIncludeGuard looks for #pragma once or an #ifndef/#define pair within
// the first window lines.
func hasIncludeGuard(lines []string, window int) bool {
	head := strings.Join(lines[:min(window, len(lines))], "\n")
	return strings.Contains(head, "#pragma once") || includeGuardRe.MatchString(head)
}
