package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/dusk-indust/codesense/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	tree, err := syntax.NewTreeSitterParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return tree
}

func bindingNames(bs []ImportBinding) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.Name)
	}
	return out
}

// ---------------------------------------------------------------------------
// CommentDensity
// ---------------------------------------------------------------------------

func TestCommentDensity_Empty(t *testing.T) {
	assert.Equal(t, 0.0, CommentDensity(""))
	assert.Equal(t, 0.0, CommentDensity("   \n\t\n  "))
}

func TestCommentDensity_AllLineComments(t *testing.T) {
	assert.Equal(t, 1.0, CommentDensity("# one\n# two\n\n// three\n"))
}

func TestCommentDensity_BlankLinesIgnored(t *testing.T) {
	code := "x = 1\n\n\n# note\n\n"
	assert.InDelta(t, 0.5, CommentDensity(code), 1e-9)
}

func TestCommentDensity_BlockComment(t *testing.T) {
	code := strings.Join([]string{
		"/* start",
		"middle",
		"end */",
		"int x = 1;",
	}, "\n")
	assert.InDelta(t, 0.75, CommentDensity(code), 1e-9)
}

func TestCommentDensity_SingleLineBlockIsNotOpen(t *testing.T) {
	// "/* ... */" on one line neither opens a block nor starts with a marker.
	code := "/* inline */ x = 1\ny = 2"
	assert.Equal(t, 0.0, CommentDensity(code))
}

func TestCommentDensity_DocstringLines(t *testing.T) {
	code := strings.Join([]string{
		"def f():",
		`    """`,
		"    text",
		`    """`,
		`    """One line."""`,
		"    return 1",
	}, "\n")
	assert.InDelta(t, 3.0/6.0, CommentDensity(code), 1e-9)
}

func TestCommentDensity_Bounded(t *testing.T) {
	inputs := []string{"*/\n*/", "/*\n/*\n", "'''", "\"\"\"\nx\n", "#"}
	for _, in := range inputs {
		d := CommentDensity(in)
		assert.GreaterOrEqual(t, d, 0.0, in)
		assert.LessOrEqual(t, d, 1.0, in)
	}
}

// ---------------------------------------------------------------------------
// FunctionComplexities
// ---------------------------------------------------------------------------

func TestFunctionComplexities_Baseline(t *testing.T) {
	tree := parse(t, "def f():\n    return 1\n")
	got := FunctionComplexities(tree)
	require.Len(t, got, 1)
	assert.Equal(t, "f", got[0].Name)
	assert.Equal(t, 1, got[0].Complexity)
	assert.Equal(t, 1, got[0].Line)
}

func TestFunctionComplexities_EachDecisionAddsOne(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"if", "    if x:\n        pass\n", 2},
		{"if elif", "    if x:\n        pass\n    elif y:\n        pass\n", 3},
		{"for", "    for i in y:\n        pass\n", 2},
		{"while", "    while x:\n        pass\n", 2},
		{"and", "    return x and y\n", 2},
		{"try except", "    try:\n        pass\n    except E:\n        pass\n", 3},
		{"with", "    with x:\n        pass\n", 2},
		{"compare", "    return x < y\n", 2},
		{"nested def", "    def g():\n        pass\n", 2},
		{"if with compare", "    if x == 1:\n        pass\n", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := parse(t, "def f(x, y):\n"+tc.body)
			got := FunctionComplexities(tree)
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0].Complexity)
		})
	}
}

func TestFunctionComplexities_TopLevelOnlyInSourceOrder(t *testing.T) {
	src := `def first():
    pass

class K:
    def method(self):
        if True:
            pass

@wrap
async def second(a):
    for i in a:
        if i:
            return i
`
	tree := parse(t, src)
	got := FunctionComplexities(tree)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, 1, got[0].Complexity)
	assert.Equal(t, "second", got[1].Name)
	assert.Equal(t, 3, got[1].Complexity)
}

func TestFunctionComplexities_NoFunctions(t *testing.T) {
	tree := parse(t, "x = 1\n")
	assert.Empty(t, FunctionComplexities(tree))
}

// ---------------------------------------------------------------------------
// UnusedImports
// ---------------------------------------------------------------------------

func TestUnusedImports(t *testing.T) {
	src := `import os
import sys
import os.path as osp
import collections.abc
from typing import List, Dict as D
from json import *

def f(x: List) -> None:
    print(sys.argv, collections)
`
	tree := parse(t, src)
	got := UnusedImports(tree)
	assert.Equal(t, []string{"os", "osp", "D"}, bindingNames(got))
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, 3, got[1].Line)
}

func TestUnusedImports_NotReferences(t *testing.T) {
	src := `import name
import attr
import kw
import param

def param(param=1):
    obj.attr
    call(kw=2)
`
	tree := parse(t, src)
	got := bindingNames(UnusedImports(tree))
	assert.ElementsMatch(t, []string{"name", "attr", "kw", "param"}, got)
}

func TestUnusedImports_StoreCountsAsUse(t *testing.T) {
	tree := parse(t, "import os\nos = None\n")
	assert.Empty(t, UnusedImports(tree))
}

func TestUnusedImports_OrderIndependentAsSet(t *testing.T) {
	imports := []string{"import a", "import b", "from c import d", "import e as f"}
	usage := "\nprint(b, f)\n"

	want := []string{"a", "d"}
	perms := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}}
	for _, perm := range perms {
		var lines []string
		for _, i := range perm {
			lines = append(lines, imports[i])
		}
		tree := parse(t, strings.Join(lines, "\n")+usage)
		assert.ElementsMatch(t, want, bindingNames(UnusedImports(tree)))
	}
}

func TestUnusedImports_Deterministic(t *testing.T) {
	src := "import z\nimport a\nimport m\n"
	tree := parse(t, src)
	first := bindingNames(UnusedImports(tree))
	for range 5 {
		assert.Equal(t, first, bindingNames(UnusedImports(tree)))
	}
	assert.Equal(t, []string{"z", "a", "m"}, first)
}

// ---------------------------------------------------------------------------
// Summarize
// ---------------------------------------------------------------------------

func TestSummarize(t *testing.T) {
	src := `class A:
    def m(self):
        if self.x and self.y:
            return 1
        return 2

def f():
    pass
`
	tree := parse(t, src)
	stats := Summarize(tree)
	assert.Equal(t, 9, stats.TotalLines)
	assert.Equal(t, 2, stats.FunctionCount)
	assert.Equal(t, 1, stats.ClassCount)
	// m spans lines 2..5 (4 lines), f spans 7..8 (2 lines).
	assert.InDelta(t, 3.0, stats.AverageFunctionLength, 1e-9)
	// if + and
	assert.Equal(t, 3, stats.CyclomaticComplexity)
}

func TestSummarize_BooleanChainsCountOnce(t *testing.T) {
	cases := map[string]int{
		"x = a and b\n":                  2,
		"x = a and b and c\n":            2,
		"x = a or b or c or d\n":         2,
		"x = a and b or c\n":             3,
		"x = (a and b) and c\n":          3,
		"if a and b and c:\n    pass\n": 3,
	}
	for src, want := range cases {
		t.Run(src, func(t *testing.T) {
			assert.Equal(t, want, Summarize(parse(t, src)).CyclomaticComplexity)
		})
	}
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(parse(t, ""))
	assert.Equal(t, 0, stats.FunctionCount)
	assert.Equal(t, 0.0, stats.AverageFunctionLength)
	assert.Equal(t, 1, stats.CyclomaticComplexity)
}
