package metrics

import (
	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/syntax"
)

// decisionKinds are the node kinds that add one path through a function.
var decisionKinds = map[string]bool{
	syntax.KindIfStatement:        true,
	syntax.KindElifClause:         true,
	syntax.KindForStatement:       true,
	syntax.KindWhileStatement:     true,
	syntax.KindBooleanOperator:    true,
	syntax.KindTryStatement:       true,
	syntax.KindExceptClause:       true,
	syntax.KindExceptGroupClause:  true,
	syntax.KindComparisonOperator: true,
	syntax.KindWithStatement:      true,
	syntax.KindFunctionDefinition: true,
}

// FunctionComplexities returns the cyclomatic complexity of every top-level
// function in tree, in source order. Methods and nested functions are folded
// into their enclosing top-level function rather than reported on their own.
func FunctionComplexities(tree *syntax.Tree) []report.FunctionComplexity {
	fns := syntax.TopLevelFunctions(tree)
	out := make([]report.FunctionComplexity, 0, len(fns))
	for _, fn := range fns {
		out = append(out, report.FunctionComplexity{
			Name:       syntax.DefinitionName(tree, fn),
			Complexity: Complexity(tree, fn),
			Line:       tree.Node(fn).StartLine,
		})
	}
	return out
}

// Complexity scores the subtree under fn: 1 for the straight-line path plus
// one per decision point below it. fn itself is not counted.
func Complexity(tree *syntax.Tree, fn syntax.NodeID) int {
	score := 1
	for _, c := range tree.Node(fn).Children {
		score = syntax.Fold(tree, c, score, func(acc int, id syntax.NodeID) int {
			if decisionKinds[tree.Kind(id)] {
				return acc + 1
			}
			return acc
		})
	}
	return score
}
