package metrics

import (
	"math"

	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/syntax"
)

// moduleDecisionKinds feed the whole-module complexity in CodeStats. Unlike
// per-function complexity, comparisons, with-blocks and nested definitions
// are not counted, and a chain of one boolean operator counts once.
var moduleDecisionKinds = map[string]bool{
	syntax.KindIfStatement:       true,
	syntax.KindElifClause:        true,
	syntax.KindForStatement:      true,
	syntax.KindWhileStatement:    true,
	syntax.KindBooleanOperator:   true,
	syntax.KindTryStatement:      true,
	syntax.KindExceptClause:      true,
	syntax.KindExceptGroupClause: true,
}

// Summarize computes size and shape statistics for a parsed source unit.
func Summarize(tree *syntax.Tree) report.CodeStats {
	stats := report.CodeStats{
		TotalLines:           syntax.CountLines(tree.Source),
		CyclomaticComplexity: 1,
	}
	root := tree.Root()
	if root == syntax.NoNode {
		return stats
	}

	var lengths []int
	// Operands that continue an enclosing chain of the same boolean
	// operator, as in "a and b and c".
	chained := make(map[syntax.NodeID]bool)
	tree.Walk(root, func(id syntax.NodeID) bool {
		kind := tree.Kind(id)
		switch kind {
		case syntax.KindFunctionDefinition:
			stats.FunctionCount++
			lengths = append(lengths, functionSpan(tree, id))
		case syntax.KindClassDefinition:
			stats.ClassCount++
		case syntax.KindBooleanOperator:
			op := boolOperator(tree, id)
			for _, side := range []string{"left", "right"} {
				if c := tree.ChildByField(id, side); tree.Kind(c) == syntax.KindBooleanOperator && boolOperator(tree, c) == op {
					chained[c] = true
				}
			}
			if chained[id] {
				return true
			}
		}
		if moduleDecisionKinds[kind] {
			stats.CyclomaticComplexity++
		}
		return true
	})

	if len(lengths) > 0 {
		sum := 0
		for _, l := range lengths {
			sum += l
		}
		avg := float64(sum) / float64(len(lengths))
		stats.AverageFunctionLength = math.Round(avg*100) / 100
	}
	return stats
}

// functionSpan is the number of lines from the def line to the start of the
// last node inside the function.
func functionSpan(tree *syntax.Tree, fn syntax.NodeID) int {
	start := tree.Node(fn).StartLine
	end := syntax.Fold(tree, fn, start, func(acc int, id syntax.NodeID) int {
		return max(acc, tree.Node(id).StartLine)
	})
	return end - start + 1
}

func boolOperator(tree *syntax.Tree, id syntax.NodeID) string {
	return tree.Kind(tree.ChildByField(id, "operator"))
}
