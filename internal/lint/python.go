package lint

import (
	"fmt"

	"github.com/dusk-indust/codesense/internal/config"
	"github.com/dusk-indust/codesense/internal/report"
	"github.com/dusk-indust/codesense/internal/syntax"
)

// Python structural issue kinds.
const (
	KindMissingDocstring = "Missing Docstring"
	KindLongFunction     = "Long Function"
	KindComplexCondition = "Complex Condition"
	KindLongLoop         = "Long Loop"
	KindInfiniteLoop     = "Potential Infinite Loop"
	KindUnusedVariable   = "Unused Variable"
)

// PythonLinter applies structural rules to a parsed Python module. The
// rules report no severity; the dispatcher scores only the metric-derived
// issues it adds itself.
type PythonLinter struct {
	cfg config.Lint
}

// NewPythonLinter returns a PythonLinter using the size limits in cfg.
func NewPythonLinter(cfg config.Lint) *PythonLinter {
	return &PythonLinter{cfg: cfg}
}

// Lint walks tree in pre-order and returns the issues in the order the
// offending nodes appear. parents must have been built from tree.
func (l *PythonLinter) Lint(tree *syntax.Tree, parents syntax.ParentIndex) []report.Issue {
	var issues []report.Issue
	tree.Walk(tree.Root(), func(id syntax.NodeID) bool {
		switch tree.Kind(id) {
		case syntax.KindFunctionDefinition:
			// Coroutines are exempt from the function rules.
			if syntax.IsAsync(tree, id) {
				break
			}
			issues = l.checkFunctionLength(issues, tree, id)
			issues = l.checkDocstring(issues, tree, id)
		case syntax.KindIfStatement, syntax.KindElifClause:
			issues = l.checkCondition(issues, tree, id)
		case syntax.KindForStatement:
			issues = l.checkRangeLoop(issues, tree, id)
		case syntax.KindWhileStatement:
			issues = l.checkWhileTrue(issues, tree, id)
		case syntax.KindAssignment:
			issues = l.checkUnusedAssignment(issues, tree, parents, id)
		}
		return true
	})
	return issues
}

func (l *PythonLinter) checkDocstring(issues []report.Issue, tree *syntax.Tree, fn syntax.NodeID) []report.Issue {
	body := syntax.Body(tree, fn)
	if len(body) > 0 && syntax.IsDocstring(tree, body[0]) {
		return issues
	}
	return append(issues, report.Issue{
		Kind:   KindMissingDocstring,
		Detail: fmt.Sprintf("Function '%s' has no docstring.", syntax.DefinitionName(tree, fn)),
		Line:   tree.Node(fn).StartLine,
	})
}

// checkFunctionLength measures from the first to the last body statement.
func (l *PythonLinter) checkFunctionLength(issues []report.Issue, tree *syntax.Tree, fn syntax.NodeID) []report.Issue {
	body := syntax.Body(tree, fn)
	if len(body) == 0 {
		return issues
	}
	length := tree.Node(body[len(body)-1]).StartLine - tree.Node(body[0]).StartLine + 1
	if length <= l.cfg.MaxFunctionLines {
		return issues
	}
	return append(issues, report.Issue{
		Kind:   KindLongFunction,
		Detail: fmt.Sprintf("Function '%s' is too long (%d lines).", syntax.DefinitionName(tree, fn), length),
		Line:   tree.Node(fn).StartLine,
	})
}

func (l *PythonLinter) checkCondition(issues []report.Issue, tree *syntax.Tree, stmt syntax.NodeID) []report.Issue {
	cond := syntax.Unparen(tree, tree.ChildByField(stmt, "condition"))
	if tree.Kind(cond) != syntax.KindBooleanOperator {
		return issues
	}
	n := boolOperands(tree, cond, boolOperator(tree, cond))
	if n <= l.cfg.MaxConditionOperands {
		return issues
	}
	return append(issues, report.Issue{
		Kind:   KindComplexCondition,
		Detail: fmt.Sprintf("Condition has %d boolean checks.", n),
		Line:   tree.Node(stmt).StartLine,
	})
}

func (l *PythonLinter) checkRangeLoop(issues []report.Issue, tree *syntax.Tree, loop syntax.NodeID) []report.Issue {
	iter := syntax.Unparen(tree, tree.ChildByField(loop, "right"))
	if tree.Kind(iter) != syntax.KindCall {
		return issues
	}
	fn := tree.ChildByField(iter, "function")
	if tree.Kind(fn) != syntax.KindIdentifier || tree.Text(fn) != "range" {
		return issues
	}
	if len(syntax.Body(tree, loop)) <= l.cfg.MaxLoopStatements {
		return issues
	}
	return append(issues, report.Issue{
		Kind:   KindLongLoop,
		Detail: fmt.Sprintf("Loop contains more than %d statements.", l.cfg.MaxLoopStatements),
		Line:   tree.Node(loop).StartLine,
	})
}

func (l *PythonLinter) checkWhileTrue(issues []report.Issue, tree *syntax.Tree, loop syntax.NodeID) []report.Issue {
	cond := syntax.Unparen(tree, tree.ChildByField(loop, "condition"))
	if tree.Kind(cond) != syntax.KindTrue {
		return issues
	}
	return append(issues, report.Issue{
		Kind:   KindInfiniteLoop,
		Detail: "While True loop detected.",
		Line:   tree.Node(loop).StartLine,
	})
}

// checkUnusedAssignment flags plain-name targets of an assignment statement
// that no later statement in the same block reads back as its value, e.g.
// "y = x", "return x" or a bare "x". Reads nested in calls or other
// expressions are not seen.
func (l *PythonLinter) checkUnusedAssignment(
	issues []report.Issue,
	tree *syntax.Tree,
	parents syntax.ParentIndex,
	assign syntax.NodeID,
) []report.Issue {
	stmt := parents.Parent(assign)
	if tree.Kind(stmt) != syntax.KindExpressionStatement {
		// Inner link of a chained assignment, handled with the outer one.
		return issues
	}
	if tree.ChildByField(assign, "type") != syntax.NoNode {
		return issues
	}

	following := parents.FollowingSiblings(tree, stmt)
	for _, target := range assignmentTargets(tree, assign) {
		name := tree.Text(target)
		if readLater(tree, following, name) {
			continue
		}
		issues = append(issues, report.Issue{
			Kind:   KindUnusedVariable,
			Detail: fmt.Sprintf("Variable '%s' is assigned but never used.", name),
			Line:   tree.Node(assign).StartLine,
		})
	}
	return issues
}

// assignmentTargets returns the identifier targets of "a = b = value".
func assignmentTargets(tree *syntax.Tree, assign syntax.NodeID) []syntax.NodeID {
	var out []syntax.NodeID
	for cur := assign; tree.Kind(cur) == syntax.KindAssignment; cur = tree.ChildByField(cur, "right") {
		if left := tree.ChildByField(cur, "left"); tree.Kind(left) == syntax.KindIdentifier {
			out = append(out, left)
		}
	}
	return out
}

// readLater reports whether any statement uses name directly as its value.
func readLater(tree *syntax.Tree, stmts []syntax.NodeID, name string) bool {
	for _, s := range stmts {
		v := statementValue(tree, s)
		if tree.Kind(v) == syntax.KindIdentifier && tree.Text(v) == name {
			return true
		}
	}
	return false
}

// statementValue returns the value expression of an expression, assignment
// or return statement, with parentheses removed.
func statementValue(tree *syntax.Tree, stmt syntax.NodeID) syntax.NodeID {
	switch tree.Kind(stmt) {
	case syntax.KindReturnStatement:
		named := tree.NamedChildren(stmt)
		if len(named) != 1 {
			return syntax.NoNode
		}
		return syntax.Unparen(tree, named[0])
	case syntax.KindExpressionStatement:
		expr := syntax.SoleExpression(tree, stmt)
		switch tree.Kind(expr) {
		case syntax.KindAssignment:
			cur := expr
			for tree.Kind(cur) == syntax.KindAssignment {
				cur = tree.ChildByField(cur, "right")
			}
			return syntax.Unparen(tree, cur)
		case syntax.KindAugmentedAssignment:
			return syntax.Unparen(tree, tree.ChildByField(expr, "right"))
		}
		return syntax.Unparen(tree, expr)
	}
	return syntax.NoNode
}

func boolOperator(tree *syntax.Tree, id syntax.NodeID) string {
	return tree.Kind(tree.ChildByField(id, "operator"))
}

// boolOperands counts the operands of a chain of the same boolean operator,
// so "a and b and c" has three while "(a or b) and c" has two.
func boolOperands(tree *syntax.Tree, id syntax.NodeID, op string) int {
	if tree.Kind(id) != syntax.KindBooleanOperator || boolOperator(tree, id) != op {
		return 1
	}
	return boolOperands(tree, tree.ChildByField(id, "left"), op) +
		boolOperands(tree, tree.ChildByField(id, "right"), op)
}
