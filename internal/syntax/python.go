package syntax

import "strings"

// Python grammar node kinds used by the analyzers.
const (
	KindModule              = "module"
	KindBlock               = "block"
	KindComment             = "comment"
	KindFunctionDefinition  = "function_definition"
	KindClassDefinition     = "class_definition"
	KindDecoratedDefinition = "decorated_definition"
	KindExpressionStatement = "expression_statement"
	KindAssignment          = "assignment"
	KindAugmentedAssignment = "augmented_assignment"
	KindReturnStatement     = "return_statement"
	KindIfStatement         = "if_statement"
	KindElifClause          = "elif_clause"
	KindForStatement        = "for_statement"
	KindWhileStatement      = "while_statement"
	KindTryStatement        = "try_statement"
	KindExceptClause        = "except_clause"
	KindExceptGroupClause   = "except_group_clause"
	KindWithStatement       = "with_statement"
	KindBooleanOperator     = "boolean_operator"
	KindComparisonOperator  = "comparison_operator"
	KindParenthesized       = "parenthesized_expression"
	KindCall                = "call"
	KindIdentifier          = "identifier"
	KindAttribute           = "attribute"
	KindTrue                = "true"
	KindString              = "string"
	KindConcatenatedString  = "concatenated_string"
	KindImportStatement     = "import_statement"
	KindImportFrom          = "import_from_statement"
	KindFutureImport        = "future_import_statement"
	KindAliasedImport       = "aliased_import"
	KindDottedName          = "dotted_name"
	KindWildcardImport      = "wildcard_import"
	KindKeywordArgument     = "keyword_argument"
	KindParameters          = "parameters"
	KindLambdaParameters    = "lambda_parameters"
	KindLineContinuation    = "line_continuation"

	// Python 2 statements the grammar still parses.
	KindPrintStatement = "print_statement"
	KindExecStatement  = "exec_statement"
)

// TopLevelFunctions returns the function definitions that sit directly in the
// module body, including decorated ones, in source order.
func TopLevelFunctions(t *Tree) []NodeID {
	root := t.Root()
	if root == NoNode {
		return nil
	}
	var out []NodeID
	for _, c := range t.Nodes[root].Children {
		switch t.Nodes[c].Kind {
		case KindFunctionDefinition:
			out = append(out, c)
		case KindDecoratedDefinition:
			if def := t.ChildByField(c, "definition"); t.Kind(def) == KindFunctionDefinition {
				out = append(out, def)
			}
		}
	}
	return out
}

// IsAsync reports whether the function definition fn is an async def.
func IsAsync(t *Tree, fn NodeID) bool {
	children := t.Nodes[fn].Children
	return len(children) > 0 && t.Nodes[children[0]].Kind == "async"
}

// DefinitionName returns the name of a function or class definition.
func DefinitionName(t *Tree, def NodeID) string {
	return t.Text(t.ChildByField(def, "name"))
}

// Statements returns the statements of a block or module, skipping comments.
func Statements(t *Tree, block NodeID) []NodeID {
	if block == NoNode {
		return nil
	}
	var out []NodeID
	for _, c := range t.NamedChildren(block) {
		if t.Nodes[c].Kind != KindComment {
			out = append(out, c)
		}
	}
	return out
}

// Body returns the statements of the body field of a compound statement.
func Body(t *Tree, id NodeID) []NodeID {
	return Statements(t, t.ChildByField(id, "body"))
}

// Unparen strips any number of enclosing parentheses from an expression.
func Unparen(t *Tree, id NodeID) NodeID {
	for t.Kind(id) == KindParenthesized {
		inner := NoNode
		for _, c := range t.NamedChildren(id) {
			if t.Nodes[c].Kind != KindComment {
				inner = c
				break
			}
		}
		if inner == NoNode {
			return id
		}
		id = inner
	}
	return id
}

// SoleExpression returns the single expression of an expression statement,
// or NoNode when the statement holds several (a bare tuple) or none.
func SoleExpression(t *Tree, stmt NodeID) NodeID {
	if t.Kind(stmt) != KindExpressionStatement {
		return NoNode
	}
	named := t.NamedChildren(stmt)
	if len(named) != 1 {
		return NoNode
	}
	return named[0]
}

// IsDocstring reports whether stmt is a plain string literal statement, the
// form Python treats as a docstring. Byte strings and f-strings do not count.
func IsDocstring(t *Tree, stmt NodeID) bool {
	expr := SoleExpression(t, stmt)
	switch t.Kind(expr) {
	case KindString:
		return isPlainString(t.Text(expr))
	case KindConcatenatedString:
		for _, part := range t.NamedChildren(expr) {
			if t.Kind(part) == KindString && !isPlainString(t.Text(part)) {
				return false
			}
		}
		return true
	}
	return false
}

func isPlainString(lit string) bool {
	quote := strings.IndexAny(lit, `"'`)
	if quote < 0 {
		return false
	}
	prefix := strings.ToLower(lit[:quote])
	return !strings.ContainsAny(prefix, "bf")
}
