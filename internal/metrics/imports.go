package metrics

import (
	"github.com/dusk-indust/codesense/internal/syntax"
)

// ImportBinding is a name bound by an import statement.
type ImportBinding struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// UnusedImports returns the names bound by import statements that are never
// referenced as a plain name anywhere in tree. The result keeps the order in
// which the bindings first appear.
//
// This is a syntactic check: names re-exported through __all__, reached via
// getattr or used only in strings are reported as unused.
func UnusedImports(tree *syntax.Tree) []ImportBinding {
	root := tree.Root()
	if root == syntax.NoNode {
		return nil
	}

	var bindings []ImportBinding
	seen := make(map[string]bool)
	tree.Walk(root, func(id syntax.NodeID) bool {
		switch tree.Kind(id) {
		case syntax.KindImportStatement, syntax.KindImportFrom:
			for _, b := range importBindings(tree, id) {
				if !seen[b.Name] {
					seen[b.Name] = true
					bindings = append(bindings, b)
				}
			}
			return false
		case syntax.KindFutureImport:
			return false
		}
		return true
	})

	used := referencedNames(tree, root)

	var unused []ImportBinding
	for _, b := range bindings {
		if !used[b.Name] {
			unused = append(unused, b)
		}
	}
	return unused
}

// importBindings lists the names one import statement binds.
// "import a.b" binds a, "import a.b as c" binds c, "from m import s" binds s.
func importBindings(tree *syntax.Tree, stmt syntax.NodeID) []ImportBinding {
	fromImport := tree.Kind(stmt) == syntax.KindImportFrom
	line := tree.Node(stmt).StartLine

	var out []ImportBinding
	for _, name := range tree.ChildrenByField(stmt, "name") {
		var bound string
		switch tree.Kind(name) {
		case syntax.KindAliasedImport:
			bound = tree.Text(tree.ChildByField(name, "alias"))
		case syntax.KindDottedName:
			if fromImport {
				bound = tree.Text(name)
			} else {
				bound = firstSegment(tree, name)
			}
		}
		if bound != "" {
			out = append(out, ImportBinding{Name: bound, Line: line})
		}
	}
	return out
}

func firstSegment(tree *syntax.Tree, dotted syntax.NodeID) string {
	for _, c := range tree.NamedChildren(dotted) {
		if tree.Kind(c) == syntax.KindIdentifier {
			return tree.Text(c)
		}
	}
	return tree.Text(dotted)
}

// referencedNames collects every identifier used as a plain name: loads and
// stores, but not attribute members, keyword-argument names, parameter
// names, definition names or anything inside an import statement.
func referencedNames(tree *syntax.Tree, root syntax.NodeID) map[string]bool {
	used := make(map[string]bool)
	var visit func(id syntax.NodeID)
	visit = func(id syntax.NodeID) {
		n := tree.Node(id)
		switch n.Kind {
		case syntax.KindIdentifier:
			used[tree.Text(id)] = true
			return
		case syntax.KindImportStatement, syntax.KindImportFrom, syntax.KindFutureImport,
			"global_statement", "nonlocal_statement":
			return
		case syntax.KindParameters, syntax.KindLambdaParameters:
			visitParameterDefaults(tree, id, visit)
			return
		}
		for _, c := range n.Children {
			if isBindingSite(tree, id, c) {
				continue
			}
			visit(c)
		}
	}
	visit(root)
	return used
}

// isBindingSite reports whether child of parent is a name slot that never
// holds a reference.
func isBindingSite(tree *syntax.Tree, parent, child syntax.NodeID) bool {
	field := tree.Node(child).Field
	switch tree.Kind(parent) {
	case syntax.KindAttribute:
		return field == "attribute"
	case syntax.KindFunctionDefinition, syntax.KindClassDefinition, syntax.KindKeywordArgument:
		return field == "name"
	}
	return false
}

// visitParameterDefaults descends only into default values and annotations
// of a parameter list; the parameter names themselves are bindings.
func visitParameterDefaults(tree *syntax.Tree, params syntax.NodeID, visit func(syntax.NodeID)) {
	for _, p := range tree.NamedChildren(params) {
		for _, field := range []string{"value", "type"} {
			for _, c := range tree.ChildrenByField(p, field) {
				visit(c)
			}
		}
	}
}
