package syntax

// NodeID indexes a node in a Tree's arena.
type NodeID int32

// NoNode is returned by lookups that find nothing.
const NoNode NodeID = -1

// Node is one arena-resident syntax node. Positions are copied out of the
// tree-sitter tree so the arena stays valid after the C tree is released.
type Node struct {
	Kind      string   `json:"kind"`
	Field     string   `json:"field,omitempty"` // field name in the parent, if any
	Named     bool     `json:"named"`
	StartByte int      `json:"startByte"`
	EndByte   int      `json:"endByte"`
	StartLine int      `json:"startLine"` // 1-based
	StartCol  int      `json:"startCol"`  // 0-based, in bytes
	EndLine   int      `json:"endLine"`   // 1-based
	Children  []NodeID `json:"children,omitempty"`
}

// Tree is a flattened syntax tree. Nodes[0] is the root and every node's
// children appear after it (pre-order), so iterating Nodes visits the tree
// in source order. A Tree is read-only after Parse returns and is safe for
// concurrent readers.
type Tree struct {
	Source []byte
	Nodes  []Node
}

// Root returns the id of the root node.
func (t *Tree) Root() NodeID {
	if len(t.Nodes) == 0 {
		return NoNode
	}
	return 0
}

// Node returns the node for id. It panics on an out-of-range id, like a slice.
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Kind returns the node kind, or "" for NoNode.
func (t *Tree) Kind(id NodeID) string {
	if id == NoNode {
		return ""
	}
	return t.Nodes[id].Kind
}

// Text returns the source text spanned by id.
func (t *Tree) Text(id NodeID) string {
	if id == NoNode {
		return ""
	}
	n := &t.Nodes[id]
	return string(t.Source[n.StartByte:n.EndByte])
}

// ChildByField returns the first child of id stored under field.
func (t *Tree) ChildByField(id NodeID, field string) NodeID {
	if id == NoNode {
		return NoNode
	}
	for _, c := range t.Nodes[id].Children {
		if t.Nodes[c].Field == field {
			return c
		}
	}
	return NoNode
}

// ChildrenByField returns every child of id stored under field, in order.
func (t *Tree) ChildrenByField(id NodeID, field string) []NodeID {
	if id == NoNode {
		return nil
	}
	var out []NodeID
	for _, c := range t.Nodes[id].Children {
		if t.Nodes[c].Field == field {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named children of id, skipping punctuation and
// keywords.
func (t *Tree) NamedChildren(id NodeID) []NodeID {
	if id == NoNode {
		return nil
	}
	var out []NodeID
	for _, c := range t.Nodes[id].Children {
		if t.Nodes[c].Named {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits id and its descendants in pre-order. When visit returns false
// the node's children are skipped.
func (t *Tree) Walk(id NodeID, visit func(NodeID) bool) {
	if id == NoNode {
		return
	}
	if !visit(id) {
		return
	}
	for _, c := range t.Nodes[id].Children {
		t.Walk(c, visit)
	}
}

// Fold threads acc through a pre-order walk of id's subtree.
func Fold[A any](t *Tree, id NodeID, acc A, step func(A, NodeID) A) A {
	t.Walk(id, func(n NodeID) bool {
		acc = step(acc, n)
		return true
	})
	return acc
}

// CountLines counts lines the way the code statistics report them: newline
// bytes plus one for a non-empty source.
func CountLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := 1
	for _, b := range source {
		if b == '\n' {
			n++
		}
	}
	return n
}
