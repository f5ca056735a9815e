package syntax

// ParentIndex maps each node id to the id of its parent. The root maps to
// NoNode. It is built once per tree and never mutated.
type ParentIndex []NodeID

// BuildParentIndex records the parent of every node in t.
func BuildParentIndex(t *Tree) ParentIndex {
	idx := make(ParentIndex, len(t.Nodes))
	for i := range idx {
		idx[i] = NoNode
	}
	for i := range t.Nodes {
		for _, c := range t.Nodes[i].Children {
			idx[c] = NodeID(i)
		}
	}
	return idx
}

// Parent returns the parent of id, or NoNode for the root.
func (p ParentIndex) Parent(id NodeID) NodeID {
	if id == NoNode || int(id) >= len(p) {
		return NoNode
	}
	return p[id]
}

// Ancestor walks up from id and returns the first ancestor whose kind is in
// kinds, or NoNode.
func (p ParentIndex) Ancestor(t *Tree, id NodeID, kinds ...string) NodeID {
	for cur := p.Parent(id); cur != NoNode; cur = p.Parent(cur) {
		k := t.Nodes[cur].Kind
		for _, want := range kinds {
			if k == want {
				return cur
			}
		}
	}
	return NoNode
}

// FollowingSiblings returns the siblings that come after id under its parent.
func (p ParentIndex) FollowingSiblings(t *Tree, id NodeID) []NodeID {
	parent := p.Parent(id)
	if parent == NoNode {
		return nil
	}
	children := t.Nodes[parent].Children
	for i, c := range children {
		if c == id {
			return children[i+1:]
		}
	}
	return nil
}
