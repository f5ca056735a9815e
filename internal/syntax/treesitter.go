package syntax

import (
	"context"
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// TreeSitterParser implements Parser with the tree-sitter Python grammar.
// A new tree-sitter parser is created per Parse call and the C tree is
// released before Parse returns, so a single TreeSitterParser may be shared
// by concurrent callers.
type TreeSitterParser struct {
	language *tree_sitter.Language
}

// Compile-time check that TreeSitterParser satisfies Parser.
var _ Parser = (*TreeSitterParser)(nil)

// NewTreeSitterParser creates a TreeSitterParser with the Python grammar loaded.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{
		language: tree_sitter.NewLanguage(tree_sitter_python.Language()),
	}
}

// Parse parses source and copies the result into an arena Tree.
func (p *TreeSitterParser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("set language python: %w", err)
	}

	tsTree := parser.Parse(source, nil)
	if tsTree == nil {
		return nil, ErrEmptyTree
	}
	defer tsTree.Close()

	cursor := tsTree.RootNode().Walk()
	defer cursor.Close()

	b := &builder{source: source}
	b.walk(cursor)

	if b.firstErr != nil {
		return nil, b.firstErr
	}
	return &Tree{Source: source, Nodes: b.nodes}, nil
}

// builder copies a tree-sitter tree into arena form and remembers the
// earliest syntax problem it meets: ERROR and MISSING nodes, Python 2
// statements the grammar still accepts, and statements indented unlike their
// siblings.
type builder struct {
	source   []byte
	nodes    []Node
	firstErr *SyntaxError
}

// fail records a syntax error unless an earlier line already failed.
func (b *builder) fail(line int, msg string) {
	if b.firstErr == nil || line < b.firstErr.Line {
		b.firstErr = &SyntaxError{Line: line, Msg: msg}
	}
}

func (b *builder) walk(cursor *tree_sitter.TreeCursor) NodeID {
	node := cursor.Node()
	id := NodeID(len(b.nodes))
	start := node.StartPosition()
	line := int(start.Row) + 1

	b.nodes = append(b.nodes, Node{
		Kind:      node.Kind(),
		Field:     cursor.FieldName(),
		Named:     node.IsNamed(),
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
		StartLine: line,
		StartCol:  int(start.Column),
		EndLine:   int(node.EndPosition().Row) + 1,
	})

	switch {
	case node.IsMissing():
		b.fail(line, fmt.Sprintf("expected '%s'", node.Kind()))
	case node.IsError():
		b.fail(line, "invalid syntax")
	case node.Kind() == KindPrintStatement:
		b.fail(line, "Missing parentheses in call to 'print'")
	case node.Kind() == KindExecStatement:
		b.fail(line, "Missing parentheses in call to 'exec'")
	}

	if cursor.GotoFirstChild() {
		children := []NodeID{b.walk(cursor)}
		for cursor.GotoNextSibling() {
			children = append(children, b.walk(cursor))
		}
		cursor.GotoParent()
		b.nodes[id].Children = children
	}

	if k := node.Kind(); k == KindModule || k == KindBlock {
		b.checkIndent(id)
	}
	return id
}

// checkIndent requires every statement that opens a line in a module or
// block to start at the same column, column 0 for a module. The grammar
// tolerates an unexpected indent and tab/space mixes that Python rejects.
// Statements sharing a line with a header or a semicolon are not checked.
func (b *builder) checkIndent(id NodeID) {
	want, wantIndent := -1, ""
	if b.nodes[id].Kind == KindModule {
		want = 0
	}
	for _, c := range b.nodes[id].Children {
		n := &b.nodes[c]
		if !n.Named || n.Kind == KindComment || n.Kind == KindLineContinuation {
			continue
		}
		indent, ok := b.indentAt(n.StartByte)
		if !ok {
			continue
		}
		if want < 0 {
			want, wantIndent = n.StartCol, indent
			continue
		}
		if n.StartCol == want {
			continue
		}
		if mixesTabsAndSpaces(wantIndent, indent) {
			b.fail(n.StartLine, "inconsistent use of tabs and spaces in indentation")
		} else {
			b.fail(n.StartLine, "unexpected indent")
		}
		return
	}
}

// indentAt returns the whitespace before offset on its line, and false when
// something other than indentation precedes offset.
func (b *builder) indentAt(offset int) (string, bool) {
	for i := offset - 1; i >= 0; i-- {
		switch b.source[i] {
		case '\n':
			return string(b.source[i+1 : offset]), true
		case ' ', '\t', '\f':
		default:
			return "", false
		}
	}
	return string(b.source[:offset]), true
}

func mixesTabsAndSpaces(a, b string) bool {
	tabs := strings.ContainsRune(a, '\t') || strings.ContainsRune(b, '\t')
	spaces := strings.ContainsRune(a, ' ') || strings.ContainsRune(b, ' ')
	return tabs && spaces
}
