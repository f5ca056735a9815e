package syntax

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyTree is returned when the grammar produced no tree at all.
var ErrEmptyTree = errors.New("syntax: parser returned no tree")

// SyntaxError reports the first place the grammar could not make sense of
// the source.
type SyntaxError struct {
	Line int    // 1-based
	Msg  string // short description, e.g. "invalid syntax"
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (line %d)", e.Msg, e.Line)
}

// Parser turns Python source into an arena Tree.
// Implementations: TreeSitterParser (production), stubs in tests.
type Parser interface {
	// Parse returns the tree for source, a *SyntaxError when the source does
	// not parse cleanly, or another error when parsing itself failed.
	Parse(ctx context.Context, source []byte) (*Tree, error)
}

// AsSyntaxError unwraps err into a *SyntaxError if it is one.
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
