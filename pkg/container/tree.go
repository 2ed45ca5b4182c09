package container

import (
	"io"

	"github.com/nexasip/refcount/pkg/refcount"
)

// treeVariant is the red-black-tree container placeholder. The source
// this runtime is modeled on carries an explicit comment that tree
// support was never finished; every method here reports
// [ErrNotImplemented] rather than attempting a partial implementation.
type treeVariant struct{}

// NewTree is reserved for a future red-black-tree container variant. It
// always returns [ErrNotImplemented]; the red-black-tree container is a
// named placeholder only, per this runtime's explicit scope.
func NewTree(lockKind refcount.Kind, opts Options, sortFn, cmpFn CompareFunc) (*Container, error) {
	return nil, ErrNotImplemented
}

func (treeVariant) destroy() {}

func (treeVariant) allocEmptyClone() (*Container, error) {
	return nil, ErrNotImplemented
}

func (treeVariant) link(refcount.Handle, SearchFlags) (bool, error) {
	return false, ErrNotImplemented
}

func (treeVariant) traverse(any, MatchFunc, SearchFlags, Order) (traverseResult, error) {
	return traverseResult{}, ErrNotImplemented
}

func (treeVariant) iteratorNext(*node, bool) *node {
	return nil
}

func (treeVariant) stats(w io.Writer) {
	_, _ = io.WriteString(w, "tree: not implemented\n")
}

func (treeVariant) check() error {
	return ErrNotImplemented
}
