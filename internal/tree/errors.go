package tree

import "errors"

var (
	// ErrNilNode indicates a nil node was passed to a mutation.
	ErrNilNode = errors.New("nil node")

	// ErrHierarchy indicates an insertion would create a cycle or give an
	// anchor children.
	ErrHierarchy = errors.New("invalid tree hierarchy")

	// ErrNotChild indicates a reference node is not a child of the target.
	ErrNotChild = errors.New("reference node is not a child")

	// ErrWrongDocument indicates nodes from different documents were mixed.
	ErrWrongDocument = errors.New("node belongs to another document")
)
