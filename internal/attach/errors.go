package attach

import "errors"

var (
	// ErrNotFound indicates a required controller was not found on the node
	// or any of its ancestors. It signals a controller used outside the
	// ancestor context it depends on.
	ErrNotFound = errors.New("controller not found")

	// ErrNilController indicates a nil controller was attached.
	ErrNilController = errors.New("nil controller")

	// ErrNoRoot indicates a controller whose Root returned nil.
	ErrNoRoot = errors.New("controller has no root node")

	// ErrAnchor indicates an attempt to attach a controller to an anchor node.
	ErrAnchor = errors.New("anchors cannot carry controllers")
)
