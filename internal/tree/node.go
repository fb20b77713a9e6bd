// Package tree is the hierarchical node substrate perch indexes: nodes with
// identity, one parent, ordered children, class-like markers, owner slots and
// batched child-list observation.
//
// A Document and its nodes are not safe for concurrent use.
package tree

import (
	"fmt"
	"iter"
	"slices"
)

// Kind distinguishes ordinary elements from placeholder anchors.
type Kind int

const (
	// KindElement is an ordinary node that may have children and controllers.
	KindElement Kind = iota
	// KindAnchor is a childless placeholder used to mark positions.
	KindAnchor
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindAnchor:
		return "anchor"
	default:
		return "unknown"
	}
}

// Node is one element of a Document's tree.
type Node struct {
	doc       *Document
	kind      Kind
	name      string
	label     string
	parent    *Node
	children  []*Node
	markers   []string
	values    map[any]any
	observers []*Observer
}

// Document returns the document that created n.
func (n *Node) Document() *Document { return n.doc }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the name given at creation.
func (n *Node) Name() string { return n.name }

// Label returns the node's display text.
func (n *Node) Label() string { return n.label }

// SetLabel sets the node's display text. Labels are not observed.
func (n *Node) SetLabel(label string) { n.label = label }

// Parent returns the parent node, or nil for a detached node or the
// document root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// LastChild returns the last child or nil.
func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// Index returns n's position among its siblings, or -1 when detached.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	return slices.Index(n.parent.children, n)
}

// NextSibling returns the sibling after n, or nil.
func (n *Node) NextSibling() *Node {
	i := n.Index()
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

// PreviousSibling returns the sibling before n, or nil.
func (n *Node) PreviousSibling() *Node {
	i := n.Index()
	if i <= 0 {
		return nil
	}
	return n.parent.children[i-1]
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// IsConnected reports whether n is reachable from its document's root.
func (n *Node) IsConnected() bool {
	return n.doc != nil && n.doc.root.Contains(n)
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the node just visited.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range slices.Clone(n.children) {
		child.Walk(fn)
	}
}

// Descendants yields every node below n in document order, n excluded.
func (n *Node) Descendants() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		var visit func(*Node) bool
		visit = func(p *Node) bool {
			for _, child := range slices.Clone(p.children) {
				if !yield(child) || !visit(child) {
					return false
				}
			}
			return true
		}
		visit(n)
	}
}

// AddMarker stamps n with marker. Stamping twice is a no-op.
func (n *Node) AddMarker(marker string) {
	if !slices.Contains(n.markers, marker) {
		n.markers = append(n.markers, marker)
	}
}

// RemoveMarker removes marker from n if present.
func (n *Node) RemoveMarker(marker string) {
	n.markers = slices.DeleteFunc(n.markers, func(m string) bool { return m == marker })
}

// HasMarker reports whether n carries marker.
func (n *Node) HasMarker(marker string) bool {
	return slices.Contains(n.markers, marker)
}

// Markers returns n's markers in the order they were added.
func (n *Node) Markers() []string { return slices.Clone(n.markers) }

// WithMarker returns the descendants of n carrying marker, in document
// order. n itself is not included.
func (n *Node) WithMarker(marker string) []*Node {
	var out []*Node
	for d := range n.Descendants() {
		if d.HasMarker(marker) {
			out = append(out, d)
		}
	}
	return out
}

// Value returns the value stored under key, or nil.
// Owner slots let subsystems park per-node state whose lifetime must follow
// the node's.
func (n *Node) Value(key any) any {
	return n.values[key]
}

// SetValue stores v under key.
func (n *Node) SetValue(key, v any) {
	if n.values == nil {
		n.values = make(map[any]any)
	}
	n.values[key] = v
}

// DeleteValue removes the value stored under key.
func (n *Node) DeleteValue(key any) {
	delete(n.values, key)
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.kind == KindAnchor {
		return "~anchor"
	}
	if n.label != "" {
		return fmt.Sprintf("%s %q", n.name, n.label)
	}
	return n.name
}
