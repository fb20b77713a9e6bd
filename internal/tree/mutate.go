package tree

import (
	"fmt"
	"slices"
)

// Append moves nodes to the end of n's children, in order.
func (n *Node) Append(nodes ...*Node) error {
	return n.insertAll(nil, nodes)
}

// Prepend moves nodes to the front of n's children, in order.
func (n *Node) Prepend(nodes ...*Node) error {
	return n.insertAll(n.FirstChild(), nodes)
}

// InsertBefore moves node to sit immediately before ref among n's children.
// A nil ref appends. Inserting a node before itself changes nothing.
func (n *Node) InsertBefore(node, ref *Node) error {
	if node != nil && node == ref {
		if ref.parent != n {
			return fmt.Errorf("insert %s: %w", ref, ErrNotChild)
		}
		return nil
	}
	return n.insertAll(ref, []*Node{node})
}

// InsertAllBefore moves nodes, in order, to sit immediately before ref among
// n's children. A nil ref appends. When ref is one of nodes, the block lands
// before the first sibling after ref that is not being moved.
func (n *Node) InsertAllBefore(ref *Node, nodes ...*Node) error {
	return n.insertAll(ref, nodes)
}

// InsertAfter moves node to sit immediately after ref among n's children.
func (n *Node) InsertAfter(node, ref *Node) error {
	if ref == nil {
		return n.Prepend(node)
	}
	if ref.parent != n {
		return fmt.Errorf("insert after %s: %w", ref, ErrNotChild)
	}
	if node == ref {
		return nil
	}
	return n.InsertBefore(node, ref.NextSibling())
}

// Remove detaches n from its parent. Removing a detached node is a no-op.
func (n *Node) Remove() {
	n.detach()
}

// RemoveChildren detaches every child of n.
func (n *Node) RemoveChildren() {
	for _, child := range slices.Clone(n.children) {
		child.detach()
	}
}

func (n *Node) insertAll(ref *Node, nodes []*Node) error {
	if ref != nil && ref.parent != n {
		return fmt.Errorf("insert before %s: %w", ref, ErrNotChild)
	}
	for _, node := range nodes {
		if err := n.checkInsert(node); err != nil {
			return err
		}
	}
	// A reference that is itself being moved is replaced by the first
	// sibling after it that stays put.
	for ref != nil && slices.Contains(nodes, ref) {
		ref = ref.NextSibling()
	}

	for _, node := range nodes {
		node.detach()
	}
	at := len(n.children)
	if ref != nil {
		at = ref.Index()
	}
	for i, node := range nodes {
		n.insertAt(at+i, node)
	}
	return nil
}

func (n *Node) checkInsert(child *Node) error {
	switch {
	case child == nil:
		return ErrNilNode
	case child.doc != n.doc:
		return fmt.Errorf("insert %s into %s: %w", child, n, ErrWrongDocument)
	case n.kind == KindAnchor:
		return fmt.Errorf("insert %s into anchor: %w", child, ErrHierarchy)
	case child.Contains(n):
		return fmt.Errorf("insert %s into its own subtree: %w", child, ErrHierarchy)
	case child == n.doc.root:
		return fmt.Errorf("insert document root: %w", ErrHierarchy)
	}
	return nil
}

func (n *Node) insertAt(i int, child *Node) {
	n.children = slices.Insert(n.children, i, child)
	child.parent = n
	n.doc.queue(n, Record{
		Target:          n,
		Added:           []*Node{child},
		PreviousSibling: child.PreviousSibling(),
		NextSibling:     child.NextSibling(),
	})
}

func (n *Node) detach() {
	parent := n.parent
	if parent == nil {
		return
	}
	i := slices.Index(parent.children, n)
	rec := Record{
		Target:          parent,
		Removed:         []*Node{n},
		PreviousSibling: n.PreviousSibling(),
		NextSibling:     n.NextSibling(),
	}
	parent.children = slices.Delete(parent.children, i, i+1)
	n.parent = nil
	parent.doc.queue(parent, rec)
}
