// Package collection provides a live, ordered view of the children of one
// container node that carry a controller of a chosen type.
//
// Nothing is cached: every read rescans the container's children, so the
// view cannot drift from the tree however the tree was edited.
package collection

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"

	"github.com/zjrosen/perch/internal/attach"
	"github.com/zjrosen/perch/internal/log"
	"github.com/zjrosen/perch/internal/tree"
)

// Collection mirrors the T-bearing children of a container.
type Collection[T attach.Controller] struct {
	store     *attach.Store
	container *tree.Node
	anchor    *tree.Node
	observer  *tree.Observer
	subs      []*Subscription
}

type entry[T any] struct {
	node *tree.Node
	ctrl T
}

// New binds a collection to container and appends its end anchor.
// Controllers must be attached in store before their roots count as
// members. It fails with tree.ErrHierarchy when container is an anchor.
func New[T attach.Controller](store *attach.Store, container *tree.Node) (*Collection[T], error) {
	c := &Collection[T]{
		store:     store,
		container: container,
		anchor:    container.Document().CreateAnchor(),
	}
	if err := container.Append(c.anchor); err != nil {
		return nil, fmt.Errorf("anchoring collection in %s: %w", container, err)
	}
	return c, nil
}

// Container returns the bound container node.
func (c *Collection[T]) Container() *tree.Node { return c.container }

// Anchor returns the end anchor placeholder.
func (c *Collection[T]) Anchor() *tree.Node { return c.anchor }

func (c *Collection[T]) items() []entry[T] {
	var out []entry[T]
	for _, child := range c.container.Children() {
		if v, ok := attach.Of[T](c.store, child); ok {
			out = append(out, entry[T]{node: child, ctrl: v})
		}
	}
	return out
}

// Slice returns the members in tree order. The result is never nil.
func (c *Collection[T]) Slice() []T {
	items := c.items()
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, it.ctrl)
	}
	return out
}

// All yields index and member pairs in tree order, as of the start of the
// iteration.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, it := range c.items() {
			if !yield(i, it.ctrl) {
				return
			}
		}
	}
}

// At returns the member at index; negative indices count from the end.
func (c *Collection[T]) At(index int) (T, bool) {
	items := c.items()
	if i, ok := resolve(index, len(items)); ok {
		return items[i].ctrl, true
	}
	var zero T
	return zero, false
}

// Len returns the current number of members.
func (c *Collection[T]) Len() int { return len(c.items()) }

// IndexOf returns the position of ctrl's root among the members, or -1.
func (c *Collection[T]) IndexOf(ctrl T) int {
	root := attach.RootOf(ctrl)
	if root == nil {
		return -1
	}
	return slices.IndexFunc(c.items(), func(it entry[T]) bool { return it.node == root })
}

// Insert appends the roots of cs after the last member and returns the index
// of the first of them.
func (c *Collection[T]) Insert(cs ...T) int {
	return c.InsertAt(c.Len(), cs...)
}

// InsertAt places the roots of cs, in order, before the member currently at
// index. Indices at or past the end append before the end anchor; negative
// indices count from the end and stop at the front. An empty collection
// puts the roots at the very front of the container. Returns the effective
// index, or -1 if nothing was inserted.
//
// InsertAt only positions nodes; it does not attach controllers.
func (c *Collection[T]) InsertAt(index int, cs ...T) int {
	if len(cs) == 0 {
		return -1
	}
	c.ensureAnchor()

	roots := make([]*tree.Node, 0, len(cs))
	for _, ctrl := range cs {
		if r := attach.RootOf(ctrl); r != nil {
			roots = append(roots, r)
		}
	}
	if len(roots) == 0 {
		return -1
	}

	items := c.items()
	at := clampIndex(index, len(items))

	var err error
	switch {
	case len(items) == 0:
		err = c.container.Prepend(roots...)
	case at < len(items):
		err = c.container.InsertAllBefore(items[at].node, roots...)
	default:
		err = c.container.InsertAllBefore(c.anchor, roots...)
	}
	if err != nil {
		log.ErrorErr(log.CatCollection, "Insert failed", err, "container", c.container, "index", at)
		return -1
	}

	log.Debug(log.CatCollection, "Inserted members", "container", c.container, "index", at, "count", len(roots))
	return at
}

// Move repositions the member at from so that it ends up at index to, with
// every other member keeping its relative order. Negative indices count from
// the end. Returns false, changing nothing, when either index resolves to no
// member or both name the same one.
func (c *Collection[T]) Move(from, to int) bool {
	items := c.items()
	fi, ok := resolve(from, len(items))
	if !ok {
		return false
	}
	ti, ok := resolve(to, len(items))
	if !ok || fi == ti {
		return false
	}

	src, dst := items[fi].node, items[ti].node
	var err error
	if fi > ti {
		err = c.container.InsertBefore(src, dst)
	} else {
		err = c.container.InsertAfter(src, dst)
	}
	if err != nil {
		log.ErrorErr(log.CatCollection, "Move failed", err, "container", c.container, "from", fi, "to", ti)
		return false
	}

	log.Debug(log.CatCollection, "Moved member", "container", c.container, "from", fi, "to", ti)
	return true
}

// Remove detaches the root of ctrl if it is a member. The controller stays
// attached to its root.
func (c *Collection[T]) Remove(ctrl T) bool {
	if c.IndexOf(ctrl) < 0 {
		return false
	}
	ctrl.Root().Remove()
	return true
}

// MarshalJSON encodes the members in tree order.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Slice())
}

// ensureAnchor re-appends the anchor if foreign edits detached it.
func (c *Collection[T]) ensureAnchor() {
	if c.anchor.Parent() == c.container {
		return
	}
	log.Warn(log.CatCollection, "End anchor was detached, restoring", "container", c.container)
	_ = c.container.Append(c.anchor)
}

// resolve maps index onto [0, n), counting negative indices from the end.
func resolve(index, n int) (int, bool) {
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return 0, false
	}
	return index, true
}

// clampIndex maps index onto [0, n] for insertion.
func clampIndex(index, n int) int {
	if index < 0 {
		index += n
	}
	return min(max(index, 0), n)
}
