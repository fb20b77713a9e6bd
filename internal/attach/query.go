package attach

import (
	"fmt"
	"reflect"

	"github.com/zjrosen/perch/internal/log"
	"github.com/zjrosen/perch/internal/tree"
)

// At wraps a bare node so it can be passed where a starting controller is
// accepted.
func At(n *tree.Node) Controller { return nodeRef{n} }

type nodeRef struct{ n *tree.Node }

func (r nodeRef) Root() *tree.Node { return r.n }

// RootOf returns c's root, or nil when c is nil or a typed nil.
func RootOf(c Controller) *tree.Node {
	if isNil(c) {
		return nil
	}
	return c.Root()
}

// Of returns the first controller on n itself that is a T. T may be a
// concrete controller type or a capability interface.
func Of[T any](s *Store, n *tree.Node) (T, bool) {
	for _, c := range s.snapshot(n) {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// All returns every controller on n itself that is a T, in attachment order.
func All[T any](s *Store, n *tree.Node) []T {
	var out []T
	for _, c := range s.snapshot(n) {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Get walks from n up through its ancestors and returns the first T found.
// A detached node ends the walk after itself.
func Get[T any](s *Store, n *tree.Node) (T, bool) {
	for cur := n; cur != nil; cur = cur.Parent() {
		if v, ok := Of[T](s, cur); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Over is Get starting at via's root, for callers that cannot work without
// the ancestor. The error wraps ErrNotFound.
func Over[T any](s *Store, via Controller) (T, error) {
	start := RootOf(via)
	if v, ok := Get[T](s, start); ok {
		return v, nil
	}
	var zero T
	name := typeName[T]()
	log.Error(log.CatAttach, "Required controller not found", "type", name, "from", start)
	return zero, fmt.Errorf("%s above %s: %w", name, start, ErrNotFound)
}

// MustOver is Over for call sites where a missing ancestor is a bug.
func MustOver[T any](s *Store, via Controller) T {
	v, err := Over[T](s, via)
	if err != nil {
		panic(err)
	}
	return v
}

// Under returns the T controllers of every descendant of via's root, in
// document order. Candidates are found by marker and re-checked on their
// node, so a type whose tag was never allocated yields nil.
func Under[T any](s *Store, via Controller) []T {
	start := RootOf(via)
	if start != nil && start.Kind() == tree.KindAnchor {
		start = start.Parent()
	}
	if start == nil {
		return nil
	}
	tg, ok := s.tags.Lookup(reflect.TypeFor[T]())
	if !ok {
		return nil
	}

	var out []T
	for _, n := range start.WithMarker(tg.Marker()) {
		if v, ok := Of[T](s, n); ok {
			out = append(out, v)
		}
	}
	return out
}

// Each calls fn for every result of Under and returns the first of them.
func Each[T any](s *Store, via Controller, fn func(T)) (T, bool) {
	found := Under[T](s, via)
	if fn != nil {
		for _, v := range found {
			fn(v)
		}
	}
	if len(found) == 0 {
		var zero T
		return zero, false
	}
	return found[0], true
}

// Next returns the T on the nearest following sibling of n that has one.
func Next[T any](s *Store, n *tree.Node) (T, bool) {
	return sibling[T](s, n, (*tree.Node).NextSibling)
}

// Previous returns the T on the nearest preceding sibling of n that has one.
func Previous[T any](s *Store, n *tree.Node) (T, bool) {
	return sibling[T](s, n, (*tree.Node).PreviousSibling)
}

func sibling[T any](s *Store, n *tree.Node, step func(*tree.Node) *tree.Node) (T, bool) {
	if n != nil {
		for cur := step(n); cur != nil; cur = step(cur) {
			if v, ok := Of[T](s, cur); ok {
				return v, true
			}
		}
	}
	var zero T
	return zero, false
}

// Map returns the T attached to each of nodes, skipping nodes without one.
func Map[T any](s *Store, nodes []*tree.Node) []T {
	var out []T
	for _, n := range nodes {
		if v, ok := Of[T](s, n); ok {
			out = append(out, v)
		}
	}
	return out
}

// Children returns the T attached to each child of container, in order.
func Children[T any](s *Store, container *tree.Node) []T {
	if container == nil {
		return nil
	}
	return Map[T](s, container.Children())
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
