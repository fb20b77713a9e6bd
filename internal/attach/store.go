// Package attach associates controller objects with tree nodes and finds
// them again by walking up, down and across the tree.
//
// A Store keeps each node's controllers in the node's own owner slot, so a
// record is reclaimed together with its node; the Store itself only holds
// weak pointers, indexed by an integer handle assigned on first attachment.
package attach

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"sync"
	"weak"

	"github.com/zjrosen/perch/internal/log"
	"github.com/zjrosen/perch/internal/tag"
	"github.com/zjrosen/perch/internal/tree"
)

// Controller is an application object bound to exactly one root node.
type Controller interface {
	Root() *tree.Node
}

type record struct {
	handle uint64
	// controllers is copy-on-write: every change installs a new slice so
	// walks iterate the snapshot they started with.
	controllers []Controller
}

// Store is the source of truth for what is attached where. Scope one Store
// to one document or editing session.
type Store struct {
	mu   sync.Mutex
	tags *tag.Registry
	next uint64
	live map[uint64]weak.Pointer[tree.Node]
}

// Option configures a Store.
type Option func(*Store)

// WithRegistry makes the store stamp tags from r instead of tag.Default.
func WithRegistry(r *tag.Registry) Option {
	return func(s *Store) {
		if r != nil {
			s.tags = r
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		tags: tag.Default,
		live: make(map[uint64]weak.Pointer[tree.Node]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the tag registry the store stamps from.
func (s *Store) Registry() *tag.Registry { return s.tags }

// Attach records c under c.Root(), after any controllers already there, and
// stamps the root with the markers of c's type and declared capabilities.
// Attaching the same controller twice is a no-op. A second controller of
// the same type is kept too; single-result lookups return the earliest.
func (s *Store) Attach(c Controller) error {
	if isNil(c) {
		return ErrNilController
	}
	root := c.Root()
	if root == nil {
		return fmt.Errorf("attach %T: %w", c, ErrNoRoot)
	}
	if root.Kind() == tree.KindAnchor {
		return fmt.Errorf("attach %T: %w", c, ErrAnchor)
	}

	rec := s.record(root, true)
	for _, existing := range rec.controllers {
		if sameController(existing, c) {
			return nil
		}
	}
	rec.controllers = append(slices.Clip(rec.controllers), c)

	counts := stampCounts(root)
	for _, tg := range s.tags.Stamps(reflect.TypeOf(c)) {
		counts[tg.Marker()]++
		root.AddMarker(tg.Marker())
	}

	log.Debug(log.CatAttach, "Attached controller",
		"type", fmt.Sprintf("%T", c), "node", root, "handle", rec.handle, "count", len(rec.controllers))
	return nil
}

// Detach removes c from its root and drops markers no remaining controller
// accounts for, counting controllers attached through any store. Returns
// false if c was not attached.
func (s *Store) Detach(c Controller) bool {
	if isNil(c) || c.Root() == nil {
		return false
	}
	root := c.Root()
	rec := s.record(root, false)
	if rec == nil {
		return false
	}
	i := slices.IndexFunc(rec.controllers, func(x Controller) bool { return sameController(x, c) })
	if i < 0 {
		return false
	}
	rec.controllers = slices.Delete(slices.Clone(rec.controllers), i, i+1)

	counts := stampCounts(root)
	for _, tg := range s.tags.Stamps(reflect.TypeOf(c)) {
		m := tg.Marker()
		if counts[m] > 1 {
			counts[m]--
			continue
		}
		delete(counts, m)
		root.RemoveMarker(m)
	}
	if len(counts) == 0 {
		root.DeleteValue(stampKey{})
	}

	if len(rec.controllers) == 0 {
		root.DeleteValue(s)
		s.mu.Lock()
		delete(s.live, rec.handle)
		s.mu.Unlock()
	}

	log.Debug(log.CatAttach, "Detached controller",
		"type", fmt.Sprintf("%T", c), "node", root, "handle", rec.handle)
	return true
}

// Attached returns a copy of the controllers attached to n, in attachment
// order.
func (s *Store) Attached(n *tree.Node) []Controller {
	return slices.Clone(s.snapshot(n))
}

// Handle returns the arena handle assigned to n, if n carries a record.
func (s *Store) Handle(n *tree.Node) (uint64, bool) {
	rec := s.record(n, false)
	if rec == nil {
		return 0, false
	}
	return rec.handle, true
}

// Len returns the number of nodes with a live record.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

func (s *Store) snapshot(n *tree.Node) []Controller {
	if rec := s.record(n, false); rec != nil {
		return rec.controllers
	}
	return nil
}

func (s *Store) record(n *tree.Node, create bool) *record {
	if n == nil {
		return nil
	}
	if rec, ok := n.Value(s).(*record); ok {
		return rec
	}
	if !create {
		return nil
	}

	s.mu.Lock()
	s.next++
	rec := &record{handle: s.next}
	s.live[rec.handle] = weak.Make(n)
	s.mu.Unlock()

	n.SetValue(s, rec)
	runtime.AddCleanup(n, s.reclaim, rec.handle)
	return rec
}

// stampKey is the owner slot holding a node's marker counts. It is shared by
// every store, since markers live on the node rather than in a store.
type stampKey struct{}

// stampCounts returns how many attached controllers stamped each marker on n.
func stampCounts(n *tree.Node) map[string]int {
	if counts, ok := n.Value(stampKey{}).(map[string]int); ok {
		return counts
	}
	counts := make(map[string]int)
	n.SetValue(stampKey{}, counts)
	return counts
}

// reclaim runs on the runtime's cleanup goroutine after a node is collected.
func (s *Store) reclaim(handle uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wp, ok := s.live[handle]; ok && wp.Value() == nil {
		delete(s.live, handle)
	}
}

func isNil(c Controller) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func sameController(a, b Controller) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
