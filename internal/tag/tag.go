// Package tag assigns each concrete controller type a stable, lazily created
// Tag, and records which capability interfaces a concrete type declares it
// satisfies.
package tag

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/zjrosen/perch/internal/log"
)

var (
	// ErrNotInterface indicates a capability that is not an interface type.
	ErrNotInterface = errors.New("capability is not an interface")

	// ErrNotImplemented indicates a concrete type lacking a declared capability.
	ErrNotImplemented = errors.New("type does not implement capability")
)

// Tag identifies one controller type for the lifetime of a Registry.
// The zero Tag is never allocated.
type Tag struct {
	id   uint32
	name string
}

// ID returns the allocation number, starting at 1.
func (t Tag) ID() uint32 { return t.id }

// IsZero reports whether t was never allocated.
func (t Tag) IsZero() bool { return t.id == 0 }

// Marker returns the node marker stamped for t.
func (t Tag) Marker() string { return fmt.Sprintf("__ctrl_%d__", t.id) }

// String returns the type name t was allocated for.
func (t Tag) String() string { return t.name }

// Registry maps types to tags. Tags are never removed.
type Registry struct {
	mu     sync.Mutex
	byType map[reflect.Type]Tag
	caps   map[reflect.Type][]reflect.Type
	next   uint32
}

// Default is the process-wide registry.
var Default = New()

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]Tag),
		caps:   make(map[reflect.Type][]reflect.Type),
	}
}

// Of returns the tag for t, allocating one on first use.
func (r *Registry) Of(t reflect.Type) Tag {
	r.mu.Lock()
	tg, allocated := r.ofLocked(t)
	r.mu.Unlock()

	if allocated {
		log.Debug(log.CatTag, "Allocated type tag", "type", t, "marker", tg.Marker())
	}
	return tg
}

func (r *Registry) ofLocked(t reflect.Type) (Tag, bool) {
	if tg, ok := r.byType[t]; ok {
		return tg, false
	}
	r.next++
	tg := Tag{id: r.next, name: t.String()}
	r.byType[t] = tg
	return tg, true
}

// Lookup returns the tag for t without allocating.
func (r *Registry) Lookup(t reflect.Type) (Tag, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tg, ok := r.byType[t]
	return tg, ok
}

// Declare records that concrete is-a capability for marker purposes, so
// nodes carrying a concrete controller are also found by capability
// queries. Both types get tags. Declaring twice is a no-op.
func (r *Registry) Declare(concrete, capability reflect.Type) error {
	if capability.Kind() != reflect.Interface {
		return fmt.Errorf("declare %s as %s: %w", concrete, capability, ErrNotInterface)
	}
	if !concrete.Implements(capability) {
		return fmt.Errorf("declare %s as %s: %w", concrete, capability, ErrNotImplemented)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ofLocked(concrete)
	r.ofLocked(capability)
	for _, c := range r.caps[concrete] {
		if c == capability {
			return nil
		}
	}
	r.caps[concrete] = append(r.caps[concrete], capability)
	return nil
}

// Stamps returns the tags a controller of concrete type t is stamped with:
// its own tag first, then every declared capability in declaration order.
func (r *Registry) Stamps(t reflect.Type) []Tag {
	own := r.Of(t)

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Tag, 0, 1+len(r.caps[t]))
	out = append(out, own)
	for _, c := range r.caps[t] {
		out = append(out, r.byType[c])
	}
	return out
}

// Len returns the number of allocated tags.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byType)
}

// For returns the tag of T in r, allocating it on first use.
func For[T any](r *Registry) Tag {
	return r.Of(reflect.TypeFor[T]())
}

// LookupFor returns the tag of T in r without allocating.
func LookupFor[T any](r *Registry) (Tag, bool) {
	return r.Lookup(reflect.TypeFor[T]())
}

// Declare records that concrete type C is-a capability interface I.
func Declare[C, I any](r *Registry) error {
	return r.Declare(reflect.TypeFor[C](), reflect.TypeFor[I]())
}
