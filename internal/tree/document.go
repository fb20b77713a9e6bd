package tree

import (
	"slices"

	"github.com/zjrosen/perch/internal/log"
)

// DefaultMaxFlushPasses bounds how many times Flush re-delivers when
// observer callbacks keep mutating the tree.
const DefaultMaxFlushPasses = 16

// Document owns a tree of nodes and the delivery queue of its observers.
type Document struct {
	root       *Node
	pending    []*Observer
	nextID     int
	maxPasses  int
	flushDepth int
}

// Option configures a Document.
type Option func(*Document)

// WithMaxFlushPasses sets the re-delivery bound used by Flush.
func WithMaxFlushPasses(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.maxPasses = n
		}
	}
}

// NewDocument creates an empty document with a root element named "#root".
func NewDocument(opts ...Option) *Document {
	d := &Document{maxPasses: DefaultMaxFlushPasses}
	for _, opt := range opts {
		opt(d)
	}
	d.root = &Node{doc: d, kind: KindElement, name: "#root"}
	return d
}

// Root returns the document root.
func (d *Document) Root() *Node { return d.root }

// CreateElement returns a new detached element.
func (d *Document) CreateElement(name string) *Node {
	return &Node{doc: d, kind: KindElement, name: name}
}

// CreateAnchor returns a new detached anchor.
func (d *Document) CreateAnchor() *Node {
	return &Node{doc: d, kind: KindAnchor, name: "#anchor"}
}

// Pending reports whether any observer has undelivered records.
func (d *Document) Pending() bool {
	for _, o := range d.pending {
		if len(o.records) > 0 {
			return true
		}
	}
	return false
}

// Turn runs fn as one synchronous edit turn and then delivers the
// mutations it queued.
func (d *Document) Turn(fn func()) int {
	fn()
	return d.Flush()
}

// Flush delivers every observer's queued records as one batch per observer,
// in observer creation order. Records queued by callbacks are delivered in
// further passes, up to the configured bound; anything left stays pending.
// A nested Flush from inside a callback does nothing. Returns the number of
// batches delivered.
func (d *Document) Flush() int {
	if d.flushDepth > 0 {
		return 0
	}
	d.flushDepth++
	defer func() { d.flushDepth-- }()

	delivered := 0
	for pass := 0; len(d.pending) > 0; pass++ {
		if pass == d.maxPasses {
			log.Warn(log.CatTree, "Flush pass limit reached, records left pending",
				"passes", pass, "observers", len(d.pending))
			break
		}
		batch := d.pending
		d.pending = nil
		slices.SortFunc(batch, func(a, b *Observer) int { return a.id - b.id })
		for _, o := range batch {
			o.queued = false
			records := o.TakeRecords()
			if len(records) == 0 || o.callback == nil {
				continue
			}
			o.callback(records, o)
			delivered++
		}
	}
	return delivered
}

func (d *Document) queue(target *Node, rec Record) {
	for _, o := range target.observers {
		o.records = append(o.records, rec)
		if !o.queued {
			o.queued = true
			d.pending = append(d.pending, o)
		}
	}
}
