package tree

import "slices"

// Record describes one child-list change on Target, after the fact.
type Record struct {
	Target          *Node
	Added           []*Node
	Removed         []*Node
	PreviousSibling *Node
	NextSibling     *Node
}

// Callback receives one batch of records.
type Callback func(records []Record, o *Observer)

// Observer collects child-list records for the nodes it observes and hands
// them to its callback when the document flushes.
type Observer struct {
	doc      *Document
	id       int
	callback Callback
	targets  []*Node
	records  []Record
	queued   bool
}

// NewObserver creates an observer that is not yet observing anything.
func (d *Document) NewObserver(cb Callback) *Observer {
	d.nextID++
	return &Observer{doc: d, id: d.nextID, callback: cb}
}

// Observe starts recording child-list changes of n. Observing the same node
// twice is a no-op.
func (o *Observer) Observe(n *Node) {
	if n == nil || slices.Contains(o.targets, n) {
		return
	}
	o.targets = append(o.targets, n)
	n.observers = append(n.observers, o)
}

// Disconnect stops all observation and discards undelivered records.
func (o *Observer) Disconnect() {
	for _, n := range o.targets {
		n.observers = slices.DeleteFunc(n.observers, func(x *Observer) bool { return x == o })
	}
	o.targets = nil
	o.records = nil
}

// TakeRecords returns and clears the records not yet delivered.
func (o *Observer) TakeRecords() []Record {
	records := o.records
	o.records = nil
	return records
}

// Observing reports whether o currently observes at least one node.
func (o *Observer) Observing() bool { return len(o.targets) > 0 }
