package collection

import (
	"slices"

	"github.com/zjrosen/perch/internal/log"
	"github.com/zjrosen/perch/internal/tree"
)

// Subscription is one Observe registration.
type Subscription struct {
	fn     func([]tree.Record)
	cancel func(*Subscription)
	active bool
}

// Cancel stops delivery to this subscription. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	if s == nil || !s.active {
		return
	}
	s.active = false
	s.cancel(s)
}

// Observe calls fn once per child-list mutation batch on the container,
// after the document flushes. Subscribers are called in subscription order.
// The container's observer is created on the first subscription and
// disconnected when the last one is cancelled.
func (c *Collection[T]) Observe(fn func([]tree.Record)) *Subscription {
	sub := &Subscription{fn: fn, cancel: c.unsubscribe, active: true}
	if c.observer == nil {
		c.observer = c.container.Document().NewObserver(func(records []tree.Record, _ *tree.Observer) {
			c.dispatch(records)
		})
		c.observer.Observe(c.container)
		log.Debug(log.CatCollection, "Observing container", "container", c.container)
	}
	c.subs = append(c.subs, sub)
	return sub
}

// Subscribers returns the number of active subscriptions.
func (c *Collection[T]) Subscribers() int { return len(c.subs) }

func (c *Collection[T]) dispatch(records []tree.Record) {
	for _, sub := range slices.Clone(c.subs) {
		if sub.active && sub.fn != nil {
			sub.fn(records)
		}
	}
}

func (c *Collection[T]) unsubscribe(sub *Subscription) {
	c.subs = slices.DeleteFunc(c.subs, func(s *Subscription) bool { return s == sub })
	if len(c.subs) == 0 && c.observer != nil {
		c.observer.Disconnect()
		c.observer = nil
		log.Debug(log.CatCollection, "Stopped observing container", "container", c.container)
	}
}
