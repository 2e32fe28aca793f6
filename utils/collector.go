package utils

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// Collector hands the first matching event for a key (usually a message ID) to
// whoever is waiting on it. Events nobody waits for are dropped.
type Collector[E any] struct {
	mu      sync.Mutex
	waiters map[snowflake.ID]*Waiter[E]
}

type Waiter[E any] struct {
	key       snowflake.ID
	filter    func(e E) bool
	ch        chan E
	collector *Collector[E]
}

func NewCollector[E any]() *Collector[E] {
	return &Collector[E]{waiters: map[snowflake.ID]*Waiter[E]{}}
}

// Listen registers a waiter before the caller does anything that could
// trigger the event, so nothing is missed between posting and waiting.
// A second Listen on the same key replaces the first one.
func (c *Collector[E]) Listen(key snowflake.ID, filterFunc func(e E) bool) *Waiter[E] {
	w := &Waiter[E]{
		key:       key,
		filter:    filterFunc,
		ch:        make(chan E, 1),
		collector: c,
	}

	c.mu.Lock()
	c.waiters[key] = w
	c.mu.Unlock()

	return w
}

// Dispatch delivers e to the waiter on key if it passes the waiter's filter.
// The waiter is removed on delivery, so later events are ignored.
func (c *Collector[E]) Dispatch(key snowflake.ID, e E) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.waiters[key]
	if !ok {
		return false
	}
	if w.filter != nil && !w.filter(e) {
		return false
	}

	delete(c.waiters, key)

	select {
	case w.ch <- e:
		return true
	default:
		return false
	}
}

func (c *Collector[E]) Waiting(key snowflake.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.waiters[key]

	return ok
}

func (c *Collector[E]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.waiters)
}

// Wait blocks until the event arrives or ctx is done, in which case ErrTimeout
// is returned. The waiter is always unregistered when Wait returns.
func (w *Waiter[E]) Wait(ctx context.Context) (E, error) {
	defer w.Cancel()

	select {
	case e := <-w.ch:
		return e, nil
	case <-ctx.Done():
		// the event may have been delivered right as ctx expired
		select {
		case e := <-w.ch:
			return e, nil
		default:
		}

		var zero E
		return zero, ErrTimeout
	}
}

func (w *Waiter[E]) Cancel() {
	c := w.collector

	c.mu.Lock()
	if c.waiters[w.key] == w {
		delete(c.waiters, w.key)
	}
	c.mu.Unlock()
}
