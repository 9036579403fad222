package queue

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/xraph/anchor/item"
)

// Shared is the pending queue shared by a root dispatcher and every
// handle derived from it. It is the only shared mutable resource in
// anchor: producers append under the lock, the pump swaps the whole
// batch out under the lock, and the lock is never held across a
// callback invocation or a blocking wait.
type Shared struct {
	mu    sync.Mutex
	items []*item.Item

	// Depth watermark reporting. The callback fires at most once per
	// warn interval so a producer storm does not become a log storm.
	warnDepth int
	onDepth   func(depth int)
	warn      rate.Sometimes
}

// Option configures a Shared queue.
type Option func(*Shared)

// WithDepthWarning installs a callback invoked (rate-limited) whenever
// an append pushes the queue depth to threshold or beyond. Used by the
// dispatcher to surface producers outpacing the pump.
func WithDepthWarning(threshold int, fn func(depth int)) Option {
	return func(q *Shared) {
		q.warnDepth = threshold
		q.onDepth = fn
		q.warn = rate.Sometimes{First: 1, Interval: time.Second}
	}
}

// New creates an empty shared queue.
func New(opts ...Option) *Shared {
	q := &Shared{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Append adds an item to the tail of the queue.
func (q *Shared) Append(it *item.Item) {
	q.mu.Lock()
	q.items = append(q.items, it)
	depth := len(q.items)
	q.mu.Unlock()

	if q.warnDepth > 0 && depth >= q.warnDepth && q.onDepth != nil {
		q.warn.Do(func() { q.onDepth(depth) })
	}
}

// Drain atomically appends every pending item to buf and leaves the
// queue empty. Appending (rather than replacing) matters for re-entrant
// pumps: a pump call made from inside a callback merges the new batch
// behind the items still awaiting execution instead of dropping them.
// Items arriving after Drain returns belong to the next batch.
func (q *Shared) Drain(buf []*item.Item) []*item.Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	buf = append(buf, q.items...)

	// Drop queue references so executed items are collectable.
	clear(q.items)
	q.items = q.items[:0]

	return buf
}

// Len returns the current number of pending items.
func (q *Shared) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
