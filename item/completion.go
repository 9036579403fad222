package item

import "sync"

// Completion is a single-use signal settled by the dispatcher after an
// item's callback has run. It starts unset and is set exactly once,
// carrying the callback's outcome. One blocked producer waits on it.
type Completion struct {
	once sync.Once
	ch   chan struct{}
	err  error
}

// NewCompletion creates an unset completion.
func NewCompletion() *Completion {
	return &Completion{ch: make(chan struct{})}
}

// Settle records the outcome and releases the waiter. Only the first
// call has any effect; the dispatcher calls it from a deferred cleanup
// step so the waiter is released even if the callback panicked.
func (c *Completion) Settle(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.ch)
	})
}

// Wait blocks until the completion is settled and returns the outcome.
func (c *Completion) Wait() error {
	<-c.ch
	return c.err
}

// Done returns a channel closed when the completion settles.
func (c *Completion) Done() <-chan struct{} { return c.ch }

// Settled reports whether the completion has been set.
func (c *Completion) Settled() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}
