package item

import (
	"context"
	"time"

	"github.com/xraph/anchor/id"
)

// Kind distinguishes how a work item was scheduled.
type Kind string

const (
	// KindSend means the producer blocks until the item has executed.
	KindSend Kind = "send"
	// KindPost means the producer continues without waiting.
	KindPost Kind = "post"
)

// Callback is the unit of work scheduled onto the owner goroutine.
// The state argument is the opaque value supplied at scheduling time.
type Callback func(ctx context.Context, state any) error

// Item represents one scheduled callback. It is created by a producer,
// appended to the shared pending queue, invoked exactly once by the
// pump on the owner goroutine, and then discarded.
type Item struct {
	ID         id.ItemID
	Kind       Kind
	Callback   Callback
	State      any
	EnqueuedAt time.Time

	// done is non-nil only for KindSend items. It is settled by the
	// dispatcher after the callback returns, success or failure.
	done *Completion
}

// NewSend creates a blocking work item with a fresh unset completion.
func NewSend(cb Callback, state any) *Item {
	return &Item{
		ID:         id.NewItemID(),
		Kind:       KindSend,
		Callback:   cb,
		State:      state,
		EnqueuedAt: time.Now(),
		done:       NewCompletion(),
	}
}

// NewPost creates a fire-and-forget work item with no completion.
func NewPost(cb Callback, state any) *Item {
	return &Item{
		ID:         id.NewItemID(),
		Kind:       KindPost,
		Callback:   cb,
		State:      state,
		EnqueuedAt: time.Now(),
	}
}

// Completion returns the item's completion, or nil for KindPost items.
func (it *Item) Completion() *Completion { return it.done }
