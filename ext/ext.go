package ext

import (
	"context"
	"time"

	"github.com/xraph/anchor/item"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Item lifecycle hooks
// ──────────────────────────────────────────────────

// ItemEnqueued is called after an item is appended to the pending queue.
// It is not called for the owner-goroutine Send fast path, which never
// enqueues.
type ItemEnqueued interface {
	OnItemEnqueued(ctx context.Context, it *item.Item) error
}

// ItemStarted is called on the owner goroutine immediately before an
// item's callback is invoked.
type ItemStarted interface {
	OnItemStarted(ctx context.Context, it *item.Item) error
}

// ItemCompleted is called after an item's callback returns nil.
type ItemCompleted interface {
	OnItemCompleted(ctx context.Context, it *item.Item, elapsed time.Duration) error
}

// ItemFailed is called after an item's callback returns an error or
// panics (the panic is converted to an error first).
type ItemFailed interface {
	OnItemFailed(ctx context.Context, it *item.Item, err error) error
}

// ──────────────────────────────────────────────────
// Pump lifecycle hooks
// ──────────────────────────────────────────────────

// PumpCompleted is called after a pump call finishes executing a
// non-empty batch.
type PumpCompleted interface {
	OnPumpCompleted(ctx context.Context, batchSize int, elapsed time.Duration) error
}

// Idle is called when a pump call takes the system idle: the pending
// queue is empty and the in-flight operation count is zero. It fires
// on the busy-to-idle transition, not on every idle pump tick, so a
// host pumping at a fixed rate does not flood extensions while parked.
type Idle interface {
	OnIdle(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Operation tracking hooks
// ──────────────────────────────────────────────────

// OperationStarted is called when an asynchronous operation registers
// itself with the in-flight counter.
type OperationStarted interface {
	OnOperationStarted(ctx context.Context, inFlight int64) error
}

// OperationCompleted is called when an asynchronous operation
// deregisters from the in-flight counter.
type OperationCompleted interface {
	OnOperationCompleted(ctx context.Context, inFlight int64) error
}
