package anchor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/anchor/item"
)

// Pump executes every item that was pending when it was called, in
// enqueue order, and returns the number of items executed. Items
// enqueued while the batch runs are left for the next call. Pump must
// run on the owner goroutine; that is the whole contract of the
// package, not something it can verify cheaply on every tick.
func (d *Dispatcher) Pump(ctx context.Context) int {
	d.drainBuf = d.pending.Drain(d.drainBuf)
	if len(d.drainBuf) == 0 {
		if d.inFlight.Load() == 0 {
			if !d.wasIdle {
				d.wasIdle = true
				d.extensions.EmitIdle(ctx)
			}
		} else {
			d.wasIdle = false
		}
		return 0
	}
	d.wasIdle = false

	start := time.Now()
	n := 0
	// Remove each item before invoking it: a callback that re-enters
	// Pump must not see (or re-run) the item currently executing.
	for len(d.drainBuf) > 0 {
		it := d.drainBuf[0]
		d.drainBuf[0] = nil
		d.drainBuf = d.drainBuf[1:]
		n++
		_ = d.invoke(ctx, it)
	}

	d.extensions.EmitPumpCompleted(ctx, n, time.Since(start))
	if !d.Busy() {
		d.wasIdle = true
		d.extensions.EmitIdle(ctx)
	}
	return n
}

// invoke runs a single item through the middleware chain. The deferred
// cleanup settles the completion and emits lifecycle hooks no matter
// how the callback exits, so a panicking callback can never strand a
// blocked sender or halt the rest of the batch.
func (d *Dispatcher) invoke(ctx context.Context, it *item.Item) (err error) {
	start := time.Now()
	d.extensions.EmitItemStarted(ctx, it)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("anchor: callback panic: %v", r)
			d.logger.Error("callback panicked",
				slog.String("item_id", it.ID.String()),
				slog.String("kind", string(it.Kind)),
				slog.Any("panic", r),
			)
		}
		if c := it.Completion(); c != nil {
			c.Settle(err)
		}
		d.counters.executed.Add(1)
		if err != nil {
			d.counters.failed.Add(1)
			d.extensions.EmitItemFailed(ctx, it, err)
			if it.Kind == item.KindPost {
				d.handlePostError(it, err)
			}
		} else {
			d.extensions.EmitItemCompleted(ctx, it, time.Since(start))
		}
	}()

	err = d.chain(ctx, it, func(ctx context.Context) error {
		return it.Callback(ctx, it.State)
	})
	return err
}

// handlePostError routes a failed fire-and-forget item to the
// configured error handler. Send errors are returned to the caller and
// never come through here.
func (d *Dispatcher) handlePostError(it *item.Item, err error) {
	if d.errHandler != nil {
		d.errHandler(it, err)
		return
	}
	d.logger.Error("posted callback failed",
		slog.String("item_id", it.ID.String()),
		slog.String("error", err.Error()),
	)
}

// ──────────────────────────────────────────────────
// Flush
// ──────────────────────────────────────────────────

// Flush waits until the dispatcher is no longer busy: the pending
// queue is empty and no tracked operations are in flight. When called
// on the owner goroutine it pumps between polls, so it makes progress
// on its own; from any other goroutine it only waits for the owner to
// drain the queue. It returns true once idle, or false if ctx expires
// first. Use context.WithTimeout to bound the wait.
func (d *Dispatcher) Flush(ctx context.Context) bool {
	owner := goroutineID() == d.ownerGID
	for i := 1; ; i++ {
		if owner {
			d.Pump(ctx)
		}
		if !d.Busy() {
			return true
		}
		select {
		case <-ctx.Done():
			return !d.Busy()
		case <-time.After(d.flushYield.Delay(i)):
		}
	}
}

// Flush drains the process-wide default dispatcher. A process with no
// default dispatcher has nothing to drain, so Flush reports idle.
func Flush(ctx context.Context) bool {
	d := Default()
	if d == nil {
		return true
	}
	return d.Flush(ctx)
}
