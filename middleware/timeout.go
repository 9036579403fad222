package middleware

import (
	"context"
	"time"

	"github.com/xraph/anchor/item"
)

// Timeout returns middleware that enforces a per-item execution deadline.
// A context.WithTimeout wraps each callback invocation; when the deadline
// is exceeded the context is cancelled and a well-behaved callback should
// return context.DeadlineExceeded. A zero duration disables the deadline.
//
// Timeout bounds how long a single callback may hold the owner goroutine
// hostage; it does not abort the callback, which still runs to return.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, _ *item.Item, next Handler) error {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
