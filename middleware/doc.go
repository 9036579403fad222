// Package middleware provides composable middleware for work item execution.
//
// A [Middleware] is a function that wraps an item callback. Middleware are
// composed into a chain using [Chain] and applied around every invocation
// the dispatcher performs, queued items executed by the pump and the
// owner-goroutine Send fast path alike. They are applied right-to-left:
// the first middleware in the slice is the outermost wrapper.
//
//	// logging → recover → callback
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging]: logs item kind, id, duration, and outcome at each execution
//   - [Recover]: catches panics and converts them to errors
//   - [Timeout]: cancels the callback context after a configured duration
//   - [Tracing]: wraps execution in an OpenTelemetry span
//   - [Metrics]: records per-item duration and outcome counters
//
// Note the dispatcher guarantees completion delivery and panic
// containment on its own, outside the chain; [Recover] exists for hosts
// that want panic-to-error conversion with stack logging at a specific
// position in the chain.
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, it *item.Item, next middleware.Handler) error {
//	        // pre-processing
//	        err := next(ctx)
//	        // post-processing
//	        return err
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting.
package middleware
