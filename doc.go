// Package anchor pins callback execution to a single owner goroutine.
// It is a main-thread dispatch library for embedding host runtimes that
// drive their own update loop on one goroutine and forbid touching
// their API surface from anywhere else. Code running on any goroutine
// schedules work onto the owner either fire-and-forget ([Dispatcher.Post])
// or blocking until the work has run ([Dispatcher.Send]); the host calls
// [Dispatcher.Pump] once per tick on the owner goroutine to execute
// whatever accumulated.
//
// # Quick Start
//
// Create the dispatcher on the goroutine that owns the host runtime,
// then pump it from the host's per-tick callback:
//
//	d, err := anchor.New(
//	    anchor.WithLogger(logger),
//	)
//	// ... host tick callback, on the same goroutine:
//	d.Pump(ctx)
//
// From any other goroutine:
//
//	d.Post(func(ctx context.Context, state any) error {
//	    // runs on the owner goroutine at the next pump
//	    return nil
//	}, nil)
//
//	err := d.Send(ctx, update, scene) // blocks until update has run
//
// # Ordering and Delivery
//
// Items execute on the owner goroutine in the exact order they were
// enqueued, across Send and Post alike. Each item executes exactly
// once. Items enqueued while a pump batch is executing are deferred to
// the next pump call. Send from the owner goroutine itself runs the
// callback inline without queueing (queueing would deadlock: the pump
// cannot run while the owner is blocked); Post never takes that
// shortcut, so Post ordering relative to already-queued work is
// preserved even on the owner goroutine.
//
// # Failure Policy
//
// A callback that returns an error or panics never disturbs the rest
// of its batch and never strands a blocked sender: the completion is
// settled in a deferred cleanup step, panics are converted to errors.
// Send returns the callback's outcome to the caller. Post outcomes go
// to the error handler ([WithErrorHandler]; the default logs) and the
// ItemFailed lifecycle hook. Panics do not propagate out of the pump.
//
// # Architecture
//
// anchor follows a composable design: the shared pending queue lives in
// the queue package, work items and completions in item, lifecycle
// hooks in ext, invocation wrappers in middleware, and ready-made OTel
// metrics in observability. All entity IDs are TypeID-based:
// type-prefixed, K-sortable, UUIDv7 identifiers.
package anchor
