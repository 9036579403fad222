// Package queue implements the shared pending queue that connects
// producer goroutines to the owner goroutine's pump.
//
// A [Shared] queue holds work items in strict FIFO order under a single
// mutex. Producers call [Shared.Append] from any goroutine; the pump
// calls [Shared.Drain], which swaps the entire pending batch out in one
// locked operation and leaves the queue empty. Items arriving while a
// batch executes therefore land in the next batch, never the current
// one.
//
// One Shared instance is referenced by a root dispatcher and all
// handles derived from it; handle lifetime is managed by the garbage
// collector, so there is no explicit release step.
//
// # Depth Warnings
//
// Use [WithDepthWarning] to observe unbounded growth when producers
// outpace the pump. The callback is throttled to once per interval
// (golang.org/x/time/rate) so it is safe to wire straight to a logger.
package queue
