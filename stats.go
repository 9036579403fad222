package anchor

import "sync/atomic"

// counters are the cumulative execution counters, shared by a root
// dispatcher and all handles derived from it.
type counters struct {
	enqueued atomic.Uint64
	executed atomic.Uint64
	failed   atomic.Uint64
}

// Stats is a point-in-time snapshot of dispatcher activity. Useful for
// hosts that expose their own diagnostics panel instead of (or next to)
// the OTel metrics extension.
type Stats struct {
	// Pending is the current pending-queue depth.
	Pending int
	// InFlight is the current tracked-operation count.
	InFlight int64
	// Enqueued is the total number of items ever appended to the queue.
	Enqueued uint64
	// Executed is the total number of callbacks invoked, inline sends
	// included.
	Executed uint64
	// Failed is the number of executed callbacks that returned an error
	// or panicked.
	Failed uint64
}

// Stats returns a snapshot of the dispatcher's counters. The snapshot
// is not atomic across fields; each field is individually consistent.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Pending:  d.pending.Len(),
		InFlight: d.inFlight.Load(),
		Enqueued: d.counters.enqueued.Load(),
		Executed: d.counters.executed.Load(),
		Failed:   d.counters.failed.Load(),
	}
}
