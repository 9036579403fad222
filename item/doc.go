// Package item defines the work item entity (one scheduled callback
// plus its opaque state) and the single-use completion signal that
// releases a blocked producer once the callback has run.
//
// Items come in two kinds: [KindSend] items carry a [Completion] and a
// producer goroutine blocks on it; [KindPost] items have no completion
// and the producer never waits. Either way an item is enqueued once,
// invoked exactly once on the owner goroutine, and then discarded.
package item
