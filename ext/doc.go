// Package ext defines the extension system for anchor.
// Extensions are notified of lifecycle events (item enqueued, completed,
// failed, pump drained, etc.) and can react to them with logging, metrics,
// tracing, or anything else.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext
