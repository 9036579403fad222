package anchor

import (
	"context"
	"sync/atomic"
)

// The ambient dispatcher registry. The process-wide default slot mirrors
// the slog.Default / slog.SetDefault idiom; the context carrier is the
// explicit alternative for code that threads a context through anyway.

var defaultDispatcher atomic.Pointer[Dispatcher]

// Default returns the process-wide default dispatcher, or nil if none
// has been installed.
func Default() *Dispatcher {
	return defaultDispatcher.Load()
}

// SetDefault installs d as the process-wide default dispatcher.
// Passing nil uninstalls the current default. New installs the
// dispatcher it creates unless WithoutInstall is given, so most
// programs never call SetDefault directly.
func SetDefault(d *Dispatcher) {
	defaultDispatcher.Store(d)
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying d. Use it to hand a
// specific dispatcher down a call chain without relying on the
// process-wide default.
func NewContext(ctx context.Context, d *Dispatcher) context.Context {
	return context.WithValue(ctx, ctxKey{}, d)
}

// FromContext returns the dispatcher carried by ctx, if any.
func FromContext(ctx context.Context) (*Dispatcher, bool) {
	d, ok := ctx.Value(ctxKey{}).(*Dispatcher)
	return d, ok
}
