package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/anchor/item"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type itemEnqueuedEntry struct {
	name string
	hook ItemEnqueued
}

type itemStartedEntry struct {
	name string
	hook ItemStarted
}

type itemCompletedEntry struct {
	name string
	hook ItemCompleted
}

type itemFailedEntry struct {
	name string
	hook ItemFailed
}

type pumpCompletedEntry struct {
	name string
	hook PumpCompleted
}

type idleEntry struct {
	name string
	hook Idle
}

type operationStartedEntry struct {
	name string
	hook OperationStarted
}

type operationCompletedEntry struct {
	name string
	hook OperationCompleted
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	itemEnqueued       []itemEnqueuedEntry
	itemStarted        []itemStartedEntry
	itemCompleted      []itemCompletedEntry
	itemFailed         []itemFailedEntry
	pumpCompleted      []pumpCompletedEntry
	idle               []idleEntry
	operationStarted   []operationStartedEntry
	operationCompleted []operationCompletedEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(ItemEnqueued); ok {
		r.itemEnqueued = append(r.itemEnqueued, itemEnqueuedEntry{name, h})
	}
	if h, ok := e.(ItemStarted); ok {
		r.itemStarted = append(r.itemStarted, itemStartedEntry{name, h})
	}
	if h, ok := e.(ItemCompleted); ok {
		r.itemCompleted = append(r.itemCompleted, itemCompletedEntry{name, h})
	}
	if h, ok := e.(ItemFailed); ok {
		r.itemFailed = append(r.itemFailed, itemFailedEntry{name, h})
	}
	if h, ok := e.(PumpCompleted); ok {
		r.pumpCompleted = append(r.pumpCompleted, pumpCompletedEntry{name, h})
	}
	if h, ok := e.(Idle); ok {
		r.idle = append(r.idle, idleEntry{name, h})
	}
	if h, ok := e.(OperationStarted); ok {
		r.operationStarted = append(r.operationStarted, operationStartedEntry{name, h})
	}
	if h, ok := e.(OperationCompleted); ok {
		r.operationCompleted = append(r.operationCompleted, operationCompletedEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Item event emitters
// ──────────────────────────────────────────────────

// EmitItemEnqueued notifies all extensions that implement ItemEnqueued.
func (r *Registry) EmitItemEnqueued(ctx context.Context, it *item.Item) {
	for _, e := range r.itemEnqueued {
		if err := e.hook.OnItemEnqueued(ctx, it); err != nil {
			r.logHookError("OnItemEnqueued", e.name, err)
		}
	}
}

// EmitItemStarted notifies all extensions that implement ItemStarted.
func (r *Registry) EmitItemStarted(ctx context.Context, it *item.Item) {
	for _, e := range r.itemStarted {
		if err := e.hook.OnItemStarted(ctx, it); err != nil {
			r.logHookError("OnItemStarted", e.name, err)
		}
	}
}

// EmitItemCompleted notifies all extensions that implement ItemCompleted.
func (r *Registry) EmitItemCompleted(ctx context.Context, it *item.Item, elapsed time.Duration) {
	for _, e := range r.itemCompleted {
		if err := e.hook.OnItemCompleted(ctx, it, elapsed); err != nil {
			r.logHookError("OnItemCompleted", e.name, err)
		}
	}
}

// EmitItemFailed notifies all extensions that implement ItemFailed.
func (r *Registry) EmitItemFailed(ctx context.Context, it *item.Item, itemErr error) {
	for _, e := range r.itemFailed {
		if err := e.hook.OnItemFailed(ctx, it, itemErr); err != nil {
			r.logHookError("OnItemFailed", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Pump event emitters
// ──────────────────────────────────────────────────

// EmitPumpCompleted notifies all extensions that implement PumpCompleted.
func (r *Registry) EmitPumpCompleted(ctx context.Context, batchSize int, elapsed time.Duration) {
	for _, e := range r.pumpCompleted {
		if err := e.hook.OnPumpCompleted(ctx, batchSize, elapsed); err != nil {
			r.logHookError("OnPumpCompleted", e.name, err)
		}
	}
}

// EmitIdle notifies all extensions that implement Idle.
func (r *Registry) EmitIdle(ctx context.Context) {
	for _, e := range r.idle {
		if err := e.hook.OnIdle(ctx); err != nil {
			r.logHookError("OnIdle", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Operation event emitters
// ──────────────────────────────────────────────────

// EmitOperationStarted notifies all extensions that implement OperationStarted.
func (r *Registry) EmitOperationStarted(ctx context.Context, inFlight int64) {
	for _, e := range r.operationStarted {
		if err := e.hook.OnOperationStarted(ctx, inFlight); err != nil {
			r.logHookError("OnOperationStarted", e.name, err)
		}
	}
}

// EmitOperationCompleted notifies all extensions that implement OperationCompleted.
func (r *Registry) EmitOperationCompleted(ctx context.Context, inFlight int64) {
	for _, e := range r.operationCompleted {
		if err := e.hook.OnOperationCompleted(ctx, inFlight); err != nil {
			r.logHookError("OnOperationCompleted", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not block the pump.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
