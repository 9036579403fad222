package anchor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/xraph/anchor/backoff"
	"github.com/xraph/anchor/ext"
	"github.com/xraph/anchor/id"
	"github.com/xraph/anchor/item"
	"github.com/xraph/anchor/middleware"
	"github.com/xraph/anchor/queue"
)

// Dispatcher pins callback execution to the goroutine it was created
// on. Any goroutine may schedule work via Send or Post; only Pump
// executes it, and Pump must be called on the owner goroutine.
//
// A Dispatcher is safe for concurrent producers. Pump, Flush from the
// owner goroutine, and Derive are owner-side operations.
type Dispatcher struct {
	id       id.DispatcherID
	ownerGID uint64

	pending  *queue.Shared
	inFlight *atomic.Int64
	counters *counters

	logger     *slog.Logger
	extensions *ext.Registry
	chain      middleware.Middleware
	errHandler func(it *item.Item, err error)
	flushYield backoff.Strategy
	config     Config

	// Construction-time accumulators, consumed by New.
	exts        []ext.Extension
	middlewares []middleware.Middleware

	// drainBuf is the pump's private batch buffer. Only the owner
	// goroutine touches it, as with wasIdle, which tracks the
	// busy-to-idle edge so the Idle hook fires once per transition.
	drainBuf []*item.Item
	wasIdle  bool
}

// New creates a Dispatcher owned by the calling goroutine and, unless
// WithoutInstall is given, installs it as the process-wide default.
func New(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		id:         id.NewDispatcherID(),
		ownerGID:   goroutineID(),
		inFlight:   &atomic.Int64{},
		counters:   &counters{},
		logger:     slog.Default(),
		flushYield: backoff.DefaultStrategy(),
		config:     DefaultConfig(),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("anchor: applying option: %w", err)
		}
	}

	d.extensions = ext.NewRegistry(d.logger)
	for _, e := range d.exts {
		d.extensions.Register(e)
	}
	d.exts = nil

	d.chain = middleware.Chain(d.middlewares...)
	d.middlewares = nil

	var qopts []queue.Option
	if d.config.QueueWarnDepth > 0 {
		qopts = append(qopts, queue.WithDepthWarning(d.config.QueueWarnDepth, func(depth int) {
			d.logger.Warn("pending queue depth high",
				slog.Int("depth", depth),
				slog.String("dispatcher_id", d.id.String()),
			)
		}))
	}
	d.pending = queue.New(qopts...)

	if d.config.InstallDefault {
		SetDefault(d)
	}

	d.logger.Debug("dispatcher created",
		slog.String("dispatcher_id", d.id.String()),
		slog.Uint64("owner_goroutine", d.ownerGID),
	)
	return d, nil
}

// Derive returns a new handle onto the same dispatcher: it shares the
// pending queue, in-flight counter, extensions, and middleware, but
// carries its own identity for logs. Work scheduled through either
// handle lands in the same queue and executes on the same owner
// goroutine.
func (d *Dispatcher) Derive() *Dispatcher {
	nd := *d
	nd.id = id.NewDispatcherID()
	nd.drainBuf = nil
	nd.wasIdle = false
	return &nd
}

// ID returns the dispatcher's unique identifier.
func (d *Dispatcher) ID() id.DispatcherID { return d.id }

// ──────────────────────────────────────────────────
// Scheduling
// ──────────────────────────────────────────────────

// Send schedules cb onto the owner goroutine and blocks until it has
// executed, returning the callback's error. When called on the owner
// goroutine itself the callback runs inline, since blocking there would
// deadlock the pump. The ctx bounds only the wait: cancellation
// abandons the blocked caller, not the queued item, which still
// executes at the next pump.
func (d *Dispatcher) Send(ctx context.Context, cb item.Callback, state any) error {
	if cb == nil {
		return ErrNilCallback
	}

	if goroutineID() == d.ownerGID {
		return d.invoke(ctx, item.NewSend(cb, state))
	}

	it := item.NewSend(cb, state)
	d.counters.enqueued.Add(1)
	d.extensions.EmitItemEnqueued(ctx, it)
	d.pending.Append(it)

	select {
	case <-it.Completion().Done():
		return it.Completion().Wait()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post schedules cb onto the owner goroutine and returns immediately.
// The callback runs at the next pump, in enqueue order. Unlike Send,
// Post never executes inline, so calling it from the owner goroutine
// still defers the work behind everything already queued.
func (d *Dispatcher) Post(cb item.Callback, state any) error {
	if cb == nil {
		return ErrNilCallback
	}

	it := item.NewPost(cb, state)
	d.counters.enqueued.Add(1)
	d.extensions.EmitItemEnqueued(context.Background(), it)
	d.pending.Append(it)
	return nil
}

// ──────────────────────────────────────────────────
// Operation tracking
// ──────────────────────────────────────────────────

// OperationStarted records the start of a logical async operation.
// Busy reports true while any started operation has not completed,
// which keeps Flush waiting for work that has not yet been posted.
func (d *Dispatcher) OperationStarted() {
	n := d.inFlight.Add(1)
	d.extensions.EmitOperationStarted(context.Background(), n)
}

// OperationCompleted records the end of a logical async operation
// previously announced via OperationStarted.
func (d *Dispatcher) OperationCompleted() {
	n := d.inFlight.Add(-1)
	d.extensions.EmitOperationCompleted(context.Background(), n)
}

// InFlight returns the number of started-but-not-completed operations.
func (d *Dispatcher) InFlight() int64 { return d.inFlight.Load() }

// Busy reports whether the dispatcher has pending items or in-flight
// operations. The counter is compared against zero, not ordered: an
// unbalanced OperationCompleted drives it negative, and a skewed
// counter still counts as busy rather than silently passing Flush.
func (d *Dispatcher) Busy() bool {
	return d.pending.Len() > 0 || d.inFlight.Load() != 0
}

// goroutineID extracts the current goroutine's numeric id from the
// stack header ("goroutine N [running]:"). There is no public runtime
// API for this; the header format has been stable across Go releases.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = buf[len("goroutine "):]
	i := bytes.IndexByte(buf, ' ')
	if i < 0 {
		return 0
	}
	n, err := strconv.ParseUint(string(buf[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
