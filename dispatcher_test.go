package anchor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/anchor/backoff"
	"github.com/xraph/anchor/item"
)

func newTestDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	opts = append([]Option{
		WithoutInstall(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	d, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

// ──────────────────────────────────────────────────
// Construction and options
// ──────────────────────────────────────────────────

func TestNew_Defaults(t *testing.T) {
	d := newTestDispatcher(t)

	if d.ID().IsNil() {
		t.Fatal("expected non-nil dispatcher ID")
	}
	if d.Busy() {
		t.Fatal("new dispatcher should not be busy")
	}
	if got := d.InFlight(); got != 0 {
		t.Fatalf("InFlight() = %d, want 0", got)
	}
}

func TestNew_NilLogger(t *testing.T) {
	_, err := New(WithoutInstall(), WithLogger(nil))
	if !errors.Is(err, ErrNilLogger) {
		t.Fatalf("New(WithLogger(nil)) error = %v, want ErrNilLogger", err)
	}
}

func TestNew_NilFlushBackoff(t *testing.T) {
	_, err := New(WithoutInstall(), WithFlushBackoff(nil))
	if !errors.Is(err, ErrNilStrategy) {
		t.Fatalf("New(WithFlushBackoff(nil)) error = %v, want ErrNilStrategy", err)
	}
}

func TestNew_InstallsDefault(t *testing.T) {
	t.Cleanup(func() { SetDefault(nil) })

	d, err := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if Default() != d {
		t.Fatal("New should install the dispatcher as the default")
	}
}

func TestNew_WithoutInstall(t *testing.T) {
	t.Cleanup(func() { SetDefault(nil) })
	SetDefault(nil)

	newTestDispatcher(t)
	if Default() != nil {
		t.Fatal("WithoutInstall should leave the default unset")
	}
}

// ──────────────────────────────────────────────────
// Send
// ──────────────────────────────────────────────────

func TestSend_NilCallback(t *testing.T) {
	d := newTestDispatcher(t)
	if err := d.Send(context.Background(), nil, nil); !errors.Is(err, ErrNilCallback) {
		t.Fatalf("Send(nil) error = %v, want ErrNilCallback", err)
	}
}

func TestSend_OwnerGoroutineRunsInline(t *testing.T) {
	d := newTestDispatcher(t)

	owner := goroutineID()
	var ranOn uint64
	err := d.Send(context.Background(), func(ctx context.Context, state any) error {
		ranOn = goroutineID()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if ranOn != owner {
		t.Fatalf("callback ran on goroutine %d, want owner %d", ranOn, owner)
	}
	if d.Busy() {
		t.Fatal("inline send must not leave the item queued")
	}
}

func TestSend_BlocksUntilPump(t *testing.T) {
	d := newTestDispatcher(t)

	var ran atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- d.Send(context.Background(), func(ctx context.Context, state any) error {
			ran.Store(true)
			return nil
		}, "payload")
	}()

	waitUntil(t, d.Busy)
	if ran.Load() {
		t.Fatal("callback ran before pump")
	}

	d.Pump(context.Background())

	if err := <-done; err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !ran.Load() {
		t.Fatal("callback did not run")
	}
}

func TestSend_ReturnsCallbackError(t *testing.T) {
	d := newTestDispatcher(t)
	wantErr := errors.New("scene load failed")

	done := make(chan error, 1)
	go func() {
		done <- d.Send(context.Background(), func(ctx context.Context, state any) error {
			return wantErr
		}, nil)
	}()

	waitUntil(t, d.Busy)
	d.Pump(context.Background())

	if err := <-done; !errors.Is(err, wantErr) {
		t.Fatalf("Send() error = %v, want %v", err, wantErr)
	}
}

func TestSend_ContextCancelAbandonsWait(t *testing.T) {
	d := newTestDispatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Send(ctx, func(ctx context.Context, state any) error {
			return nil
		}, nil)
	}()

	waitUntil(t, d.Busy)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Send() error = %v, want context.Canceled", err)
	}

	// The item was abandoned, not withdrawn: it still executes.
	d.Pump(context.Background())
	if d.Busy() {
		t.Fatal("item should have executed at the next pump")
	}
}

func TestSend_StateDelivered(t *testing.T) {
	d := newTestDispatcher(t)

	var got any
	err := d.Send(context.Background(), func(ctx context.Context, state any) error {
		got = state
		return nil
	}, 42)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got != 42 {
		t.Fatalf("state = %v, want 42", got)
	}
}

// ──────────────────────────────────────────────────
// Post
// ──────────────────────────────────────────────────

func TestPost_NilCallback(t *testing.T) {
	d := newTestDispatcher(t)
	if err := d.Post(nil, nil); !errors.Is(err, ErrNilCallback) {
		t.Fatalf("Post(nil) error = %v, want ErrNilCallback", err)
	}
}

func TestPost_DeferredOnOwnerGoroutine(t *testing.T) {
	d := newTestDispatcher(t)

	// Post on the owner goroutine never short-circuits.
	var ran bool
	if err := d.Post(func(ctx context.Context, state any) error {
		ran = true
		return nil
	}, nil); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if ran {
		t.Fatal("posted callback ran before pump")
	}
	if !d.Busy() {
		t.Fatal("Busy() = false with a pending item")
	}

	d.Pump(context.Background())
	if !ran {
		t.Fatal("posted callback did not run after pump")
	}
}

func TestPost_ErrorHandler(t *testing.T) {
	wantErr := errors.New("asset import failed")
	var handled error
	d := newTestDispatcher(t, WithErrorHandler(func(it *item.Item, err error) {
		handled = err
	}))

	_ = d.Post(func(ctx context.Context, state any) error {
		return wantErr
	}, nil)
	d.Pump(context.Background())

	if !errors.Is(handled, wantErr) {
		t.Fatalf("error handler received %v, want %v", handled, wantErr)
	}
}

// ──────────────────────────────────────────────────
// Operation tracking and Busy
// ──────────────────────────────────────────────────

func TestBusy_TracksOperations(t *testing.T) {
	d := newTestDispatcher(t)

	if d.Busy() {
		t.Fatal("Busy() = true on idle dispatcher")
	}

	d.OperationStarted()
	if !d.Busy() {
		t.Fatal("Busy() = false with an in-flight operation")
	}
	if got := d.InFlight(); got != 1 {
		t.Fatalf("InFlight() = %d, want 1", got)
	}

	d.OperationCompleted()
	if d.Busy() {
		t.Fatal("Busy() = true after operation completed")
	}
}

func TestBusy_SkewedCounterStillBusy(t *testing.T) {
	d := newTestDispatcher(t, WithFlushBackoff(backoff.NewConstant(time.Millisecond)))

	// An unbalanced OperationCompleted drives the counter negative.
	// Nonzero in either direction means not idle.
	d.OperationCompleted()
	if got := d.InFlight(); got != -1 {
		t.Fatalf("InFlight() = %d, want -1", got)
	}
	if !d.Busy() {
		t.Fatal("Busy() = false with a skewed operation counter")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if d.Flush(ctx) {
		t.Fatal("Flush() = true with a skewed operation counter")
	}

	d.OperationStarted()
	if d.Busy() {
		t.Fatal("Busy() = true after the counter rebalanced to zero")
	}
}

// ──────────────────────────────────────────────────
// Derive
// ──────────────────────────────────────────────────

func TestDerive_SharesQueue(t *testing.T) {
	d := newTestDispatcher(t)
	h := d.Derive()

	if h.ID() == d.ID() {
		t.Fatal("derived handle should have its own ID")
	}

	var ran bool
	_ = h.Post(func(ctx context.Context, state any) error {
		ran = true
		return nil
	}, nil)

	if !d.Busy() {
		t.Fatal("work posted through the derived handle should be visible to the root")
	}
	d.Pump(context.Background())
	if !ran {
		t.Fatal("root pump should execute work posted through the derived handle")
	}
}

func TestDerive_SharesOperationCounter(t *testing.T) {
	d := newTestDispatcher(t)
	h := d.Derive()

	h.OperationStarted()
	if !d.Busy() {
		t.Fatal("operations started on a derived handle should make the root busy")
	}
	d.OperationCompleted()
	if h.Busy() {
		t.Fatal("counter should be shared both ways")
	}
}

// ──────────────────────────────────────────────────
// Stats
// ──────────────────────────────────────────────────

func TestStats_Counters(t *testing.T) {
	d := newTestDispatcher(t)

	_ = d.Post(func(ctx context.Context, state any) error { return nil }, nil)
	_ = d.Post(func(ctx context.Context, state any) error {
		return errors.New("nope")
	}, nil)

	if got := d.Stats(); got.Pending != 2 || got.Enqueued != 2 || got.Executed != 0 {
		t.Fatalf("Stats() before pump = %+v", got)
	}

	d.Pump(context.Background())

	// Inline send counts as executed without ever being enqueued.
	_ = d.Send(context.Background(), func(ctx context.Context, state any) error { return nil }, nil)

	got := d.Stats()
	if got.Pending != 0 || got.Enqueued != 2 || got.Executed != 3 || got.Failed != 1 {
		t.Fatalf("Stats() after pump = %+v", got)
	}
}

func TestStats_SharedAcrossDerivedHandles(t *testing.T) {
	d := newTestDispatcher(t)
	h := d.Derive()

	_ = h.Post(func(ctx context.Context, state any) error { return nil }, nil)
	d.Pump(context.Background())

	if got := d.Stats(); got.Executed != 1 {
		t.Fatalf("Stats().Executed = %d, want 1", got.Executed)
	}
	if got := h.Stats(); got.Executed != 1 {
		t.Fatalf("derived Stats().Executed = %d, want 1", got.Executed)
	}
}

// ──────────────────────────────────────────────────
// Context carrier
// ──────────────────────────────────────────────────

func TestContextCarrier(t *testing.T) {
	d := newTestDispatcher(t)

	ctx := NewContext(context.Background(), d)
	got, ok := FromContext(ctx)
	if !ok || got != d {
		t.Fatalf("FromContext() = %v, %v; want the stored dispatcher", got, ok)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("FromContext on a bare context should report absence")
	}
}
