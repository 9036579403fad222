package anchor

import (
	"log/slog"

	"github.com/xraph/anchor/backoff"
	"github.com/xraph/anchor/ext"
	"github.com/xraph/anchor/item"
	"github.com/xraph/anchor/middleware"
)

// Option configures a Dispatcher during construction.
type Option func(*Dispatcher) error

// WithLogger sets the structured logger used by the dispatcher, its
// extension registry, and the default error handler.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if logger == nil {
			return ErrNilLogger
		}
		d.logger = logger
		return nil
	}
}

// WithConfig replaces the entire dispatcher configuration.
func WithConfig(cfg Config) Option {
	return func(d *Dispatcher) error {
		d.config = cfg
		return nil
	}
}

// WithQueueWarnDepth sets the pending-queue depth at which a
// rate-limited warning is logged. Zero disables the warning.
func WithQueueWarnDepth(depth int) Option {
	return func(d *Dispatcher) error {
		d.config.QueueWarnDepth = depth
		return nil
	}
}

// WithoutInstall prevents New from installing the dispatcher as the
// process-wide default.
func WithoutInstall() Option {
	return func(d *Dispatcher) error {
		d.config.InstallDefault = false
		return nil
	}
}

// WithExtension registers a lifecycle extension. Extensions are
// notified in registration order.
func WithExtension(e ext.Extension) Option {
	return func(d *Dispatcher) error {
		d.exts = append(d.exts, e)
		return nil
	}
}

// WithMiddleware appends middleware to the item invocation chain.
// Middleware run in the order given, outermost first.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(d *Dispatcher) error {
		d.middlewares = append(d.middlewares, mws...)
		return nil
	}
}

// WithErrorHandler sets the handler invoked when a fire-and-forget
// (Post) item fails. The default handler logs the error. Send failures
// are returned to the blocked caller instead.
func WithErrorHandler(fn func(it *item.Item, err error)) Option {
	return func(d *Dispatcher) error {
		d.errHandler = fn
		return nil
	}
}

// WithFlushBackoff sets the yield strategy used between Flush poll
// iterations. The default is backoff.DefaultStrategy.
func WithFlushBackoff(s backoff.Strategy) Option {
	return func(d *Dispatcher) error {
		if s == nil {
			return ErrNilStrategy
		}
		d.flushYield = s
		return nil
	}
}
