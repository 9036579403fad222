package anchor

// Config holds configuration for a Dispatcher.
type Config struct {
	// QueueWarnDepth is the pending-queue depth at which a warning is
	// logged (rate-limited). Producers outpacing the pump grow the
	// queue without bound; the warning is the early signal. Zero
	// disables the check.
	QueueWarnDepth int

	// InstallDefault controls whether New installs the dispatcher as
	// the process-wide default (see Default / SetDefault).
	InstallDefault bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		QueueWarnDepth: 1024,
		InstallDefault: true,
	}
}
