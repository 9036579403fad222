package anchor

import "errors"

var (
	// ErrNilCallback is returned when Send or Post is given a nil callback.
	ErrNilCallback = errors.New("anchor: nil callback")

	// ErrNilLogger is returned by WithLogger(nil).
	ErrNilLogger = errors.New("anchor: nil logger")

	// ErrNilStrategy is returned by WithFlushBackoff(nil).
	ErrNilStrategy = errors.New("anchor: nil backoff strategy")
)
