// Package backoff provides pluggable yield-delay strategies for the
// flush polling loop. All strategies are safe for concurrent use (they
// are stateless).
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the cooperative sleep before the next poll iteration.
type Strategy interface {
	// Delay returns how long to yield before poll iteration n (1-indexed).
	// Iteration 1 is the first re-check after an initial non-idle pump.
	Delay(iteration int) time.Duration
}

// ──────────────────────────────────────────────────
// Constant
// ──────────────────────────────────────────────────

// Constant always returns the same delay regardless of iteration number.
type Constant struct {
	Interval time.Duration
}

// NewConstant creates a constant yield strategy.
func NewConstant(interval time.Duration) *Constant {
	return &Constant{Interval: interval}
}

// Delay returns the fixed interval.
func (c *Constant) Delay(_ int) time.Duration {
	return c.Interval
}

// ──────────────────────────────────────────────────
// Linear
// ──────────────────────────────────────────────────

// Linear increases the delay linearly with the iteration number.
// Delay = min(Initial * iteration, Max).
type Linear struct {
	Initial time.Duration
	Max     time.Duration
}

// NewLinear creates a linear yield strategy.
func NewLinear(initial, maxDelay time.Duration) *Linear {
	return &Linear{Initial: initial, Max: maxDelay}
}

// Delay returns Initial * iteration, capped at Max.
func (l *Linear) Delay(iteration int) time.Duration {
	d := l.Initial * time.Duration(iteration)
	if l.Max > 0 && d > l.Max {
		return l.Max
	}
	return d
}

// ──────────────────────────────────────────────────
// Exponential
// ──────────────────────────────────────────────────

// Exponential doubles the delay each iteration.
// Delay = min(Initial * 2^(iteration-1), Max).
//
// This keeps the flush loop responsive while work is still trickling in
// yet cheap once the system has been busy for a while.
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponential creates an exponential yield strategy.
func NewExponential(initial, maxDelay time.Duration) *Exponential {
	return &Exponential{Initial: initial, Max: maxDelay}
}

// Delay returns Initial * 2^(iteration-1), capped at Max.
func (e *Exponential) Delay(iteration int) time.Duration {
	d := time.Duration(float64(e.Initial) * math.Pow(2, float64(iteration-1)))
	if e.Max > 0 && d > e.Max {
		return e.Max
	}
	return d
}

// ──────────────────────────────────────────────────
// ExponentialWithJitter (full jitter)
// ──────────────────────────────────────────────────

// ExponentialWithJitter applies full jitter to an exponential base.
// Delay = random value in [0, min(Initial * 2^(iteration-1), Max)].
// Useful when several goroutines flush the same dispatcher at once and
// should not poll in lockstep.
type ExponentialWithJitter struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponentialWithJitter creates an exponential yield strategy with full jitter.
func NewExponentialWithJitter(initial, maxDelay time.Duration) *ExponentialWithJitter {
	return &ExponentialWithJitter{Initial: initial, Max: maxDelay}
}

// Delay returns a random duration in [0, min(Initial * 2^(iteration-1), Max)].
func (e *ExponentialWithJitter) Delay(iteration int) time.Duration {
	base := float64(e.Initial) * math.Pow(2, float64(iteration-1))
	if e.Max > 0 && base > float64(e.Max) {
		base = float64(e.Max)
	}
	return time.Duration(rand.Float64() * base) //nolint:gosec // jitter intentionally uses non-crypto rand
}

// ──────────────────────────────────────────────────
// Default
// ──────────────────────────────────────────────────

// DefaultStrategy returns the default yield used by Flush:
// Exponential with 100µs initial and 5ms max. Sub-millisecond at first
// so a nearly-drained queue clears with minimal added latency.
func DefaultStrategy() Strategy {
	return NewExponential(100*time.Microsecond, 5*time.Millisecond)
}
