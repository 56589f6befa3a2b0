// Package retry provides backoff policies and a context-aware retry loop.
package retry

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// BackoffMode selects how delays grow between attempts.
type BackoffMode string

// Backoff modes.
const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

// Sentinel errors.
var (
	ErrExhausted     = errors.New("retries exhausted")
	ErrInvalidPolicy = errors.New("invalid retry policy")
)

// Policy encapsulates retry/backoff settings for transient failures.
type Policy struct {
	Mode       BackoffMode   // fixed|linear|exponential
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // retry attempts after the first failure
	Jitter     bool          // scale each delay by a random factor in [0.8, 1.2)
}

// DefaultPolicy returns exponential backoff from 500ms capped at 8s, 2 retries, with jitter.
func DefaultPolicy() Policy {
	return Policy{Mode: BackoffExponential, Initial: 500 * time.Millisecond, Max: 8 * time.Second, MaxRetries: 2, Jitter: true}
}

// NewPolicy builds a policy from raw config fields; zero/invalid values fall back to defaults.
func NewPolicy(mode BackoffMode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case BackoffFixed, BackoffLinear, BackoffExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff delay for the given retry (1-based: first retry => 1),
// before jitter.
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	switch p.Mode {
	case BackoffFixed:
		return p.Initial
	case BackoffExponential:
		if retryCount > 32 {
			return p.Max
		}
		d := p.Initial * (1 << (retryCount - 1))
		if d > p.Max || d <= 0 {
			return p.Max
		}
		return d
	default: // linear
		d := time.Duration(retryCount) * p.Initial
		if d > p.Max {
			return p.Max
		}
		return d
	}
}

// Validate ensures the policy can be applied.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("%w: initial must be >0", ErrInvalidPolicy)
	}
	if p.Max <= 0 {
		return fmt.Errorf("%w: max must be >0", ErrInvalidPolicy)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries cannot be negative", ErrInvalidPolicy)
	}
	switch p.Mode {
	case BackoffFixed, BackoffLinear, BackoffExponential:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidPolicy, p.Mode)
	}
	return nil
}

func (p Policy) wait(retryCount int) time.Duration {
	d := p.Delay(retryCount)
	if p.Jitter && d > 0 {
		d = time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
	}
	return d
}
