// Package retry provides the backoff policy used by the orchestrator's
// explicit retry loop. Delays are computed as pure functions of the attempt
// number so retry behavior is unit-testable without timing dependencies.
package retry

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Configuration validation errors.
var (
	ErrInitialIntervalInvalid = errors.New("initialInterval must be greater than 0")
	ErrMaxIntervalInvalid     = errors.New("maxInterval must be >= initialInterval")
	ErrMultiplierInvalid      = errors.New("multiplier must be >= 1.0")
)

// Config controls exponential backoff between retry attempts.
type Config struct {
	// InitialInterval is the delay after the first failed attempt.
	InitialInterval time.Duration

	// MaxInterval caps the computed delay regardless of attempt count.
	MaxInterval time.Duration

	// Multiplier scales the delay each subsequent attempt.
	Multiplier float64

	// UseJitter applies full jitter: a uniform random delay in
	// [0, computed backoff].
	UseJitter bool
}

// DefaultConfig returns the backoff policy used when the caller supplies
// none: 500ms doubling to a 10s cap with jitter.
func DefaultConfig() Config {
	return Config{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		UseJitter:       true,
	}
}

// Validate checks the backoff configuration.
func (c Config) Validate() error {
	if c.InitialInterval <= 0 {
		return fmt.Errorf("%w, got %v", ErrInitialIntervalInvalid, c.InitialInterval)
	}
	if c.MaxInterval < c.InitialInterval {
		return fmt.Errorf("%w, MaxInterval: %v, InitialInterval: %v",
			ErrMaxIntervalInvalid, c.MaxInterval, c.InitialInterval)
	}
	if c.Multiplier < 1.0 {
		return fmt.Errorf("%w, got %f", ErrMultiplierInvalid, c.Multiplier)
	}
	return nil
}

// Backoff calculates the delay before retry attempt number attempt (1-based:
// attempt 1 is the delay after the first failure). The base delay doubles
// per the multiplier and is capped at MaxInterval; full jitter randomizes
// the result when enabled. Returns zero for non-positive attempts.
// Thread-safe via math/rand/v2.
func Backoff(attempt int, cfg Config) time.Duration {
	if attempt <= 0 {
		return 0
	}

	backoff := cfg.InitialInterval
	for i := 1; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if backoff > cfg.MaxInterval {
			backoff = cfg.MaxInterval
			break
		}
	}

	if cfg.UseJitter {
		// Full jitter: random between 0 and the calculated backoff.
		jitterMs := rand.Int63n(backoff.Milliseconds() + 1) // #nosec G404 -- non-cryptographic jitter is appropriate here
		return time.Duration(jitterMs) * time.Millisecond
	}

	return backoff
}

// RetryAfterProvider is implemented by errors carrying a backend-specified
// retry delay, which takes precedence over exponential backoff.
type RetryAfterProvider interface {
	// GetRetryAfter returns the recommended wait before the next attempt,
	// zero when no guidance is available.
	GetRetryAfter() time.Duration
}

// Delay computes the wait before the given retry attempt, honoring a
// provider-specified Retry-After from err when present and falling back to
// exponential backoff otherwise.
func Delay(attempt int, cfg Config, err error) time.Duration {
	var provider RetryAfterProvider
	if errors.As(err, &provider) {
		if retryAfter := provider.GetRetryAfter(); retryAfter > 0 {
			return retryAfter
		}
	}
	return Backoff(attempt, cfg)
}
