// Package ratelimit provides the shared token bucket that guards calls to a
// provider instance. The bucket is the only synchronized resource shared by
// concurrent case evaluations; both generation and judge calls draw from it.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter wraps a token-bucket rate limiter scoped to one provider. A nil
// *Limiter is valid and applies no throttling, so callers need no nil
// checks at call sites.
type Limiter struct {
	limiter  *rate.Limiter
	provider string
}

// New creates a limiter allowing rps sustained requests per second with the
// given burst capacity. Non-positive rps returns a nil limiter (unlimited).
func New(provider string, rps float64, burst int) *Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		provider: provider,
	}
}

// Wait blocks until a token is available or ctx is done. It is the
// suspension point every provider call shares, whether issued by a case
// worker or the judge.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.provider, err)
	}
	return nil
}
