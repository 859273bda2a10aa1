package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("rejects non-positive initial interval", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.InitialInterval = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInitialIntervalInvalid)
	})

	t.Run("rejects max below initial", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxInterval = cfg.InitialInterval - time.Millisecond
		assert.ErrorIs(t, cfg.Validate(), ErrMaxIntervalInvalid)
	})

	t.Run("rejects multiplier below one", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Multiplier = 0.5
		assert.ErrorIs(t, cfg.Validate(), ErrMultiplierInvalid)
	})
}

func TestBackoff(t *testing.T) {
	cfg := Config{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     1 * time.Second,
		Multiplier:      2.0,
		UseJitter:       false,
	}

	t.Run("exponential growth without jitter", func(t *testing.T) {
		assert.Equal(t, 100*time.Millisecond, Backoff(1, cfg))
		assert.Equal(t, 200*time.Millisecond, Backoff(2, cfg))
		assert.Equal(t, 400*time.Millisecond, Backoff(3, cfg))
		assert.Equal(t, 800*time.Millisecond, Backoff(4, cfg))
	})

	t.Run("caps at max interval", func(t *testing.T) {
		assert.Equal(t, cfg.MaxInterval, Backoff(5, cfg))
		assert.Equal(t, cfg.MaxInterval, Backoff(50, cfg))
	})

	t.Run("non-positive attempts return zero", func(t *testing.T) {
		assert.Zero(t, Backoff(0, cfg))
		assert.Zero(t, Backoff(-1, cfg))
	})

	t.Run("jitter stays within bounds", func(t *testing.T) {
		jittered := cfg
		jittered.UseJitter = true
		for i := 0; i < 100; i++ {
			d := Backoff(3, jittered)
			assert.GreaterOrEqual(t, d, time.Duration(0))
			assert.LessOrEqual(t, d, 400*time.Millisecond,
				"full jitter must stay within [0, computed backoff]")
		}
	})
}

type retryAfterError struct {
	after time.Duration
}

func (e *retryAfterError) Error() string                { return "rate limited" }
func (e *retryAfterError) GetRetryAfter() time.Duration { return e.after }

func TestDelay(t *testing.T) {
	cfg := Config{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     1 * time.Second,
		Multiplier:      2.0,
		UseJitter:       false,
	}

	t.Run("backend retry-after takes precedence", func(t *testing.T) {
		err := &retryAfterError{after: 5 * time.Second}
		assert.Equal(t, 5*time.Second, Delay(1, cfg, err))
	})

	t.Run("wrapped retry-after is honored", func(t *testing.T) {
		err := fmt.Errorf("call: %w", &retryAfterError{after: 2 * time.Second})
		assert.Equal(t, 2*time.Second, Delay(1, cfg, err))
	})

	t.Run("falls back to backoff when no guidance", func(t *testing.T) {
		assert.Equal(t, 200*time.Millisecond, Delay(2, cfg, errors.New("timeout")))
		assert.Equal(t, 100*time.Millisecond, Delay(1, cfg, &retryAfterError{after: 0}))
	})
}
