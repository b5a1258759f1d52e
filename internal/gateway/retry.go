package gateway

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy is a bounded exponential-backoff retry policy for provider calls.
// Delay before retry n (1-based) is BaseDelay*Multiplier^(n-1) plus a jitter in [0, MaxJitter).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxJitter   time.Duration

	// Retryable decides whether a classified failure earns another attempt.
	// Quota errors are never retried, whatever it returns.
	Retryable func(*Error) bool

	// OnRetry is called before each retry sleep.
	OnRetry func(attempt int, delay time.Duration, cause *Error)

	// Jitter overrides the random source; it must return a value in [0, max).
	Jitter func(max time.Duration) time.Duration
}

// DefaultPolicy is 3 attempts, 1s base delay doubling, up to 500ms jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		MaxJitter:   500 * time.Millisecond,
	}
}

func retryTransient(e *Error) bool {
	return e.Kind == KindProviderUnavailable || e.Kind == kindNoImage
}

func (p Policy) retryable(e *Error) bool {
	if e.Kind == KindQuotaExceeded {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(e)
	}
	return retryTransient(e)
}

func (p Policy) jitter() time.Duration {
	if p.MaxJitter <= 0 {
		return 0
	}
	if p.Jitter != nil {
		return p.Jitter(p.MaxJitter)
	}
	return time.Duration(rand.Int64N(int64(p.MaxJitter)))
}

// delay returns the base delay before retry n (1-based), without jitter.
func (p Policy) delay(n int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(mult, float64(n-1)))
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the attempts
// run out. Running out maps to KindGenerationExhausted wrapping the last cause.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		attempt int
		last    *Error
	)

	next := retry.BackoffFunc(func() (time.Duration, bool) {
		d := p.delay(attempt) + p.jitter()
		if p.OnRetry != nil {
			p.OnRetry(attempt, d, last)
		}
		return d, false
	})
	backoff := retry.WithMaxRetries(uint64(maxAttempts-1), next)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		last = Classify(err)
		if p.retryable(last) {
			return retry.RetryableError(last)
		}
		return last
	})
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Classify(ctxErr)
	}
	if last != nil && p.retryable(last) {
		return &Error{
			Kind:   KindGenerationExhausted,
			Reason: fmt.Sprintf("no usable result after %d attempts", attempt),
			Err:    last,
		}
	}
	return Classify(err)
}
