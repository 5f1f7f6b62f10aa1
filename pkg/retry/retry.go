package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a bounded retry: at most MaxAttempts tries with a fixed delay
// between them. Only apply it to idempotent operations.
type Policy struct {
	MaxAttempts uint64
	Delay       time.Duration
}

// Default matches the app's historical save behavior: three tries, one
// second apart.
func Default() Policy {
	return Policy{MaxAttempts: 3, Delay: time.Second}
}

// Permanent marks err as not worth retrying; Do returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs fn until it succeeds, the attempts are exhausted, or ctx is done.
// The last error is returned.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), attempts-1),
		ctx,
	)
	return backoff.Retry(fn, b)
}
