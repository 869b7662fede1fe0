package google

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"
)

// Call runs op with rate limiting and exponential backoff. Rate limit
// and server errors are retried; everything else fails immediately. A
// 429 response also feeds the limiter's backoff window so unrelated
// calls slow down too.
func Call(ctx context.Context, limiter *RateLimiter, op func() error) error {
	operation := func() error {
		if err := limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		err := op()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(WrapError(err))
		}
		if IsRateLimited(err) {
			limiter.RecordRateLimitError(retryAfterSeconds(err))
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 2 * time.Minute

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return WrapError(err)
	}
	return nil
}

// retryAfterSeconds reads the Retry-After header from a 429 response,
// zero when absent.
func retryAfterSeconds(err error) int {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	if v := gerr.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return secs
		}
	}
	return 0
}
