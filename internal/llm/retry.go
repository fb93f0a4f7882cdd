package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// RetryPolicy retries transient failures with exponential backoff. The zero
// value makes a single attempt.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// DefaultRetryPolicy retries three times starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Backoff: 500 * time.Millisecond, MaxBackoff: 8 * time.Second}
}

// Do runs fn until it succeeds, fails permanently, runs out of retries or
// ctx is done.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	wait := p.Backoff
	if wait <= 0 {
		wait = 100 * time.Millisecond
	}
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= p.MaxRetries || !Retryable(err) || ctx.Err() != nil {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
		wait *= 2
		if p.MaxBackoff > 0 && wait > p.MaxBackoff {
			wait = p.MaxBackoff
		}
	}
}

// Retryable reports whether err is worth another attempt: rate limits,
// server errors and network failures other than cancellation.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
