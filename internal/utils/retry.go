package utils

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryHandler runs a call up to attempts times, waiting interval between
// attempts, and gives up once timeout has elapsed.
type RetryHandler struct {
	timeout  time.Duration
	interval time.Duration
	attempts int
}

func NewRetryHandler(timeout, interval time.Duration, attempts int) *RetryHandler {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryHandler{timeout: timeout, interval: interval, attempts: attempts}
}

// Do returns nil on the first successful call or the last error.
func (r *RetryHandler) Do(fn func() error) error {
	return r.DoContext(context.Background(), func(context.Context) error {
		return fn()
	})
}

func (r *RetryHandler) DoContext(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == r.attempts {
			break
		}

		log.Debug().Err(err).Msgf("retry: attempt %d of %d failed", attempt, r.attempts)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(r.interval):
		}
	}
	return err
}
