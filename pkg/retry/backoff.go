package retry

import (
	"context"
	"time"

	errs "freegrab/pkg/errors"
)

// BackoffStrategy decides how long to wait before the next attempt
type BackoffStrategy interface {
	// NextDelay returns the delay after the given failed attempt
	NextDelay(attempt int, err error) time.Duration
}

// ConstantBackoff waits the same amount after every failure.
// A zero Delay retries immediately.
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int, err error) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// ErrorTypeBackoff picks a strategy based on the type of the failing error
type ErrorTypeBackoff struct {
	// NetworkErrorBackoff for network-related errors
	NetworkErrorBackoff BackoffStrategy
	// RateLimitBackoff for rate limit errors
	RateLimitBackoff BackoffStrategy
	// ServerErrorBackoff for 5xx errors
	ServerErrorBackoff BackoffStrategy
	// DefaultBackoff for everything else
	DefaultBackoff BackoffStrategy
}

// NextDelay delegates to the strategy registered for err's type
func (etb *ErrorTypeBackoff) NextDelay(attempt int, err error) time.Duration {
	strategy := etb.GetBackoffForError(errs.TypeOf(err))
	if strategy == nil {
		return 0
	}
	return strategy.NextDelay(attempt, err)
}

// GetBackoffForError returns the strategy for errorType, falling back to
// DefaultBackoff when no specific one is set
func (etb *ErrorTypeBackoff) GetBackoffForError(errorType errs.ErrorType) BackoffStrategy {
	var strategy BackoffStrategy
	switch errorType {
	case errs.ErrorTypeNetwork:
		strategy = etb.NetworkErrorBackoff
	case errs.ErrorTypeRateLimit:
		strategy = etb.RateLimitBackoff
	case errs.ErrorTypeServerError:
		strategy = etb.ServerErrorBackoff
	}
	if strategy == nil {
		strategy = etb.DefaultBackoff
	}
	return strategy
}

// Sleeper blocks for a duration or until ctx is done
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// RealSleeper sleeps on the wall clock
var RealSleeper Sleeper = SleeperFunc(Wait)

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
