package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freegrab/pkg/logger"
)

// Operation performs one attempt
type Operation func(ctx context.Context) error

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited)
	MaxAttempts int
	// Backoff decides the delay after each failure
	Backoff BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each wait
	OnRetry func(attempt int, err error, delay time.Duration)
	// Sleeper performs the waits; RealSleeper when nil
	Sleeper Sleeper
	// Logger for retry attempts
	Logger logger.Logger
}

// RetryUnlessCanceled retries every error except context cancellation
func RetryUnlessCanceled(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Do runs op until it succeeds, RetryIf rejects its error, MaxAttempts is
// reached or ctx is done. It returns the number of attempts made.
func Do(ctx context.Context, op Operation, cfg *Config) (int, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = RetryUnlessCanceled
	}
	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = RealSleeper
	}

	var lastErr error
	attempt := 0

	for {
		attempt++

		if cfg.MaxAttempts > 0 && attempt > cfg.MaxAttempts {
			if cfg.Logger != nil {
				cfg.Logger.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
					"attempts":   attempt - 1,
					"last_error": lastErr.Error(),
				})
			}
			return attempt - 1, fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
		}

		err := op(ctx)
		if err == nil {
			if attempt > 1 && cfg.Logger != nil {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return attempt, nil
		}

		lastErr = err

		if !retryIf(err) {
			return attempt, err
		}

		var delay time.Duration
		if cfg.Backoff != nil {
			delay = cfg.Backoff.NextDelay(attempt, err)
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		if cfg.Logger != nil {
			cfg.Logger.DebugWithFields("retrying operation", map[string]interface{}{
				"attempt":  attempt,
				"error":    err.Error(),
				"delay_ms": delay.Milliseconds(),
			})
		}

		if err := sleeper.Sleep(ctx, delay); err != nil {
			if cfg.Logger != nil {
				cfg.Logger.WarnWithFields("retry cancelled", map[string]interface{}{
					"attempt": attempt,
					"reason":  err.Error(),
				})
			}
			return attempt, fmt.Errorf("retry cancelled: %w", err)
		}
	}
}
