// Package retry provides the retry loop used around purchase requests.
//
// Delays are chosen per error type, so a rate-limit response can cool down
// for a fixed window while other failures are retried immediately. All
// waiting goes through a Sleeper, which lets tests substitute a fake clock.
//
// Basic usage:
//
//	cfg := &retry.Config{
//		MaxAttempts: 0, // unlimited
//		Backoff: &retry.ErrorTypeBackoff{
//			RateLimitBackoff: &retry.ConstantBackoff{Delay: 65 * time.Second},
//			DefaultBackoff:   &retry.ConstantBackoff{},
//		},
//		RetryIf: retry.RetryUnlessCanceled,
//	}
//	attempts, err := retry.Do(ctx, op, cfg)
package retry
