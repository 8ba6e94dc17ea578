package buyer

import (
	"context"
	"strconv"
	"time"

	errs "freegrab/pkg/errors"
	"freegrab/pkg/logger"
	"freegrab/pkg/marketplace"
	"freegrab/pkg/metrics"
	"freegrab/pkg/retry"
	"freegrab/pkg/session"
)

const (
	// RateLimitCooldown is how long to wait after a rate-limit rejection
	RateLimitCooldown = 65 * time.Second

	// PurchaseInterval is the pause after every successful purchase
	PurchaseInterval = time.Second
)

// Purchaser submits purchase requests
type Purchaser interface {
	Purchase(ctx context.Context, csrfToken string, item marketplace.CatalogItem) (*marketplace.PurchaseResponse, error)
}

// Reporter receives user-facing status events
type Reporter interface {
	NoPrice(item marketplace.CatalogItem)
	Purchased(item marketplace.CatalogItem)
	// Failed is called once per rejection code, with code 0 for transport failures
	Failed(item marketplace.CatalogItem, code int)
	RateLimited(item marketplace.CatalogItem, wait time.Duration)
	Done(purchased uint64)
}

// OutcomeKind classifies how an acquisition attempt ended
type OutcomeKind int

const (
	Succeeded OutcomeKind = iota
	Skipped
	RateLimited
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case Skipped:
		return "skipped"
	case RateLimited:
		return "rate_limited"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Attempt. Attempts counts purchase requests.
type Outcome struct {
	Kind     OutcomeKind
	Reason   string
	Attempts int
}

// Executor purchases single items, retrying until the purchase goes
// through or the context is cancelled
type Executor struct {
	api      Purchaser
	session  *session.Session
	reporter Reporter
	sleeper  retry.Sleeper
	backoff  retry.BackoffStrategy
	logger   logger.Logger
}

// NewExecutor creates an executor that sleeps on the wall clock
func NewExecutor(api Purchaser, sess *session.Session, reporter Reporter, log logger.Logger) *Executor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Executor{
		api:      api,
		session:  sess,
		reporter: reporter,
		sleeper:  retry.RealSleeper,
		backoff: &retry.ErrorTypeBackoff{
			RateLimitBackoff: &retry.ConstantBackoff{Delay: RateLimitCooldown},
			DefaultBackoff:   &retry.ConstantBackoff{},
		},
		logger: log,
	}
}

// SetSleeper replaces the clock used for cool-downs and pacing
func (e *Executor) SetSleeper(s retry.Sleeper) {
	e.sleeper = s
}

// Attempt purchases item. It returns a Skipped outcome for unpriced items
// without issuing any request, Succeeded once the marketplace accepts the
// purchase, and an error only when ctx is done. A cancelled attempt reports
// RateLimited if it was cooling down and Failed otherwise.
func (e *Executor) Attempt(ctx context.Context, item marketplace.CatalogItem) (Outcome, error) {
	if !item.HasPrice() {
		e.reporter.NoPrice(item)
		metrics.ItemsSkipped.WithLabelValues(metrics.SkipNoPrice).Inc()
		logger.LogSkip(e.logger, item.ID, metrics.SkipNoPrice)
		return Outcome{Kind: Skipped, Reason: "no price"}, nil
	}

	var lastErr error
	attempts, err := retry.Do(ctx, func(ctx context.Context) error {
		lastErr = e.purchaseOnce(ctx, item)
		return lastErr
	}, &retry.Config{
		Backoff: e.backoff,
		RetryIf: retry.RetryUnlessCanceled,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			switch errs.TypeOf(err) {
			case errs.ErrorTypeRateLimit:
				metrics.RateLimitCooldowns.Inc()
				logger.LogRateLimit(e.logger, item.ProductID, delay)
			case errs.ErrorTypePurchase:
			default:
				metrics.TransportRetries.Inc()
			}
		},
		Sleeper: e.sleeper,
		Logger:  e.logger,
	})
	if err != nil {
		logger.LogPurchase(e.logger, item.ID, item.ProductID, attempts, err)
		kind := Failed
		if errs.Is(lastErr, errs.ErrorTypeRateLimit) {
			kind = RateLimited
		}
		return Outcome{Kind: kind, Reason: err.Error(), Attempts: attempts}, err
	}

	e.reporter.Purchased(item)
	metrics.Purchases.Inc()
	logger.LogPurchase(e.logger, item.ID, item.ProductID, attempts, nil)

	// pacing only; a cancellation here surfaces on the next request
	_ = e.sleeper.Sleep(ctx, PurchaseInterval)

	return Outcome{Kind: Succeeded, Attempts: attempts}, nil
}

// purchaseOnce issues one purchase request and reports what happened.
// The returned error's type selects the delay before the next attempt.
func (e *Executor) purchaseOnce(ctx context.Context, item marketplace.CatalogItem) error {
	resp, err := e.api.Purchase(ctx, e.session.AntiForgeryToken, item)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		e.reporter.Failed(item, 0)
		metrics.PurchaseFailures.WithLabelValues(metrics.FailureTransport).Inc()
		return err
	}

	if !resp.Failed() {
		return nil
	}

	firstCode := 0
	for _, apiErr := range resp.Errors {
		if apiErr.Code == marketplace.RateLimitCode {
			continue
		}
		if firstCode == 0 {
			firstCode = apiErr.Code
		}
		e.reporter.Failed(item, apiErr.Code)
		metrics.PurchaseFailures.WithLabelValues(strconv.Itoa(apiErr.Code)).Inc()
	}

	if resp.RateLimited() {
		e.reporter.RateLimited(item, RateLimitCooldown)
		return errs.New(errs.ErrorTypeRateLimit, marketplace.RateLimitCode, "purchase of product %d rate limited", item.ProductID)
	}
	return errs.New(errs.ErrorTypePurchase, firstCode, "purchase of product %d rejected", item.ProductID)
}
