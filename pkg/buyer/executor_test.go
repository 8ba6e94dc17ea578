package buyer

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "freegrab/pkg/errors"
	"freegrab/pkg/logger"
	"freegrab/pkg/marketplace"
	"freegrab/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(p Purchaser) (*Executor, *recordingReporter, *fakeSleeper) {
	reporter := &recordingReporter{}
	sleeper := &fakeSleeper{}
	sess := &session.Session{IdentityToken: "cookie", AntiForgeryToken: "csrf", UserID: 9}

	e := NewExecutor(p, sess, reporter, logger.NewNopLogger())
	e.SetSleeper(sleeper)
	return e, reporter, sleeper
}

func TestAttemptNoPriceSkipsWithoutRequest(t *testing.T) {
	p := &scriptedPurchaser{}
	e, reporter, sleeper := newTestExecutor(p)

	item := priced(1)
	item.Price = nil

	outcome, err := e.Attempt(context.Background(), item)
	require.NoError(t, err)

	assert.Equal(t, Skipped, outcome.Kind)
	assert.Equal(t, "no price", outcome.Reason)
	assert.Zero(t, p.calls)
	assert.Empty(t, sleeper.durations())
	assert.Equal(t, []string{"no_price:1"}, reporter.events)
}

func TestAttemptSuccessPausesOneSecond(t *testing.T) {
	p := &scriptedPurchaser{}
	e, reporter, sleeper := newTestExecutor(p)

	outcome, err := e.Attempt(context.Background(), priced(2))
	require.NoError(t, err)

	assert.Equal(t, Succeeded, outcome.Kind)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, []string{"csrf"}, p.tokens)
	assert.Equal(t, []time.Duration{PurchaseInterval}, sleeper.durations())
	assert.Equal(t, []string{"purchased:2"}, reporter.events)
}

func TestAttemptRetries(t *testing.T) {
	transport := errs.Wrap(errs.ErrorTypeNetwork, 0, errors.New("connection reset"), "network error")
	undecodable := errs.New(errs.ErrorTypeParsing, 502, "failed to parse JSON")

	tests := []struct {
		name       string
		results    []purchaseResult
		wantCalls  int
		wantSleeps []time.Duration
		wantEvents []string
	}{
		{
			name:       "rate limit then success",
			results:    []purchaseResult{rejected(27)},
			wantCalls:  2,
			wantSleeps: []time.Duration{RateLimitCooldown, PurchaseInterval},
			wantEvents: []string{"rate_limited:3:1m5s", "purchased:3"},
		},
		{
			name:       "repeated rate limit codes cool down once per response",
			results:    []purchaseResult{rejected(27, 27)},
			wantCalls:  2,
			wantSleeps: []time.Duration{RateLimitCooldown, PurchaseInterval},
			wantEvents: []string{"rate_limited:3:1m5s", "purchased:3"},
		},
		{
			name:       "other codes retry immediately",
			results:    []purchaseResult{rejected(5), rejected(5)},
			wantCalls:  3,
			wantSleeps: []time.Duration{0, 0, PurchaseInterval},
			wantEvents: []string{"failed:3:5", "failed:3:5", "purchased:3"},
		},
		{
			name:       "mixed codes report each and cool down",
			results:    []purchaseResult{rejected(5, 27)},
			wantCalls:  2,
			wantSleeps: []time.Duration{RateLimitCooldown, PurchaseInterval},
			wantEvents: []string{"failed:3:5", "rate_limited:3:1m5s", "purchased:3"},
		},
		{
			name:       "transport failures retry immediately",
			results:    []purchaseResult{{err: transport}, {err: undecodable}},
			wantCalls:  3,
			wantSleeps: []time.Duration{0, 0, PurchaseInterval},
			wantEvents: []string{"failed:3:0", "failed:3:0", "purchased:3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedPurchaser{results: tt.results}
			e, reporter, sleeper := newTestExecutor(p)

			outcome, err := e.Attempt(context.Background(), priced(3))
			require.NoError(t, err)

			assert.Equal(t, Succeeded, outcome.Kind)
			assert.Equal(t, tt.wantCalls, outcome.Attempts)
			assert.Equal(t, tt.wantCalls, p.calls)
			assert.Equal(t, tt.wantSleeps, sleeper.durations())
			assert.Equal(t, tt.wantEvents, reporter.events)
		})
	}
}

func TestAttemptHasNoRetryCeiling(t *testing.T) {
	results := make([]purchaseResult, 250)
	for i := range results {
		results[i] = rejected(7)
	}
	p := &scriptedPurchaser{results: results}
	e, _, _ := newTestExecutor(p)

	outcome, err := e.Attempt(context.Background(), priced(4))
	require.NoError(t, err)
	assert.Equal(t, Succeeded, outcome.Kind)
	assert.Equal(t, 251, p.calls)
}

func TestAttemptCancelledDuringCooldown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &scriptedPurchaser{results: []purchaseResult{rejected(27)}}
	e, reporter, sleeper := newTestExecutor(p)
	sleeper.cancel = cancel
	sleeper.cancelOn = RateLimitCooldown

	outcome, err := e.Attempt(ctx, priced(5))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, RateLimited, outcome.Kind)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, []string{"rate_limited:5:1m5s"}, reporter.events)
}

func TestAttemptCancelledMidRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := &cancellingPurchaser{cancel: cancel}
	e, reporter, _ := newTestExecutor(p)

	outcome, err := e.Attempt(ctx, priced(6))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Failed, outcome.Kind)
	assert.Empty(t, reporter.events)
}

type cancellingPurchaser struct {
	cancel context.CancelFunc
}

func (c *cancellingPurchaser) Purchase(ctx context.Context, csrfToken string, item marketplace.CatalogItem) (*marketplace.PurchaseResponse, error) {
	c.cancel()
	return nil, errs.Wrap(errs.ErrorTypeNetwork, 0, ctx.Err(), "network error")
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "rate_limited", RateLimited.String())
	assert.Equal(t, "failed", Failed.String())
}
