package buyer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"freegrab/pkg/marketplace"
)

// fakeSleeper records requested durations and never blocks. When cancelOn
// matches a requested duration it cancels the run instead.
type fakeSleeper struct {
	mu       sync.Mutex
	slept    []time.Duration
	cancelOn time.Duration
	cancel   context.CancelFunc
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.slept = append(f.slept, d)
	f.mu.Unlock()

	if f.cancel != nil && d == f.cancelOn {
		f.cancel()
	}
	return ctx.Err()
}

func (f *fakeSleeper) durations() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.slept))
	copy(out, f.slept)
	return out
}

// recordingReporter captures status events as short strings
type recordingReporter struct {
	events []string
	done   []uint64
}

func (r *recordingReporter) NoPrice(item marketplace.CatalogItem) {
	r.events = append(r.events, fmt.Sprintf("no_price:%d", item.ID))
}

func (r *recordingReporter) Purchased(item marketplace.CatalogItem) {
	r.events = append(r.events, fmt.Sprintf("purchased:%d", item.ID))
}

func (r *recordingReporter) Failed(item marketplace.CatalogItem, code int) {
	r.events = append(r.events, fmt.Sprintf("failed:%d:%d", item.ID, code))
}

func (r *recordingReporter) RateLimited(item marketplace.CatalogItem, wait time.Duration) {
	r.events = append(r.events, fmt.Sprintf("rate_limited:%d:%s", item.ID, wait))
}

func (r *recordingReporter) Done(purchased uint64) {
	r.done = append(r.done, purchased)
}

type purchaseResult struct {
	resp *marketplace.PurchaseResponse
	err  error
}

// scriptedPurchaser replays results; once exhausted every call succeeds
type scriptedPurchaser struct {
	results []purchaseResult
	calls   int
	tokens  []string
}

func (s *scriptedPurchaser) Purchase(ctx context.Context, csrfToken string, item marketplace.CatalogItem) (*marketplace.PurchaseResponse, error) {
	s.calls++
	s.tokens = append(s.tokens, csrfToken)
	if s.calls <= len(s.results) {
		r := s.results[s.calls-1]
		return r.resp, r.err
	}
	return &marketplace.PurchaseResponse{}, nil
}

func rejected(codes ...int) purchaseResult {
	resp := &marketplace.PurchaseResponse{}
	for _, c := range codes {
		resp.Errors = append(resp.Errors, marketplace.APIError{Code: c})
	}
	return purchaseResult{resp: resp}
}

func priced(id uint64) marketplace.CatalogItem {
	zero := uint32(0)
	return marketplace.CatalogItem{
		ID:              id,
		Name:            fmt.Sprintf("item-%d", id),
		ProductID:       id * 100,
		CreatorType:     "Group",
		CreatorTargetID: 55,
		Price:           &zero,
	}
}
