// Package buyer drives a run: it walks the catalog, filters out items that
// should not be bought and purchases the rest one at a time.
package buyer

import (
	"context"
	"time"

	"freegrab/pkg/catalog"
	"freegrab/pkg/logger"
	"freegrab/pkg/marketplace"
	"freegrab/pkg/retry"
	"freegrab/pkg/session"
)

// API is everything a run needs from the marketplace
type API interface {
	catalog.Searcher
	Inventory
	Purchaser
}

// Options configure a Buyer
type Options struct {
	Query    marketplace.SearchQuery
	Reporter Reporter
	// Sleeper overrides the wall clock, mainly for tests
	Sleeper retry.Sleeper
	Logger  logger.Logger
}

// Summary describes a finished run
type Summary struct {
	Purchased uint64
	Seen      int
	Skipped   int
	Pages     int
	Elapsed   time.Duration
}

// Buyer runs one acquisition pass over the catalog
type Buyer struct {
	paginator *catalog.Paginator
	filter    *Filter
	executor  *Executor
	reporter  Reporter
	tally     Tally
	logger    logger.Logger
}

// New wires a Buyer for sess
func New(api API, sess *session.Session, opts Options) *Buyer {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}

	executor := NewExecutor(api, sess, reporter, log)
	if opts.Sleeper != nil {
		executor.SetSleeper(opts.Sleeper)
	}

	return &Buyer{
		paginator: catalog.NewPaginator(api, opts.Query, log),
		filter:    NewFilter(api, sess.UserID, log),
		executor:  executor,
		reporter:  reporter,
		logger:    log,
	}
}

// Run processes every page until the catalog is exhausted. It returns an
// error when a page or ownership lookup fails, or when ctx is cancelled;
// purchase failures are retried and never end the run.
func (b *Buyer) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	var summary Summary

	finish := func() Summary {
		summary.Purchased = b.tally.Count()
		summary.Pages = b.paginator.Pages()
		summary.Elapsed = time.Since(start)
		return summary
	}

	b.logger.Info("starting catalog run")

	for {
		page, err := b.paginator.Next(ctx)
		if err != nil {
			return finish(), err
		}

		for _, item := range page.Items {
			summary.Seen++

			eligible, err := b.filter.IsEligible(ctx, item)
			if err != nil {
				return finish(), err
			}
			if !eligible {
				summary.Skipped++
				continue
			}

			outcome, err := b.executor.Attempt(ctx, item)
			if err != nil {
				return finish(), err
			}
			switch outcome.Kind {
			case Succeeded:
				b.tally.Add()
			case Skipped:
				summary.Skipped++
			}
		}

		if page.Done {
			break
		}
	}

	result := finish()
	b.reporter.Done(result.Purchased)
	b.logger.InfoWithFields("catalog exhausted", map[string]interface{}{
		"purchased": result.Purchased,
		"seen":      result.Seen,
		"skipped":   result.Skipped,
		"pages":     result.Pages,
		"elapsed":   result.Elapsed,
	})
	return result, nil
}

type nopReporter struct{}

func (nopReporter) NoPrice(marketplace.CatalogItem)                    {}
func (nopReporter) Purchased(marketplace.CatalogItem)                  {}
func (nopReporter) Failed(marketplace.CatalogItem, int)                {}
func (nopReporter) RateLimited(marketplace.CatalogItem, time.Duration) {}
func (nopReporter) Done(uint64)                                        {}
