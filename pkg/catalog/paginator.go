// Package catalog walks the paginated catalog search.
package catalog

import (
	"context"
	"fmt"

	"freegrab/pkg/logger"
	"freegrab/pkg/marketplace"
	"freegrab/pkg/metrics"
)

// Searcher fetches one page of catalog search results
type Searcher interface {
	SearchItems(ctx context.Context, q marketplace.SearchQuery, cursor string) (*marketplace.SearchResponse, error)
}

// Page is one batch of items. Done is set on the last page, which may
// still carry items.
type Page struct {
	Number int
	Items  []marketplace.CatalogItem
	Done   bool
}

// Paginator lazily walks the catalog forward, one request per page.
// It is not safe for concurrent use.
type Paginator struct {
	api    Searcher
	query  marketplace.SearchQuery
	cursor string
	done   bool
	pages  int
	logger logger.Logger
}

// NewPaginator creates a paginator starting at the first page
func NewPaginator(api Searcher, q marketplace.SearchQuery, log logger.Logger) *Paginator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Paginator{api: api, query: q, logger: log}
}

// Next fetches the next page. Once a page has been returned with Done set,
// further calls return an empty done page without issuing requests.
func (p *Paginator) Next(ctx context.Context) (Page, error) {
	if p.done {
		return Page{Number: p.pages, Done: true}, nil
	}

	resp, err := p.api.SearchItems(ctx, p.query, p.cursor)
	if err != nil {
		return Page{}, fmt.Errorf("fetch catalog page %d: %w", p.pages+1, err)
	}
	p.pages++
	metrics.PagesFetched.Inc()

	if resp.Data == nil {
		p.done = true
		logger.LogPage(p.logger, p.pages, 0, "", true)
		return Page{Number: p.pages, Done: true}, nil
	}

	items := *resp.Data
	metrics.ItemsSeen.Add(float64(len(items)))

	if resp.NextPageCursor == nil || *resp.NextPageCursor == "" {
		p.done = true
	} else {
		p.cursor = *resp.NextPageCursor
	}

	logger.LogPage(p.logger, p.pages, len(items), p.cursor, p.done)
	return Page{Number: p.pages, Items: items, Done: p.done}, nil
}

// Pages returns the number of pages fetched so far
func (p *Paginator) Pages() int {
	return p.pages
}
