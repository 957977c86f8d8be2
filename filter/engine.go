// Package filter answers product searches by fanning a filter out over the
// secondary indexes, merging and hydrating the hits, then sorting and paging
// them in memory.
package filter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/logger"
	"github.com/acksell/catalog/metrics"
	"github.com/acksell/catalog/productstore"
	"golang.org/x/text/language"
)

const (
	DefaultBatchSize   = productstore.MaxBatchGet
	DefaultConcurrency = 8
	DefaultLocale      = "en"
	DefaultMaxPageSize = 100
)

// Source is the part of a product store the engine reads from. One Source
// is shared by every concurrent query and batch of a search.
type Source interface {
	Query(ctx context.Context, q productstore.IndexQuery) ([]string, error)
	BatchGet(ctx context.Context, skus []string) ([]catalog.Product, error)
}

type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// BatchSize is the number of SKUs per hydration read, at most
	// productstore.MaxBatchGet.
	BatchSize int
	// Concurrency bounds the hydration reads in flight.
	Concurrency int
	// Locale drives the ordering of text fields, as a BCP 47 tag.
	Locale          string
	DefaultPageSize int
	MaxPageSize     int
}

type Engine struct {
	store   Source
	logger  *slog.Logger
	metrics *metrics.Metrics

	batchSize       int
	concurrency     int
	locale          language.Tag
	defaultPageSize int
	maxPageSize     int
}

func New(store Source, opts Options) (*Engine, error) {
	e := &Engine{
		store:           store,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		batchSize:       opts.BatchSize,
		concurrency:     opts.Concurrency,
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
	}
	if e.logger == nil {
		e.logger = logger.Discard()
	}
	if e.batchSize < 1 {
		e.batchSize = DefaultBatchSize
	}
	if e.batchSize > productstore.MaxBatchGet {
		return nil, fmt.Errorf("batch size %d above the store limit of %d", e.batchSize, productstore.MaxBatchGet)
	}
	if e.concurrency < 1 {
		e.concurrency = DefaultConcurrency
	}
	if e.defaultPageSize < 1 {
		e.defaultPageSize = catalog.DefaultPageSize
	}
	if e.maxPageSize < 1 {
		e.maxPageSize = DefaultMaxPageSize
	}
	if e.defaultPageSize > e.maxPageSize {
		return nil, fmt.Errorf("default page size %d above max page size %d", e.defaultPageSize, e.maxPageSize)
	}
	locale := opts.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("sort locale %q: %w", locale, err)
	}
	e.locale = tag
	return e, nil
}

// GetByFilters runs a search. A filter without brand, category or product
// name fails with a *catalog.ConfigurationError before the store is touched.
// Failed index queries only shrink the result; a failed hydration batch
// fails the search with a *catalog.HydrationError.
func (e *Engine) GetByFilters(ctx context.Context, f catalog.Filter) (page Page, err error) {
	start := time.Now()
	defer func() { e.metrics.Filter(time.Since(start), err) }()

	f = f.WithDefaults(e.defaultPageSize)
	if f.PageSize > e.maxPageSize {
		return Page{}, &catalog.ConfigurationError{Reason: fmt.Sprintf("page size %d above maximum %d", f.PageSize, e.maxPageSize)}
	}
	queries, err := Plan(f)
	if err != nil {
		return Page{}, err
	}

	log := logger.FromContext(ctx, e.logger)
	log.DebugContext(ctx, "searching products", slog.Int("queries", len(queries)))

	skus := Merge(e.execute(ctx, queries))
	var products []catalog.Product
	if len(skus) > 0 {
		products, err = e.hydrate(ctx, skus)
		if err != nil {
			log.ErrorContext(ctx, "hydration failed", slog.String("error", err.Error()))
			return Page{}, err
		}
	}
	products = FilterStock(products, f)

	page = Finalize(products, f, e.locale)
	log.DebugContext(ctx, "search done",
		slog.Int("matched", page.Total),
		slog.Int("returned", len(page.Products)))
	return page, nil
}
