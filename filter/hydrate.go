package filter

import (
	"context"

	"github.com/acksell/catalog"
	"golang.org/x/sync/errgroup"
)

// hydrate reads the full products behind skus in concurrent batches. The
// first failed batch cancels the others and fails the whole read. SKUs
// that no longer exist are silently absent.
func (e *Engine) hydrate(ctx context.Context, skus []string) ([]catalog.Product, error) {
	batches := chunk(skus, e.batchSize)
	results := make([][]catalog.Product, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			products, err := e.store.BatchGet(gctx, batch)
			e.metrics.HydrationBatch(err)
			if err != nil {
				return &catalog.HydrationError{Batch: i, Size: len(batch), Err: err}
			}
			results[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := 0
	for _, r := range results {
		n += len(r)
	}
	products := make([]catalog.Product, 0, n)
	for _, r := range results {
		products = append(products, r...)
	}
	return products, nil
}

func chunk(skus []string, size int) [][]string {
	var out [][]string
	for len(skus) > size {
		out = append(out, skus[:size:size])
		skus = skus[size:]
	}
	if len(skus) > 0 {
		out = append(out, skus)
	}
	return out
}
