package filter

import (
	"context"
	"log/slog"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/logger"
	"github.com/acksell/catalog/productstore"
	"golang.org/x/sync/errgroup"
)

// execute runs every query concurrently and returns the SKUs of each query
// in plan order. A failed query is logged and contributes nothing; it never
// cancels or fails its siblings.
func (e *Engine) execute(ctx context.Context, queries []productstore.IndexQuery) [][]string {
	results := make([][]string, len(queries))
	errs := make([]error, len(queries))

	// no derived context: a failed query must not cancel its siblings
	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			skus, err := e.store.Query(ctx, q)
			e.metrics.IndexQuery(q.Index, err)
			if err != nil {
				errs[i] = &catalog.IndexQueryError{Index: q.Index, Condition: q.Key.String(), Err: err}
				return nil
			}
			results[i] = skus
			return nil
		})
	}
	_ = g.Wait()

	log := logger.FromContext(ctx, e.logger)
	failed := 0
	for _, err := range errs {
		if err == nil {
			continue
		}
		failed++
		qe := err.(*catalog.IndexQueryError)
		log.WarnContext(ctx, "index query failed",
			slog.String("index", qe.Index),
			slog.String("condition", qe.Condition),
			slog.String("error", qe.Err.Error()))
	}
	if failed > 0 && failed == len(queries) {
		log.ErrorContext(ctx, "all index queries failed", slog.Int("queries", failed))
	}
	return results
}
