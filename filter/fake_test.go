package filter

import (
	"context"
	"errors"
	"sync"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/productstore"
)

var errUnavailable = errors.New("service unavailable")

// fakeSource serves index hits per index name and products per SKU, with
// failure injection on either side. It counts every call.
type fakeSource struct {
	mu sync.Mutex

	hits       map[string][]string
	products   map[string]catalog.Product
	failIndex  map[string]error
	failBatch  error
	queries    []productstore.IndexQuery
	batchCalls [][]string

	// onQuery and onBatch run outside the lock, before the call is served.
	onQuery func(ctx context.Context, q productstore.IndexQuery) error
	onBatch func(ctx context.Context, skus []string) error
}

func newFakeSource(products ...catalog.Product) *fakeSource {
	f := &fakeSource{
		hits:      make(map[string][]string),
		products:  make(map[string]catalog.Product),
		failIndex: make(map[string]error),
	}
	for _, p := range products {
		f.products[p.SKU] = p
	}
	return f
}

func (f *fakeSource) Query(ctx context.Context, q productstore.IndexQuery) ([]string, error) {
	if f.onQuery != nil {
		if err := f.onQuery(ctx, q); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if err := f.failIndex[q.Index]; err != nil {
		return nil, err
	}
	return f.hits[q.Index], nil
}

func (f *fakeSource) BatchGet(ctx context.Context, skus []string) ([]catalog.Product, error) {
	if f.onBatch != nil {
		if err := f.onBatch(ctx, skus); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls = append(f.batchCalls, skus)
	if f.failBatch != nil {
		return nil, f.failBatch
	}
	var out []catalog.Product
	for _, sku := range skus {
		if p, ok := f.products[sku]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries) + len(f.batchCalls)
}

func (f *fakeSource) queriedIndexes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, q := range f.queries {
		out = append(out, q.Index)
	}
	return out
}

func product(sku, name, category, brand string, price float64, stock int) catalog.Product {
	p := catalog.Product{SKU: sku, Name: name, Category: category, Brand: brand, Price: price, Stock: stock}
	p.Keys = catalog.BuildKeys(p)
	return p
}

func skusOf(products []catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.SKU
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
