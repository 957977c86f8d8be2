// Package service holds the product use cases on top of a product store and
// the filter engine.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/filter"
	"github.com/acksell/catalog/logger"
	"github.com/acksell/catalog/productstore"
)

// Searcher runs product searches. *filter.Engine implements it.
type Searcher interface {
	GetByFilters(ctx context.Context, f catalog.Filter) (filter.Page, error)
}

type ProductService struct {
	store    productstore.Store
	searcher Searcher
	logger   *slog.Logger
	now      func() time.Time
}

func NewProductService(store productstore.Store, searcher Searcher, log *slog.Logger) *ProductService {
	if log == nil {
		log = logger.Discard()
	}
	return &ProductService{
		store:    store,
		searcher: searcher,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateInput struct {
	SKU         string
	Name        string
	Category    string
	Brand       string
	Price       float64
	Stock       int
	Description string
}

// Create stores a new product. It fails with *catalog.AlreadyExistsError if
// the SKU is taken.
func (s *ProductService) Create(ctx context.Context, in CreateInput) (catalog.Product, error) {
	now := s.now()
	p := catalog.Product{
		SKU:         in.SKU,
		Name:        in.Name,
		Category:    in.Category,
		Brand:       in.Brand,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
		Meta:        catalog.Meta{Created: now, Updated: now},
	}
	if err := p.Validate(); err != nil {
		return catalog.Product{}, err
	}
	p.Keys = catalog.BuildKeys(p)

	log := logger.FromContext(ctx, s.logger)
	log.DebugContext(ctx, "creating product", slog.String("sku", p.SKU))
	if err := s.store.Put(ctx, p, true); err != nil {
		return catalog.Product{}, fmt.Errorf("create product: %w", err)
	}
	log.InfoContext(ctx, "product created",
		slog.String("sku", p.SKU),
		slog.String("brand", p.Brand),
		slog.String("category", p.Category))
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, sku string) (catalog.Product, error) {
	p, err := s.store.Get(ctx, sku)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update applies a partial update. Only fields whose value actually changes
// are written, together with the index keys built from them. When nothing
// changes the stored product is returned untouched.
func (s *ProductService) Update(ctx context.Context, sku string, patch catalog.Patch) (catalog.Product, error) {
	current, err := s.store.Get(ctx, sku)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("update product: %w", err)
	}
	if err := validatePatch(current, patch); err != nil {
		return catalog.Product{}, err
	}

	log := logger.FromContext(ctx, s.logger)
	next, changed := catalog.ApplyPatch(current, patch)
	if changed.IsEmpty() {
		log.InfoContext(ctx, "no product attributes changed, skipping update", slog.String("sku", sku))
		return current, nil
	}
	var rebuilt catalog.KeySet
	next.Keys, rebuilt = catalog.RecomputeKeys(current.Keys, next, changed)
	next.Meta.Updated = s.now()

	if err := s.store.Update(ctx, next, changed); err != nil {
		return catalog.Product{}, fmt.Errorf("update product: %w", err)
	}
	log.InfoContext(ctx, "product updated",
		slog.String("sku", sku),
		slog.String("fields", changed.String()),
		slog.String("keys", rebuilt.String()))
	return next, nil
}

// validatePatch checks every supplied value, including ones equal to the
// current value.
func validatePatch(current catalog.Product, patch catalog.Patch) error {
	candidate := current
	if patch.Name != nil {
		candidate.Name = *patch.Name
	}
	if patch.Category != nil {
		candidate.Category = *patch.Category
	}
	if patch.Brand != nil {
		candidate.Brand = *patch.Brand
	}
	if patch.Price != nil {
		candidate.Price = *patch.Price
	}
	if patch.Stock != nil {
		candidate.Stock = *patch.Stock
	}
	if patch.Description != nil {
		candidate.Description = *patch.Description
	}
	return candidate.Validate()
}

// Delete removes a product. Deleting a missing SKU is not an error.
func (s *ProductService) Delete(ctx context.Context, sku string) error {
	if err := s.store.Delete(ctx, sku); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	logger.FromContext(ctx, s.logger).InfoContext(ctx, "product deleted", slog.String("sku", sku))
	return nil
}

func (s *ProductService) List(ctx context.Context, f catalog.Filter) (filter.Page, error) {
	page, err := s.searcher.GetByFilters(ctx, f)
	if err != nil {
		return filter.Page{}, fmt.Errorf("list products: %w", err)
	}
	return page, nil
}
