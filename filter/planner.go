package filter

import (
	"fmt"
	"math"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/productstore"
)

// Plan turns a filter into the index queries that together cover it.
//
// The name branch is independent of the category and brand branch, and both
// may fire. Within the category and brand branch the most selective index
// wins. Stock bounds are never planned; no index covers stock.
func Plan(f catalog.Filter) ([]productstore.IndexQuery, error) {
	if err := validateBounds(f); err != nil {
		return nil, err
	}

	var queries []productstore.IndexQuery
	if f.ProductName != "" {
		queries = append(queries, productstore.IndexQuery{
			Index: productstore.IndexName,
			Key:   productstore.KeyCondition{Partition: catalog.NamePartition(f.ProductName)},
		})
	}

	priced := f.HasPriceBound()
	switch {
	case f.Category != "" && f.Brand != "" && priced:
		lo, hi := priceBounds(f)
		queries = append(queries, productstore.IndexQuery{
			Index: productstore.IndexCategoryBrandPrice,
			Key: productstore.KeyCondition{
				Partition: catalog.CategoryPartition(f.Category),
				Sort: productstore.SortCondition{
					Op:    productstore.SortBetween,
					Value: catalog.BrandPriceSort(f.Brand, lo),
					Upper: catalog.BrandPriceSort(f.Brand, hi),
				},
			},
		})
	case f.Category != "" && priced:
		queries = append(queries, productstore.IndexQuery{
			Index: productstore.IndexCategoryPrice,
			Key:   productstore.KeyCondition{Partition: catalog.CategoryPartition(f.Category), Sort: priceCondition(f)},
		})
	case f.Brand != "" && priced:
		queries = append(queries, productstore.IndexQuery{
			Index: productstore.IndexBrandPrice,
			Key:   productstore.KeyCondition{Partition: catalog.BrandPartition(f.Brand), Sort: priceCondition(f)},
		})
	case f.Category != "" && f.Brand != "":
		queries = append(queries, productstore.IndexQuery{
			Index: productstore.IndexCategoryBrandPrice,
			Key: productstore.KeyCondition{
				Partition: catalog.CategoryPartition(f.Category),
				Sort:      productstore.SortCondition{Op: productstore.SortBeginsWith, Value: catalog.BrandPricePrefix(f.Brand)},
			},
		})
	case f.Category != "":
		queries = append(queries, productstore.IndexQuery{
			Index: productstore.IndexCategoryPrice,
			Key:   productstore.KeyCondition{Partition: catalog.CategoryPartition(f.Category)},
		})
	case f.Brand != "":
		queries = append(queries, productstore.IndexQuery{
			Index: productstore.IndexBrandPrice,
			Key:   productstore.KeyCondition{Partition: catalog.BrandPartition(f.Brand)},
		})
	}

	if len(queries) == 0 {
		return nil, catalog.NoFilterError()
	}
	return queries, nil
}

func validateBounds(f catalog.Filter) error {
	for _, b := range []*float64{f.MinPrice, f.MaxPrice} {
		if b != nil && (math.IsNaN(*b) || *b < 0 || *b > catalog.MaxPrice) {
			return &catalog.ConfigurationError{Reason: fmt.Sprintf("price bound %v outside 0..%v", *b, catalog.MaxPrice)}
		}
		if b != nil && !catalog.WholeCents(*b) {
			return &catalog.ConfigurationError{Reason: fmt.Sprintf("price bound %v has more than two decimals", *b)}
		}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return &catalog.ConfigurationError{Reason: fmt.Sprintf("minPrice %v above maxPrice %v", *f.MinPrice, *f.MaxPrice)}
	}
	for _, b := range []*int{f.MinStock, f.MaxStock} {
		if b != nil && *b < 0 {
			return &catalog.ConfigurationError{Reason: fmt.Sprintf("negative stock bound %d", *b)}
		}
	}
	if f.MinStock != nil && f.MaxStock != nil && *f.MinStock > *f.MaxStock {
		return &catalog.ConfigurationError{Reason: fmt.Sprintf("minStock %d above maxStock %d", *f.MinStock, *f.MaxStock)}
	}
	return nil
}

// priceBounds encodes both bounds, filling a missing one with the end of
// the price range.
func priceBounds(f catalog.Filter) (lo, hi string) {
	lo, hi = catalog.LowestPrice, catalog.HighestPrice
	if f.MinPrice != nil {
		lo = catalog.EncodePrice(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		hi = catalog.EncodePrice(*f.MaxPrice)
	}
	return lo, hi
}

func priceCondition(f catalog.Filter) productstore.SortCondition {
	lo, hi := priceBounds(f)
	switch {
	case f.MinPrice != nil && f.MaxPrice != nil:
		return productstore.SortCondition{Op: productstore.SortBetween, Value: catalog.PriceSort(lo), Upper: catalog.PriceSort(hi)}
	case f.MinPrice != nil:
		return productstore.SortCondition{Op: productstore.SortAtLeast, Value: catalog.PriceSort(lo)}
	default:
		return productstore.SortCondition{Op: productstore.SortAtMost, Value: catalog.PriceSort(hi)}
	}
}
