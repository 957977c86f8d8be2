package filter

import "github.com/acksell/catalog"

// FilterStock keeps the products whose stock lies within the filter's stock
// bounds, inclusive. Without bounds the input is returned as is.
func FilterStock(products []catalog.Product, f catalog.Filter) []catalog.Product {
	if !f.HasStockBound() {
		return products
	}
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if f.MinStock != nil && p.Stock < *f.MinStock {
			continue
		}
		if f.MaxStock != nil && p.Stock > *f.MaxStock {
			continue
		}
		out = append(out, p)
	}
	return out
}

