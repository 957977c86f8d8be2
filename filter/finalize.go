package filter

import (
	"slices"

	"github.com/acksell/catalog"
	"golang.org/x/exp/constraints"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Page is one page of a search.
type Page struct {
	Products []catalog.Product
	// Cursor is set only when more records follow this page.
	Cursor string
	// Total counts every record that matched, across all pages.
	Total int

	Number int
	Size   int
}

// Finalize sorts the matched products and cuts out the requested page. f
// must already carry its defaults.
//
// Offsets are computed over this snapshot only. Writes between two calls can
// shift which record lands on a given page.
func Finalize(products []catalog.Product, f catalog.Filter, locale language.Tag) Page {
	if f.OrderBy != catalog.SortNone {
		Sort(products, f.OrderBy, f.Direction, locale)
	}

	page := Page{Total: len(products), Number: f.Page, Size: f.PageSize}
	offset := (f.Page - 1) * f.PageSize
	if offset >= len(products) {
		page.Products = []catalog.Product{}
		return page
	}
	end := min(offset+f.PageSize, len(products))
	page.Products = products[offset:end]
	if end < len(products) {
		page.Cursor = Cursor{
			After:    products[end-1].SKU,
			Page:     f.Page + 1,
			PageSize: f.PageSize,
		}.Encode()
	}
	return page
}

// Sort orders products in place by field. Ties keep their input order.
func Sort(products []catalog.Product, field catalog.SortField, dir catalog.Direction, locale language.Tag) {
	cmp := Comparator(field, locale)
	if dir == catalog.Descending {
		asc := cmp
		cmp = func(a, b catalog.Product) int { return -asc(a, b) }
	}
	slices.SortStableFunc(products, cmp)
}

// Comparator orders products ascending by field. Text fields use the
// collation rules of locale; a Collator is not safe for concurrent use, so
// the returned function must not be shared across goroutines.
func Comparator(field catalog.SortField, locale language.Tag) func(a, b catalog.Product) int {
	switch field {
	case catalog.SortPrice:
		return func(a, b catalog.Product) int { return compareNumbers(a.Price, b.Price) }
	case catalog.SortStock:
		return func(a, b catalog.Product) int { return compareNumbers(a.Stock, b.Stock) }
	}
	text := textField(field)
	col := collate.New(locale)
	return func(a, b catalog.Product) int {
		return col.CompareString(text(a), text(b))
	}
}

func textField(field catalog.SortField) func(catalog.Product) string {
	switch field {
	case catalog.SortCategory:
		return func(p catalog.Product) string { return p.Category }
	case catalog.SortBrand:
		return func(p catalog.Product) string { return p.Brand }
	}
	return func(p catalog.Product) string { return p.Name }
}

type number interface {
	constraints.Integer | constraints.Float
}

func compareNumbers[T number](a, b T) int {
	switch d := a - b; {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}
