package catalog

import (
	"fmt"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// SortField is an attribute results can be ordered by.
type SortField string

const (
	SortNone     SortField = ""
	SortName     SortField = "name"
	SortPrice    SortField = "price"
	SortStock    SortField = "stock"
	SortCategory SortField = "category"
	SortBrand    SortField = "brand"
)

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case SortNone, SortName, SortPrice, SortStock, SortCategory, SortBrand:
		return f, nil
	}
	return SortNone, fmt.Errorf("%w: unknown sort field %q", ErrInvalidInput, s)
}

// IsNumeric reports whether the field compares as a number.
func (f SortField) IsNumeric() bool {
	return f == SortPrice || f == SortStock
}

type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(s) {
	case "", string(Ascending):
		return Ascending, nil
	case string(Descending):
		return Descending, nil
	}
	return Ascending, fmt.Errorf("%w: unknown sort direction %q", ErrInvalidInput, s)
}

// Filter is a product search. Every predicate is optional; at least one of
// Brand, Category or ProductName must be set for a search to be planned.
type Filter struct {
	Brand       string
	Category    string
	ProductName string

	MinPrice *float64
	MaxPrice *float64
	MinStock *int
	MaxStock *int

	OrderBy   SortField
	Direction Direction

	Page     int
	PageSize int
}

// HasPriceBound reports whether either price bound is present. A zero bound
// counts.
func (f Filter) HasPriceBound() bool {
	return f.MinPrice != nil || f.MaxPrice != nil
}

func (f Filter) HasStockBound() bool {
	return f.MinStock != nil || f.MaxStock != nil
}

// WithDefaults fills page, page size and direction when unset.
func (f Filter) WithDefaults(defaultPageSize int) Filter {
	if defaultPageSize < 1 {
		defaultPageSize = DefaultPageSize
	}
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.Direction == "" {
		f.Direction = Ascending
	}
	return f
}
