package catalog

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxPrice is the largest price representable by the 12 digit cents encoding
// used in the price-ordered index keys.
const MaxPrice = 9_999_999_999.99

const maxTextLength = 100

// Product is a catalog record. Keys is derived from the other attributes and
// must be rebuilt whenever one of its inputs changes, see RecomputeKeys.
type Product struct {
	SKU         string
	Name        string
	Category    string
	Brand       string
	Price       float64
	Stock       int
	Description string

	Keys IndexKeys
	Meta Meta
}

type Meta struct {
	Created time.Time
	Updated time.Time
}

// Validate checks the attributes a client supplies. Derived keys are not checked.
func (p Product) Validate() error {
	var problems []string
	for _, f := range []struct {
		name, value string
	}{
		{"sku", p.SKU},
		{"name", p.Name},
		{"category", p.Category},
		{"brand", p.Brand},
	} {
		switch {
		case strings.TrimSpace(f.value) == "":
			problems = append(problems, f.name+" is required")
		case len(f.value) > maxTextLength:
			problems = append(problems, fmt.Sprintf("%s must be at most %d characters", f.name, maxTextLength))
		case f.name != "sku" && strings.Contains(f.value, KeySeparator):
			problems = append(problems, fmt.Sprintf("%s must not contain %q", f.name, KeySeparator))
		}
	}
	switch {
	case math.IsNaN(p.Price) || p.Price < 0 || p.Price > MaxPrice:
		problems = append(problems, fmt.Sprintf("price must be between 0 and %.2f", MaxPrice))
	case !WholeCents(p.Price):
		problems = append(problems, "price must have at most two decimals")
	}
	if p.Stock < 0 {
		problems = append(problems, "stock must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// Field identifies a mutable product attribute.
type Field uint8

const (
	FieldName Field = 1 << iota
	FieldCategory
	FieldBrand
	FieldPrice
	FieldStock
	FieldDescription
)

var fieldNames = []struct {
	f    Field
	name string
}{
	{FieldName, "name"},
	{FieldCategory, "category"},
	{FieldBrand, "brand"},
	{FieldPrice, "price"},
	{FieldStock, "stock"},
	{FieldDescription, "description"},
}

// FieldSet is a set of changed fields.
type FieldSet uint8

func Fields(fs ...Field) FieldSet {
	var s FieldSet
	for _, f := range fs {
		s |= FieldSet(f)
	}
	return s
}

func (s FieldSet) Has(f Field) bool {
	return s&FieldSet(f) != 0
}

func (s FieldSet) Intersects(o FieldSet) bool {
	return s&o != 0
}

func (s FieldSet) IsEmpty() bool {
	return s == 0
}

// Names lists the fields in the set, in declaration order.
func (s FieldSet) Names() []string {
	var names []string
	for _, fn := range fieldNames {
		if s.Has(fn.f) {
			names = append(names, fn.name)
		}
	}
	return names
}

func (s FieldSet) String() string {
	return strings.Join(s.Names(), ",")
}

// Patch is a partial update. A nil field is not supplied; a non-nil pointer to
// a zero value (price 0, stock 0, empty description) is a real value.
type Patch struct {
	Name        *string
	Category    *string
	Brand       *string
	Price       *float64
	Stock       *int
	Description *string
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Brand == nil &&
		p.Price == nil && p.Stock == nil && p.Description == nil
}

// ApplyPatch merges patch into current and reports which fields ended up with a
// different value. Supplying a field with its current value is not a change.
// The returned product still carries current's keys; call RecomputeKeys next.
func ApplyPatch(current Product, patch Patch) (Product, FieldSet) {
	next := current
	var changed FieldSet
	if patch.Name != nil && *patch.Name != current.Name {
		next.Name = *patch.Name
		changed |= FieldSet(FieldName)
	}
	if patch.Category != nil && *patch.Category != current.Category {
		next.Category = *patch.Category
		changed |= FieldSet(FieldCategory)
	}
	if patch.Brand != nil && *patch.Brand != current.Brand {
		next.Brand = *patch.Brand
		changed |= FieldSet(FieldBrand)
	}
	if patch.Price != nil && *patch.Price != current.Price {
		next.Price = *patch.Price
		changed |= FieldSet(FieldPrice)
	}
	if patch.Stock != nil && *patch.Stock != current.Stock {
		next.Stock = *patch.Stock
		changed |= FieldSet(FieldStock)
	}
	if patch.Description != nil && *patch.Description != current.Description {
		next.Description = *patch.Description
		changed |= FieldSet(FieldDescription)
	}
	return next, changed
}
