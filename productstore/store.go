// Package productstore defines the storage contract of the catalog and the
// single-table layout both backends share.
package productstore

import (
	"context"
	"fmt"

	"github.com/acksell/catalog"
)

// Reader is the read side of a store. Query returns SKUs only.
type Reader interface {
	Query(ctx context.Context, q IndexQuery) ([]string, error)
	// BatchGet returns the products that exist among skus, in no particular
	// order. At most MaxBatchGet skus per call.
	BatchGet(ctx context.Context, skus []string) ([]catalog.Product, error)
	Get(ctx context.Context, sku string) (catalog.Product, error)
}

type Writer interface {
	// Put writes p. With unique set it fails with *catalog.AlreadyExistsError
	// if the SKU is already stored.
	Put(ctx context.Context, p catalog.Product, unique bool) error
	// Update writes the fields in changed, and every index key built from
	// them, onto the stored product. p.Keys must already be recomputed.
	// Fails with *catalog.NotFoundError if the SKU is not stored.
	Update(ctx context.Context, p catalog.Product, changed catalog.FieldSet) error
	Delete(ctx context.Context, sku string) error
}

type Store interface {
	Reader
	Writer
	Close() error
}

// MaxBatchGet is the largest number of SKUs BatchGet accepts.
const MaxBatchGet = 100

// SortOp is a comparison on an index sort key.
type SortOp string

const (
	SortAny        SortOp = ""
	SortEqual      SortOp = "="
	SortBeginsWith SortOp = "begins_with"
	SortBetween    SortOp = "between"
	SortAtLeast    SortOp = ">="
	SortAtMost     SortOp = "<="
)

// SortCondition restricts the sort key of an index query. Upper is only used
// by SortBetween; both bounds are inclusive.
type SortCondition struct {
	Op    SortOp
	Value string
	Upper string
}

// Matches evaluates the condition against a sort key.
func (c SortCondition) Matches(sk string) bool {
	switch c.Op {
	case SortAny:
		return true
	case SortEqual:
		return sk == c.Value
	case SortBeginsWith:
		return len(sk) >= len(c.Value) && sk[:len(c.Value)] == c.Value
	case SortBetween:
		return sk >= c.Value && sk <= c.Upper
	case SortAtLeast:
		return sk >= c.Value
	case SortAtMost:
		return sk <= c.Value
	}
	return false
}

func (c SortCondition) String() string {
	switch c.Op {
	case SortAny:
		return "any"
	case SortBeginsWith:
		return fmt.Sprintf("begins_with(%s)", c.Value)
	case SortBetween:
		return fmt.Sprintf("between %s and %s", c.Value, c.Upper)
	}
	return fmt.Sprintf("%s %s", c.Op, c.Value)
}

type KeyCondition struct {
	Partition string
	Sort      SortCondition
}

func (c KeyCondition) String() string {
	return fmt.Sprintf("partition = %s, sort %s", c.Partition, c.Sort)
}

// IndexQuery selects SKUs from one secondary index.
type IndexQuery struct {
	Index string
	Key   KeyCondition
}

func (q IndexQuery) String() string {
	return q.Index + ": " + q.Key.String()
}

// Validate checks the query names a known index and a usable condition.
func (q IndexQuery) Validate() error {
	if _, ok := KeyForIndex(q.Index); !ok {
		return fmt.Errorf("unknown index %q", q.Index)
	}
	if q.Key.Partition == "" {
		return fmt.Errorf("index %s: partition value is required", q.Index)
	}
	switch q.Key.Sort.Op {
	case SortAny:
	case SortEqual, SortBeginsWith, SortAtLeast, SortAtMost:
		if q.Key.Sort.Value == "" {
			return fmt.Errorf("index %s: %s needs a value", q.Index, q.Key.Sort.Op)
		}
	case SortBetween:
		if q.Key.Sort.Value > q.Key.Sort.Upper {
			return fmt.Errorf("index %s: lower bound %q above upper bound %q", q.Index, q.Key.Sort.Value, q.Key.Sort.Upper)
		}
	default:
		return fmt.Errorf("index %s: unknown sort operator %q", q.Index, q.Key.Sort.Op)
	}
	return nil
}
