package badgerstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/acksell/catalog/productstore"
	"github.com/dgraph-io/badger/v4"
)

// Query scans one index partition in sort key order and returns the SKUs
// whose sort key satisfies the condition.
func (s *Store) Query(ctx context.Context, q productstore.IndexQuery) ([]string, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k, _ := productstore.KeyForIndex(q.Index)
	enc := s.indexes[k]
	prefix := enc.partitionPrefix(q.Key.Partition)
	cond := q.Key.Sort

	var skus []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		start := prefix
		if lower, ok := lowerBound(cond); ok {
			start = enc.sortPrefix(q.Key.Partition, lower)
		}

		for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
			sk, err := sortKeyOf(it.Item().Key(), prefix)
			if err != nil {
				return err
			}
			if !cond.Matches(sk) {
				if pastUpperBound(cond, sk) {
					break
				}
				continue
			}
			err = it.Item().Value(func(val []byte) error {
				skus = append(skus, string(val))
				return nil
			})
			if err != nil {
				return fmt.Errorf("read %s entry: %w", q.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q, err)
	}
	return skus, nil
}

// lowerBound is the smallest sort key that can match cond.
func lowerBound(cond productstore.SortCondition) (string, bool) {
	switch cond.Op {
	case productstore.SortEqual, productstore.SortBeginsWith, productstore.SortBetween, productstore.SortAtLeast:
		return cond.Value, true
	}
	return "", false
}

// pastUpperBound reports whether no sort key after sk can match cond.
func pastUpperBound(cond productstore.SortCondition, sk string) bool {
	switch cond.Op {
	case productstore.SortEqual, productstore.SortAtMost:
		return sk > cond.Value
	case productstore.SortBetween:
		return sk > cond.Upper
	case productstore.SortBeginsWith:
		return sk > cond.Value && !strings.HasPrefix(sk, cond.Value)
	}
	return false
}
