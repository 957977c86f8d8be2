// Package badgerstore is an embedded product store on BadgerDB with the same
// table and secondary index layout as the DynamoDB store.
package badgerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/dynamodb/table"
	"github.com/acksell/catalog/productstore"
	"github.com/dgraph-io/badger/v4"
)

// Store keeps every product once under its primary key and once per
// secondary index. Index entries are maintained in the same transaction as
// the item, so they never go stale.
type Store struct {
	db      *badger.DB
	def     table.TableDefinition
	items   keyEncoder
	indexes map[catalog.Key]keyEncoder
}

var _ productstore.Store = &Store{}

// Options configures the BadgerDB store.
type Options struct {
	// Path to the database directory. If empty, uses in-memory mode.
	Path string
	// InMemory forces in-memory mode even if Path is set.
	InMemory bool
	// Logger for BadgerDB. If nil, logging is disabled.
	Logger badger.Logger
	// TableName defaults to productstore.DefaultTableName.
	TableName string
}

func New(opts Options) (*Store, error) {
	def, err := productstore.TableDefinition(opts.TableName)
	if err != nil {
		return nil, fmt.Errorf("product table: %w", err)
	}

	badgerOpts := badger.DefaultOptions(opts.Path)
	if opts.Path == "" || opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	badgerOpts = badgerOpts.WithLogger(opts.Logger)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	s := &Store{
		db:      db,
		def:     def,
		items:   keyEncoder{tableName: def.Name},
		indexes: make(map[catalog.Key]keyEncoder, len(catalog.AllKeys)),
	}
	for _, k := range catalog.AllKeys {
		s.indexes[k] = keyEncoder{tableName: def.Name, indexName: productstore.IndexForKey(k)}
	}
	return s, nil
}

// Close closes the BadgerDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) itemKey(sku string) []byte {
	pk, sk := productstore.PrimaryKey(sku)
	return s.items.itemKey(pk, sk)
}

// getItem reads one item inside txn. ok is false when it does not exist.
func (s *Store) getItem(txn *badger.Txn, sku string) (item productstore.Item, ok bool, err error) {
	entry, err := txn.Get(s.itemKey(sku))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return productstore.Item{}, false, nil
	}
	if err != nil {
		return productstore.Item{}, false, err
	}
	err = entry.Value(func(val []byte) error {
		item, err = decodeItem(val)
		return err
	})
	if err != nil {
		return productstore.Item{}, false, err
	}
	return item, true, nil
}

// writeItem stores next and moves each index entry whose key changed
// relative to prev. prev is nil for a new item.
func (s *Store) writeItem(txn *badger.Txn, prev *productstore.Item, next productstore.Item) error {
	val, err := encodeItem(next)
	if err != nil {
		return err
	}
	if err := txn.Set(s.items.itemKey(next.PK, next.SK), val); err != nil {
		return err
	}

	nextKeys := next.Product().Keys
	for _, k := range catalog.AllKeys {
		enc := s.indexes[k]
		newKey := nextKeys.Get(k)
		if prev != nil {
			oldKey := prev.Product().Keys.Get(k)
			if oldKey == newKey {
				continue
			}
			if err := txn.Delete(enc.indexKey(keyPair{oldKey.Partition, oldKey.Sort}, prev.PK)); err != nil {
				return fmt.Errorf("remove %s entry: %w", enc.indexName, err)
			}
		}
		if err := txn.Set(enc.indexKey(keyPair{newKey.Partition, newKey.Sort}, next.PK), []byte(next.SKU)); err != nil {
			return fmt.Errorf("set %s entry: %w", enc.indexName, err)
		}
	}
	return nil
}

func (s *Store) Put(ctx context.Context, p catalog.Product, unique bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	item := productstore.NewItem(p)
	if err := item.IsValid(); err != nil {
		return fmt.Errorf("put %s: %w", p.SKU, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		prev, exists, err := s.getItem(txn, p.SKU)
		if err != nil {
			return err
		}
		if !exists {
			return s.writeItem(txn, nil, item)
		}
		if unique {
			return &catalog.AlreadyExistsError{SKU: p.SKU}
		}
		return s.writeItem(txn, &prev, item)
	})
}

func (s *Store) Update(ctx context.Context, p catalog.Product, changed catalog.FieldSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if changed.IsEmpty() {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		prev, exists, err := s.getItem(txn, p.SKU)
		if err != nil {
			return err
		}
		if !exists {
			return &catalog.NotFoundError{SKU: p.SKU}
		}
		next := mergeItem(prev, p, changed)
		if err := next.IsValid(); err != nil {
			return fmt.Errorf("update %s: %w", p.SKU, err)
		}
		return s.writeItem(txn, &prev, next)
	})
}

// mergeItem copies onto prev the attributes an update of changed writes,
// mirroring the SET expression the DynamoDB store sends.
func mergeItem(prev productstore.Item, p catalog.Product, changed catalog.FieldSet) productstore.Item {
	src := productstore.NewItem(p)
	next := prev
	if changed.Has(catalog.FieldName) {
		next.Name = src.Name
	}
	if changed.Has(catalog.FieldCategory) {
		next.Category = src.Category
	}
	if changed.Has(catalog.FieldBrand) {
		next.Brand = src.Brand
	}
	if changed.Has(catalog.FieldPrice) {
		next.Price = src.Price
	}
	if changed.Has(catalog.FieldStock) {
		next.Stock = src.Stock
	}
	if changed.Has(catalog.FieldDescription) {
		next.Description = src.Description
	}
	if changed.Intersects(catalog.KeyName.Inputs()) {
		next.PKName, next.SKName = src.PKName, src.SKName
	}
	if changed.Intersects(catalog.KeyBrandPrice.Inputs()) {
		next.PKBrandPrice, next.SKBrandPrice = src.PKBrandPrice, src.SKBrandPrice
	}
	if changed.Intersects(catalog.KeyCategoryPrice.Inputs()) {
		next.PKCategoryPrice, next.SKCategoryPrice = src.PKCategoryPrice, src.SKCategoryPrice
	}
	if changed.Intersects(catalog.KeyCategoryBrandPrice.Inputs()) {
		next.PKCategoryBrandPrice, next.SKCategoryBrandPrice = src.PKCategoryBrandPrice, src.SKCategoryBrandPrice
	}
	next.UpdatedAt = src.UpdatedAt
	return next
}

func (s *Store) Delete(ctx context.Context, sku string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		prev, exists, err := s.getItem(txn, sku)
		if err != nil || !exists {
			return err
		}
		keys := prev.Product().Keys
		for _, k := range catalog.AllKeys {
			ck := keys.Get(k)
			if err := txn.Delete(s.indexes[k].indexKey(keyPair{ck.Partition, ck.Sort}, prev.PK)); err != nil {
				return err
			}
		}
		return txn.Delete(s.items.itemKey(prev.PK, prev.SK))
	})
}

func (s *Store) Get(ctx context.Context, sku string) (catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Product{}, err
	}
	var p catalog.Product
	err := s.db.View(func(txn *badger.Txn) error {
		item, exists, err := s.getItem(txn, sku)
		if err != nil {
			return err
		}
		if !exists {
			return &catalog.NotFoundError{SKU: sku}
		}
		p = item.Product()
		return nil
	})
	return p, err
}

func (s *Store) BatchGet(ctx context.Context, skus []string) ([]catalog.Product, error) {
	if len(skus) > productstore.MaxBatchGet {
		return nil, fmt.Errorf("batch get limited to %d skus, got %d", productstore.MaxBatchGet, len(skus))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(skus))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, sku := range skus {
			item, exists, err := s.getItem(txn, sku)
			if err != nil {
				return fmt.Errorf("get %s: %w", sku, err)
			}
			if exists {
				products = append(products, item.Product())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}
