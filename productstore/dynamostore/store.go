// Package dynamostore is the DynamoDB product store: one item per product in
// a single table, found through four global secondary indexes.
package dynamostore

import (
	"context"
	"fmt"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/dynamodb/ddbiface"
	"github.com/acksell/catalog/dynamodb/ddbsdk"
	"github.com/acksell/catalog/dynamodb/table"
	"github.com/acksell/catalog/productstore"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

type Store struct {
	client *ddbsdk.Client
	def    table.TableDefinition
}

var _ productstore.Store = &Store{}

// New builds a store over tableName. An empty name keeps
// productstore.DefaultTableName.
func New(awsddb ddbiface.AWSDynamoClientV2, tableName string) (*Store, error) {
	def, err := productstore.TableDefinition(tableName)
	if err != nil {
		return nil, fmt.Errorf("product table: %w", err)
	}
	return &Store{client: ddbsdk.New(awsddb), def: def}, nil
}

// Close is a no-op. The AWS client holds no resources that need releasing.
func (s *Store) Close() error { return nil }

// Query reads every page of an index query. Index items project only the
// base table partition key, which is turned back into a SKU.
func (s *Store) Query(ctx context.Context, q productstore.IndexQuery) ([]string, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	kc := ddbsdk.NewKeyCondition(q.Key.Partition, strategyOf(q.Key.Sort))
	res, err := s.client.NewQuery(s.def, kc).
		WithGSI(q.Index).
		WithProjection(productstore.AttrPK).
		QueryAll(ctx)
	if err != nil {
		return nil, err
	}

	skus := make([]string, 0, len(res.Items))
	for _, item := range res.Items {
		var pk string
		if err := attributevalue.Unmarshal(item[productstore.AttrPK], &pk); err != nil {
			return nil, fmt.Errorf("%s returned item without %s: %w", q.Index, productstore.AttrPK, err)
		}
		sku, err := productstore.SKUFromPartition(pk)
		if err != nil {
			return nil, err
		}
		skus = append(skus, sku)
	}
	return skus, nil
}

func strategyOf(c productstore.SortCondition) ddbsdk.SortKeyStrategy {
	switch c.Op {
	case productstore.SortEqual:
		return ddbsdk.Equals(c.Value)
	case productstore.SortBeginsWith:
		return ddbsdk.BeginsWith(c.Value)
	case productstore.SortBetween:
		return ddbsdk.Between(c.Value, c.Upper)
	case productstore.SortAtLeast:
		return ddbsdk.GreaterThanOrEqual(c.Value)
	case productstore.SortAtMost:
		return ddbsdk.LessThanOrEqual(c.Value)
	}
	return ddbsdk.SortKeyStrategy{}
}

func (s *Store) BatchGet(ctx context.Context, skus []string) ([]catalog.Product, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	reqs := make([]ddbsdk.GetItemRequest, len(skus))
	for i, sku := range skus {
		reqs[i] = ddbsdk.GetItemRequest{Table: s.def, Key: productstore.PrimaryKeyOf(s.def, sku)}
	}
	items, err := s.client.NewLookup(ddbsdk.WithEventualConsistency()).GetItemsBatch(ctx, reqs...)
	if err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(items))
	for _, raw := range items {
		p, err := decode(raw)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) Get(ctx context.Context, sku string) (catalog.Product, error) {
	raw, err := s.client.NewLookup().GetItem(ctx, ddbsdk.GetItemRequest{
		Table: s.def,
		Key:   productstore.PrimaryKeyOf(s.def, sku),
	})
	if err != nil {
		return catalog.Product{}, fmt.Errorf("get %s: %w", sku, err)
	}
	if raw == nil {
		return catalog.Product{}, &catalog.NotFoundError{SKU: sku}
	}
	return decode(raw)
}

func decode(raw ddbsdk.Item) (catalog.Product, error) {
	var item productstore.Item
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return catalog.Product{}, fmt.Errorf("unmarshal product: %w", err)
	}
	return item.Product(), nil
}

func (s *Store) Put(ctx context.Context, p catalog.Product, unique bool) error {
	item := productstore.NewItem(p)
	put := ddbsdk.NewPut(s.def, item)
	if unique {
		put = ddbsdk.NewCreate(s.def, item)
	}
	err := s.client.PutItem(ctx, put)
	if unique && ddbsdk.IsConditionalCheckFailed(err) {
		return &catalog.AlreadyExistsError{SKU: p.SKU}
	}
	if err != nil {
		return fmt.Errorf("put %s: %w", p.SKU, err)
	}
	return nil
}

// Update sends a single conditional UpdateItem that sets the changed
// attributes together with every index key derived from them.
func (s *Store) Update(ctx context.Context, p catalog.Product, changed catalog.FieldSet) error {
	attrs := productstore.UpdatedAttributes(p, changed)
	if len(attrs) == 0 {
		return nil
	}
	up := ddbsdk.NewExistingUpdate(s.def, productstore.PrimaryKeyOf(s.def, p.SKU))
	for name, v := range attrs {
		up.Set(name, v)
	}
	err := s.client.UpdateItem(ctx, up)
	if ddbsdk.IsConditionalCheckFailed(err) {
		return &catalog.NotFoundError{SKU: p.SKU}
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", p.SKU, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sku string) error {
	if err := s.client.DeleteItem(ctx, ddbsdk.NewDelete(s.def, productstore.PrimaryKeyOf(s.def, sku))); err != nil {
		return fmt.Errorf("delete %s: %w", sku, err)
	}
	return nil
}
