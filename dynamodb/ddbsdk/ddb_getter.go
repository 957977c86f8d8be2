package ddbsdk

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/acksell/catalog/dynamodb/ddbiface"
	"github.com/acksell/catalog/dynamodb/table"

	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MaxBatchGetItems is the DynamoDB limit on keys per BatchGetItem call.
const MaxBatchGetItems = 100

// Getter performs direct lookups by primary key.
// Reads are strongly consistent unless WithEventualConsistency is given.
type Getter struct {
	awsddb ddbiface.AWSDynamoClientV2

	opts getOpts
}

func NewGetter(ddb ddbiface.AWSDynamoClientV2, opts ...GetOption) *Getter {
	g := &Getter{
		awsddb: ddb,
		opts:   getOpts{backoff: defaultBackoff},
	}
	for _, opt := range opts {
		opt(&g.opts)
	}
	return g
}

// GetItemRequest identifies an item to retrieve with optional projection.
type GetItemRequest struct {
	Table      table.TableDefinition
	Key        table.PrimaryKey
	Projection []string // Optional: limits which attributes are returned
}

// GetItem retrieves a single item. A missing item returns (nil, nil).
func (g *Getter) GetItem(ctx context.Context, item GetItemRequest) (Item, error) {
	key, err := item.Key.DDB()
	if err != nil {
		return nil, fmt.Errorf("get item key: %w", err)
	}
	input := &dynamodbv2.GetItemInput{
		TableName:      &item.Table.Name,
		Key:            key,
		ConsistentRead: ptr(!g.opts.eventuallyConsistent),
	}

	if len(item.Projection) > 0 {
		expr, err := buildProjectionExpression(item.Projection)
		if err != nil {
			return nil, fmt.Errorf("failed to apply projection: %w", err)
		}
		input.ProjectionExpression = expr.Projection()
		input.ExpressionAttributeNames = expr.Names()
	}

	res, err := g.awsddb.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("get item failed: %w", err)
	}

	if len(res.Item) == 0 {
		return nil, nil
	}

	return res.Item, nil
}

// GetItemsBatch retrieves up to MaxBatchGetItems items with BatchGetItem,
// resubmitting UnprocessedKeys with exponential backoff until DynamoDB has
// answered every key.
// Keys that do not exist are absent from the result. Result order is not
// related to request order.
//
// As a batch unit this is read-committed, not serializable: a concurrent
// transaction may be visible for some items and not for others.
//
// BatchGetItem applies projection per table, so the projection of the first
// request for a table is used for all of that table's keys.
func (g *Getter) GetItemsBatch(ctx context.Context, items ...GetItemRequest) ([]Item, error) {
	if len(items) == 0 {
		return nil, nil
	}

	if len(items) > MaxBatchGetItems {
		return nil, fmt.Errorf("batch get items limited to %d items, got %d", MaxBatchGetItems, len(items))
	}

	requestItems, err := g.buildBatchRequestItems(items)
	if err != nil {
		return nil, err
	}

	allItems := make([]Item, 0, len(items))

	for attempt := 0; len(requestItems) > 0; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.opts.backoff(attempt - 1)):
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := g.awsddb.BatchGetItem(ctx, &dynamodbv2.BatchGetItemInput{
			RequestItems: requestItems,
		})
		if err != nil {
			return nil, fmt.Errorf("batch get item failed: %w", err)
		}

		for _, tableItems := range res.Responses {
			allItems = append(allItems, tableItems...)
		}

		requestItems = res.UnprocessedKeys
	}

	return allItems, nil
}

func (g *Getter) buildBatchRequestItems(items []GetItemRequest) (map[string]types.KeysAndAttributes, error) {
	requestItems := make(map[string]types.KeysAndAttributes)

	for _, item := range items {
		tableName := item.Table.Name

		keysAndAttrs, exists := requestItems[tableName]
		if !exists {
			keysAndAttrs = types.KeysAndAttributes{
				ConsistentRead: ptr(!g.opts.eventuallyConsistent),
			}
			if len(item.Projection) > 0 {
				expr, err := buildProjectionExpression(item.Projection)
				if err != nil {
					return nil, fmt.Errorf("failed to apply projection: %w", err)
				}
				keysAndAttrs.ProjectionExpression = expr.Projection()
				keysAndAttrs.ExpressionAttributeNames = expr.Names()
			}
		}

		key, err := item.Key.DDB()
		if err != nil {
			return nil, fmt.Errorf("batch get key: %w", err)
		}
		keysAndAttrs.Keys = append(keysAndAttrs.Keys, key)
		requestItems[tableName] = keysAndAttrs
	}

	return requestItems, nil
}

func projectionOf(attributes []string) expression2.ProjectionBuilder {
	var proj expression2.ProjectionBuilder
	for i, attr := range attributes {
		if i == 0 {
			proj = expression2.NamesList(expression2.Name(attr))
		} else {
			proj = proj.AddNames(expression2.Name(attr))
		}
	}
	return proj
}

func buildProjectionExpression(attributes []string) (expression2.Expression, error) {
	return expression2.NewBuilder().WithProjection(projectionOf(attributes)).Build()
}

// GetOption configures the getter behavior.
type GetOption func(*getOpts)

type getOpts struct {
	eventuallyConsistent bool
	// backoff is the wait before resubmitting unprocessed keys.
	backoff func(retry int) time.Duration
}

// defaultBackoff waits 50ms, 100ms, 200ms, ... capped at 5s, with full jitter.
func defaultBackoff(retry int) time.Duration {
	const base, limit = 50 * time.Millisecond, 5 * time.Second
	d := limit
	if retry < 7 {
		d = min(base<<retry, limit)
	}
	return time.Duration(rand.Int64N(int64(d)))
}

// WithEventualConsistency enables eventually consistent reads for lookups.
// By default, reads are strongly consistent.
func WithEventualConsistency() GetOption {
	return func(o *getOpts) {
		o.eventuallyConsistent = true
	}
}
