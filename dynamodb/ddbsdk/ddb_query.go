package ddbsdk

import (
	"context"
	"fmt"

	"github.com/acksell/catalog/dynamodb/ddbiface"
	"github.com/acksell/catalog/dynamodb/table"

	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type Querier struct {
	awsddb ddbiface.AWSDynamoClientV2

	table   table.TableDefinition
	keyCond KeyCondition

	lastCursor map[string]types.AttributeValue

	opts queryOptions
}

type queryOptions struct {
	indexName            string
	projectionAttributes []string
}

type KeyCondition struct {
	partition any
	strategy  SortKeyStrategy
}

// NewKeyCondition matches one partition, optionally narrowed by a sort key
// strategy. Pass the zero SortKeyStrategy to read the whole partition.
func NewKeyCondition(partition any, strategy SortKeyStrategy) KeyCondition {
	return KeyCondition{
		partition: partition,
		strategy:  strategy,
	}
}

func (kc KeyCondition) String() string {
	return fmt.Sprintf("partition = %v, sort %s", kc.partition, kc.strategy)
}

func NewQuerier(ddb ddbiface.AWSDynamoClientV2, t table.TableDefinition, kc KeyCondition) *Querier {
	return &Querier{
		awsddb:  ddb,
		table:   t,
		keyCond: kc,
	}
}

type QueryResult struct {
	Items  []Item
	IsDone bool
}

// Build returns the QueryInput for the next page.
func (q *Querier) Build() (*dynamodbv2.QueryInput, error) {
	keys, err := q.table.KeysFor(q.opts.indexName)
	if err != nil {
		return nil, err
	}

	b := expression2.NewBuilder()
	key := expression2.KeyEqual(expression2.Key(keys.PartitionKey.Name), expression2.Value(q.keyCond.partition))
	if q.keyCond.strategy.IsSet() {
		if keys.SortKey.Name == "" {
			return nil, fmt.Errorf("sort key condition on %s which has no sort key", q.target())
		}
		key = key.And(q.keyCond.strategy.condition(keys.SortKey.Name))
	}
	b = b.WithKeyCondition(key)

	if len(q.opts.projectionAttributes) > 0 {
		b = b.WithProjection(projectionOf(q.opts.projectionAttributes))
	}

	expr, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodbv2.QueryInput{
		TableName:                 &q.table.Name,
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeValues: expr.Values(),
		ExpressionAttributeNames:  expr.Names(),
		ExclusiveStartKey:         q.lastCursor,
	}
	// GSIs only support eventually consistent reads.
	if q.opts.indexName != "" {
		input.IndexName = ptr(q.opts.indexName)
	} else {
		input.ConsistentRead = ptr(true)
	}
	return input, nil
}

func (q *Querier) Next(ctx context.Context) (*QueryResult, error) {
	input, err := q.Build()
	if err != nil {
		return nil, err
	}

	res, err := q.awsddb.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", q.target(), err)
	}

	q.lastCursor = res.LastEvaluatedKey
	return &QueryResult{
		Items:  res.Items,
		IsDone: len(res.LastEvaluatedKey) == 0,
	}, nil
}

// QueryAll follows LastEvaluatedKey until the key condition is exhausted.
func (q *Querier) QueryAll(ctx context.Context) (*QueryResult, error) {
	var allItems []Item
	for {
		res, err := q.Next(ctx)
		if err != nil {
			return nil, err
		}
		allItems = append(allItems, res.Items...)
		if res.IsDone {
			break
		}
	}
	return &QueryResult{
		Items:  allItems,
		IsDone: true,
	}, nil
}

func (q *Querier) target() string {
	if q.opts.indexName != "" {
		return q.table.Name + "/" + q.opts.indexName
	}
	return q.table.Name
}

// WithGSI targets a global secondary index. Reads become eventually consistent.
func (q *Querier) WithGSI(indexName string) *Querier {
	q.opts.indexName = indexName
	return q
}

// WithProjection limits the attributes returned in the response.
func (q *Querier) WithProjection(attrs ...string) *Querier {
	q.opts.projectionAttributes = attrs
	return q
}
