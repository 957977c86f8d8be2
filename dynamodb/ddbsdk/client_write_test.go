package ddbsdk

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invalidEntity struct {
	PK string `dynamodbav:"pk"`
}

func (invalidEntity) IsValid() error { return errors.New("broken") }

func TestClient_PutItem(t *testing.T) {
	t.Run("plain put has no condition", func(t *testing.T) {
		fake := &fakeDynamo{}
		err := New(fake).PutItem(context.Background(), NewPut(testTable, testEntity{PK: "PRODUCT#1", SK: "DETAILS", Name: "Widget"}))
		require.NoError(t, err)

		require.Len(t, fake.puts, 1)
		assert.Nil(t, fake.puts[0].ConditionExpression)
		assert.Equal(t, s("Widget"), fake.puts[0].Item["name"])
	})

	t.Run("create guards the partition key", func(t *testing.T) {
		fake := &fakeDynamo{}
		err := New(fake).PutItem(context.Background(), NewCreate(testTable, testEntity{PK: "PRODUCT#1", SK: "DETAILS"}))
		require.NoError(t, err)

		in := fake.puts[0]
		require.NotNil(t, in.ConditionExpression)
		assert.Contains(t, *in.ConditionExpression, "attribute_not_exists")
		assert.ElementsMatch(t, []string{"pk"}, nameValues(in.ExpressionAttributeNames))
	})

	t.Run("entity without primary key is rejected", func(t *testing.T) {
		fake := &fakeDynamo{}
		err := New(fake).PutItem(context.Background(), NewPut(testTable, testEntity{Name: "no keys"}))
		assert.Error(t, err)
		assert.Empty(t, fake.puts)
	})

	t.Run("invalid entity is rejected", func(t *testing.T) {
		fake := &fakeDynamo{}
		err := New(fake).PutItem(context.Background(), NewPut(testTable, invalidEntity{PK: "x"}))
		assert.ErrorContains(t, err, "broken")
		assert.Empty(t, fake.puts)
	})

	t.Run("conditional failure is detectable through wrapping", func(t *testing.T) {
		fake := &fakeDynamo{err: &types.ConditionalCheckFailedException{}}
		err := New(fake).PutItem(context.Background(), NewCreate(testTable, testEntity{PK: "PRODUCT#1", SK: "DETAILS"}))
		require.Error(t, err)
		assert.True(t, IsConditionalCheckFailed(err))
		assert.False(t, IsConditionalCheckFailed(fmt.Errorf("other: %w", errors.New("x"))))
	})
}

func TestClient_UpdateItem(t *testing.T) {
	t.Run("sets attributes on an existing item", func(t *testing.T) {
		fake := &fakeDynamo{}
		up := NewExistingUpdate(testTable, testKey("PRODUCT#1", "DETAILS")).
			Set("price", 0.0).
			Set("skBrandPrice", "PRICE#000000000000")
		require.NoError(t, New(fake).UpdateItem(context.Background(), up))

		require.Len(t, fake.updates, 1)
		in := fake.updates[0]
		assert.Equal(t, map[string]types.AttributeValue{"pk": s("PRODUCT#1"), "sk": s("DETAILS")}, in.Key)
		require.NotNil(t, in.UpdateExpression)
		assert.Contains(t, *in.UpdateExpression, "SET")
		require.NotNil(t, in.ConditionExpression)
		assert.Contains(t, *in.ConditionExpression, "attribute_exists")
		assert.ElementsMatch(t, []string{"pk", "price", "skBrandPrice"}, nameValues(in.ExpressionAttributeNames))
		assert.Contains(t, in.ExpressionAttributeValues, ":0")
	})

	t.Run("empty update", func(t *testing.T) {
		fake := &fakeDynamo{}
		up := NewUpdate(testTable, testKey("PRODUCT#1", "DETAILS"))
		assert.True(t, up.IsEmpty())
		assert.Error(t, New(fake).UpdateItem(context.Background(), up))
		assert.Empty(t, fake.updates)
	})

	t.Run("key attributes are immutable", func(t *testing.T) {
		fake := &fakeDynamo{}
		up := NewUpdate(testTable, testKey("PRODUCT#1", "DETAILS")).Set("sk", "OTHER")
		assert.Error(t, New(fake).UpdateItem(context.Background(), up))
	})
}

func TestClient_DeleteItem(t *testing.T) {
	fake := &fakeDynamo{}
	require.NoError(t, New(fake).DeleteItem(context.Background(), NewDelete(testTable, testKey("PRODUCT#1", "DETAILS"))))

	require.Len(t, fake.deletes, 1)
	assert.Nil(t, fake.deletes[0].ConditionExpression)
	assert.Equal(t, "catalog-test", *fake.deletes[0].TableName)
}

func TestGetter_GetItem(t *testing.T) {
	t.Run("missing item", func(t *testing.T) {
		fake := &fakeDynamo{}
		item, err := New(fake).NewLookup().GetItem(context.Background(), GetItemRequest{Table: testTable, Key: testKey("PRODUCT#1", "DETAILS")})
		require.NoError(t, err)
		assert.Nil(t, item)
		assert.True(t, *fake.gets[0].ConsistentRead)
	})

	t.Run("found with projection", func(t *testing.T) {
		fake := &fakeDynamo{getOutput: &dynamodbv2.GetItemOutput{Item: Item{"pk": s("PRODUCT#1")}}}
		item, err := New(fake).NewLookup(WithEventualConsistency()).GetItem(context.Background(), GetItemRequest{
			Table:      testTable,
			Key:        testKey("PRODUCT#1", "DETAILS"),
			Projection: []string{"pk"},
		})
		require.NoError(t, err)
		assert.Equal(t, s("PRODUCT#1"), item["pk"])
		assert.False(t, *fake.gets[0].ConsistentRead)
		assert.NotNil(t, fake.gets[0].ProjectionExpression)
	})
}

func TestGetter_GetItemsBatch(t *testing.T) {
	requests := func(n int) []GetItemRequest {
		reqs := make([]GetItemRequest, n)
		for i := range reqs {
			reqs[i] = GetItemRequest{Table: testTable, Key: testKey(fmt.Sprintf("PRODUCT#%d", i), "DETAILS")}
		}
		return reqs
	}

	t.Run("rejects more than 100 keys", func(t *testing.T) {
		fake := &fakeDynamo{}
		_, err := New(fake).NewLookup().GetItemsBatch(context.Background(), requests(101)...)
		assert.Error(t, err)
		assert.Empty(t, fake.batchGets)
	})

	t.Run("drains unprocessed keys", func(t *testing.T) {
		unprocessed := map[string]types.KeysAndAttributes{
			testTable.Name: {Keys: []map[string]types.AttributeValue{{"pk": s("PRODUCT#2"), "sk": s("DETAILS")}}},
		}
		fake := &fakeDynamo{
			batchPages: []*dynamodbv2.BatchGetItemOutput{
				{
					Responses:       map[string][]map[string]types.AttributeValue{testTable.Name: {{"pk": s("PRODUCT#0")}, {"pk": s("PRODUCT#1")}}},
					UnprocessedKeys: unprocessed,
				},
				{
					Responses: map[string][]map[string]types.AttributeValue{testTable.Name: {{"pk": s("PRODUCT#2")}}},
				},
			},
		}
		items, err := New(fake).NewLookup(WithEventualConsistency()).GetItemsBatch(context.Background(), requests(3)...)
		require.NoError(t, err)
		assert.Len(t, items, 3)

		require.Len(t, fake.batchGets, 2)
		first := fake.batchGets[0].RequestItems[testTable.Name]
		assert.Len(t, first.Keys, 3)
		assert.False(t, *first.ConsistentRead)
		assert.Equal(t, unprocessed, fake.batchGets[1].RequestItems)
	})

	t.Run("backs off between resubmits", func(t *testing.T) {
		unprocessed := map[string]types.KeysAndAttributes{
			testTable.Name: {Keys: []map[string]types.AttributeValue{{"pk": s("PRODUCT#1"), "sk": s("DETAILS")}}},
		}
		fake := &fakeDynamo{
			batchPages: []*dynamodbv2.BatchGetItemOutput{
				{UnprocessedKeys: unprocessed},
				{UnprocessedKeys: unprocessed},
				{Responses: map[string][]map[string]types.AttributeValue{testTable.Name: {{"pk": s("PRODUCT#1")}}}},
			},
		}
		g := NewGetter(fake)
		var retries []int
		g.opts.backoff = func(retry int) time.Duration {
			retries = append(retries, retry)
			return time.Millisecond
		}

		items, err := g.GetItemsBatch(context.Background(), requests(2)...)
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Len(t, fake.batchGets, 3)
		assert.Equal(t, []int{0, 1}, retries, "no wait before the first request")
	})

	t.Run("cancelled while backing off", func(t *testing.T) {
		unprocessed := map[string]types.KeysAndAttributes{
			testTable.Name: {Keys: []map[string]types.AttributeValue{{"pk": s("PRODUCT#1"), "sk": s("DETAILS")}}},
		}
		fake := &fakeDynamo{batchPages: []*dynamodbv2.BatchGetItemOutput{{UnprocessedKeys: unprocessed}}}
		ctx, cancel := context.WithCancel(context.Background())
		g := NewGetter(fake)
		g.opts.backoff = func(int) time.Duration {
			cancel()
			return time.Hour
		}

		_, err := g.GetItemsBatch(ctx, requests(2)...)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, fake.batchGets, 1)
	})

	t.Run("empty input makes no call", func(t *testing.T) {
		fake := &fakeDynamo{}
		items, err := New(fake).NewLookup().GetItemsBatch(context.Background())
		require.NoError(t, err)
		assert.Nil(t, items)
		assert.Empty(t, fake.batchGets)
	})

	t.Run("transport error", func(t *testing.T) {
		cause := errors.New("boom")
		fake := &fakeDynamo{err: cause}
		_, err := New(fake).NewLookup().GetItemsBatch(context.Background(), requests(2)...)
		assert.ErrorIs(t, err, cause)
	})
}

func TestDefaultBackoff(t *testing.T) {
	for retry, limit := range []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond} {
		for range 20 {
			d := defaultBackoff(retry)
			assert.GreaterOrEqual(t, d, time.Duration(0))
			assert.Less(t, d, limit)
		}
	}
	assert.Less(t, defaultBackoff(40), 5*time.Second, "capped")
}
