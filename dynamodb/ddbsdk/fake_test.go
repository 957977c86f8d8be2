package ddbsdk

import (
	"context"
	"sync"

	"github.com/acksell/catalog/dynamodb/table"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var testTable = table.TableDefinition{
	Name: "catalog-test",
	KeyDefinitions: table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "pk", Kind: table.KeyKindS},
		SortKey:      table.KeyDef{Name: "sk", Kind: table.KeyKindS},
	},
	GSIs: []table.GSIDefinition{
		{
			Name: "brandPriceIndex",
			KeyDefinitions: table.PrimaryKeyDefinition{
				PartitionKey: table.KeyDef{Name: "pkBrandPrice", Kind: table.KeyKindS},
				SortKey:      table.KeyDef{Name: "skBrandPrice", Kind: table.KeyKindS},
			},
		},
		{
			Name: "ownerIndex",
			KeyDefinitions: table.PrimaryKeyDefinition{
				PartitionKey: table.KeyDef{Name: "owner", Kind: table.KeyKindS},
			},
		},
	},
}

func testKey(pk, sk string) table.PrimaryKey {
	return table.PrimaryKey{
		Definition: testTable.KeyDefinitions,
		Values:     table.PrimaryKeyValues{PartitionKey: pk, SortKey: sk},
	}
}

type testEntity struct {
	PK    string  `dynamodbav:"pk"`
	SK    string  `dynamodbav:"sk"`
	Name  string  `dynamodbav:"name"`
	Price float64 `dynamodbav:"price"`
}

func (e testEntity) IsValid() error { return nil }

// fakeDynamo records every request and answers from canned responses.
type fakeDynamo struct {
	mu sync.Mutex

	queryPages []*dynamodbv2.QueryOutput
	batchPages []*dynamodbv2.BatchGetItemOutput
	getOutput  *dynamodbv2.GetItemOutput
	err        error

	queries   []*dynamodbv2.QueryInput
	batchGets []*dynamodbv2.BatchGetItemInput
	gets      []*dynamodbv2.GetItemInput
	puts      []*dynamodbv2.PutItemInput
	updates   []*dynamodbv2.UpdateItemInput
	deletes   []*dynamodbv2.DeleteItemInput
}

func (f *fakeDynamo) BatchGetItem(_ context.Context, in *dynamodbv2.BatchGetItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.BatchGetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchGets = append(f.batchGets, in)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batchPages) == 0 {
		return &dynamodbv2.BatchGetItemOutput{}, nil
	}
	out := f.batchPages[0]
	f.batchPages = f.batchPages[1:]
	return out, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodbv2.DeleteItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, in)
	return &dynamodbv2.DeleteItemOutput{}, f.err
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodbv2.GetItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.getOutput == nil {
		return &dynamodbv2.GetItemOutput{}, nil
	}
	return f.getOutput, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodbv2.PutItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, in)
	return &dynamodbv2.PutItemOutput{}, f.err
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodbv2.QueryInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, in)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queryPages) == 0 {
		return &dynamodbv2.QueryOutput{}, nil
	}
	out := f.queryPages[0]
	f.queryPages = f.queryPages[1:]
	return out, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodbv2.UpdateItemInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	return &dynamodbv2.UpdateItemOutput{}, f.err
}

func s(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func nameValues(names map[string]string) []string {
	var out []string
	for _, v := range names {
		out = append(out, v)
	}
	return out
}
