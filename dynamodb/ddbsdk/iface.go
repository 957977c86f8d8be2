package ddbsdk

import (
	"context"

	"github.com/acksell/catalog/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type IO interface {
	Writer
	Reader
}

type Writer interface {
	PutItem(context.Context, PutItemAction) error
	UpdateItem(context.Context, UpdateItemAction) error
	DeleteItem(context.Context, DeleteItemAction) error
}

type Reader interface {
	NewQuery(table.TableDefinition, KeyCondition) *Querier
	NewLookup(...GetOption) *Getter
}

// Item represents a raw DynamoDB item as returned from Get and Query operations.
// Callers should use attributevalue.UnmarshalMap to convert to their struct.
type Item = map[string]types.AttributeValue
