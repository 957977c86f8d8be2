package ddbsdk

import (
	"fmt"

	"github.com/acksell/catalog/dynamodb/table"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Put writes a whole item, replacing any existing item with the same key
// unless a condition says otherwise.
type Put struct {
	Table  table.TableDefinition
	Entity DynamoEntity

	c expression2.ConditionBuilder
}

func NewPut(t table.TableDefinition, e DynamoEntity) *Put {
	return &Put{
		Table:  t,
		Entity: e,
	}
}

// NewCreate is a Put that fails with a ConditionalCheckFailedException
// when an item with the same primary key already exists.
func NewCreate(t table.TableDefinition, e DynamoEntity) *Put {
	return NewPut(t, e).WithCondition(
		expression2.AttributeNotExists(expression2.Name(t.KeyDefinitions.PartitionKey.Name)))
}

func (p *Put) TableName() *string {
	return &p.Table.Name
}

// WithCondition adds a condition expression, ANDed with any existing one.
func (p *Put) WithCondition(c expression2.ConditionBuilder) *Put {
	if p.c.IsSet() {
		p.c = p.c.And(c)
	} else {
		p.c = c
	}
	return p
}

func (p *Put) Build() (expression2.Expression, map[string]types.AttributeValue, error) {
	if err := p.Entity.IsValid(); err != nil {
		return expression2.Expression{}, nil, fmt.Errorf("invalid entity: %w", err)
	}
	entity, err := attributevalue.MarshalMap(p.Entity)
	if err != nil {
		return expression2.Expression{}, nil, fmt.Errorf("failed to marshal entity to dynamodb map: %w", err)
	}
	if _, err := p.Table.ExtractPrimaryKey(entity); err != nil {
		return expression2.Expression{}, nil, fmt.Errorf("entity primary key: %w", err)
	}
	if !p.c.IsSet() {
		return expression2.Expression{}, entity, nil
	}
	exp, err := expression2.NewBuilder().WithCondition(p.c).Build()
	if err != nil {
		return expression2.Expression{}, nil, fmt.Errorf("build: %w", err)
	}
	return exp, entity, nil
}

func (p *Put) ToPutItem() (*dynamodbv2.PutItemInput, error) {
	e, entity, err := p.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build put: %w", err)
	}
	return &dynamodbv2.PutItemInput{
		TableName:                 p.TableName(),
		Item:                      entity,
		ConditionExpression:       e.Condition(),
		ExpressionAttributeValues: e.Values(),
		ExpressionAttributeNames:  e.Names(),
	}, nil
}
