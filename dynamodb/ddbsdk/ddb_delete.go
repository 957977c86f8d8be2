package ddbsdk

import (
	"fmt"

	"github.com/acksell/catalog/dynamodb/table"

	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type Delete struct {
	Table table.TableDefinition
	Key   table.PrimaryKey

	c expression2.ConditionBuilder
}

func NewDelete(t table.TableDefinition, pk table.PrimaryKey) *Delete {
	return &Delete{
		Table: t,
		Key:   pk,
	}
}

func (d *Delete) TableName() *string {
	return &d.Table.Name
}

func (d *Delete) WithCondition(c expression2.ConditionBuilder) *Delete {
	if d.c.IsSet() {
		d.c = d.c.And(c)
		return d
	}
	d.c = c
	return d
}

func (d *Delete) ToDeleteItem() (*dynamodbv2.DeleteItemInput, error) {
	key, err := d.Key.DDB()
	if err != nil {
		return nil, fmt.Errorf("delete key: %w", err)
	}
	input := &dynamodbv2.DeleteItemInput{
		TableName: d.TableName(),
		Key:       key,
	}
	if !d.c.IsSet() {
		return input, nil
	}
	e, err := expression2.NewBuilder().WithCondition(d.c).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete: %w", err)
	}
	input.ConditionExpression = e.Condition()
	input.ExpressionAttributeValues = e.Values()
	input.ExpressionAttributeNames = e.Names()
	return input, nil
}
