package ddbsdk

import (
	"fmt"
	"sort"

	"github.com/acksell/catalog/dynamodb/table"

	expression2 "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Update sets individual attributes of an existing item. Only SET is
// supported: the catalog never removes or increments attributes.
type Update struct {
	Table table.TableDefinition
	Key   table.PrimaryKey

	fields map[string]any
	c      expression2.ConditionBuilder
}

func NewUpdate(t table.TableDefinition, pk table.PrimaryKey) *Update {
	return &Update{
		Table: t,
		Key:   pk,
	}
}

// NewExistingUpdate is an Update that fails with a
// ConditionalCheckFailedException instead of creating a missing item.
func NewExistingUpdate(t table.TableDefinition, pk table.PrimaryKey) *Update {
	return NewUpdate(t, pk).WithCondition(
		expression2.AttributeExists(expression2.Name(t.KeyDefinitions.PartitionKey.Name)))
}

func (u *Update) TableName() *string {
	return &u.Table.Name
}

// Set assigns value to the named attribute. Setting the same attribute twice
// keeps the last value.
func (u *Update) Set(name string, value any) *Update {
	if u.fields == nil {
		u.fields = make(map[string]any)
	}
	u.fields[name] = value
	return u
}

// IsEmpty reports whether no attribute has been set.
func (u *Update) IsEmpty() bool {
	return len(u.fields) == 0
}

func (u *Update) WithCondition(c expression2.ConditionBuilder) *Update {
	if u.c.IsSet() {
		u.c = u.c.And(c)
	} else {
		u.c = c
	}
	return u
}

func (u *Update) Build() (expression2.Expression, error) {
	if u.IsEmpty() {
		return expression2.Expression{}, fmt.Errorf("update of %s sets no attributes", u.Table.Name)
	}
	keys := u.Table.KeyDefinitions
	names := make([]string, 0, len(u.fields))
	for name := range u.fields {
		if name == keys.PartitionKey.Name || name == keys.SortKey.Name {
			return expression2.Expression{}, fmt.Errorf("cannot update key attribute %q", name)
		}
		names = append(names, name)
	}
	// stable placeholder order
	sort.Strings(names)

	var up expression2.UpdateBuilder
	for _, name := range names {
		up = up.Set(expression2.Name(name), expression2.Value(u.fields[name]))
	}
	b := expression2.NewBuilder().WithUpdate(up)
	if u.c.IsSet() {
		b = b.WithCondition(u.c)
	}
	e, err := b.Build()
	if err != nil {
		return expression2.Expression{}, fmt.Errorf("build: %w", err)
	}
	return e, nil
}

func (u *Update) ToUpdateItem() (*dynamodbv2.UpdateItemInput, error) {
	e, err := u.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}
	key, err := u.Key.DDB()
	if err != nil {
		return nil, fmt.Errorf("update key: %w", err)
	}
	return &dynamodbv2.UpdateItemInput{
		TableName:                 u.TableName(),
		Key:                       key,
		UpdateExpression:          e.Update(),
		ConditionExpression:       e.Condition(),
		ExpressionAttributeValues: e.Values(),
		ExpressionAttributeNames:  e.Names(),
	}, nil
}
