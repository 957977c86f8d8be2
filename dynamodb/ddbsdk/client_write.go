package ddbsdk

import (
	"context"
	"errors"
	"fmt"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PutItemAction is implemented by Put.
type PutItemAction interface {
	ToPutItem() (*dynamodbv2.PutItemInput, error)
}

type UpdateItemAction interface {
	ToUpdateItem() (*dynamodbv2.UpdateItemInput, error)
}

type DeleteItemAction interface {
	ToDeleteItem() (*dynamodbv2.DeleteItemInput, error)
}

var (
	_ PutItemAction    = &Put{}
	_ UpdateItemAction = &Update{}
	_ DeleteItemAction = &Delete{}
)

func (c *Client) PutItem(ctx context.Context, p PutItemAction) error {
	put, err := p.ToPutItem()
	if err != nil {
		return fmt.Errorf("failed to convert put to put item: %w", err)
	}
	_, err = c.awsddb.PutItem(ctx, put)
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

func (c *Client) UpdateItem(ctx context.Context, u UpdateItemAction) error {
	update, err := u.ToUpdateItem()
	if err != nil {
		return fmt.Errorf("failed to convert update to update item: %w", err)
	}
	_, err = c.awsddb.UpdateItem(ctx, update)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

func (c *Client) DeleteItem(ctx context.Context, d DeleteItemAction) error {
	del, err := d.ToDeleteItem()
	if err != nil {
		return fmt.Errorf("failed to convert delete to delete item: %w", err)
	}
	_, err = c.awsddb.DeleteItem(ctx, del)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// IsConditionalCheckFailed reports whether err, or anything it wraps, is a
// failed condition expression.
func IsConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
