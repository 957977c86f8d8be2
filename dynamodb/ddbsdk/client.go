package ddbsdk

import (
	"github.com/acksell/catalog/dynamodb/ddbiface"
	"github.com/acksell/catalog/dynamodb/table"
)

func New(awsddb ddbiface.AWSDynamoClientV2) *Client {
	return &Client{
		awsddb: awsddb,
	}
}

type Client struct {
	awsddb ddbiface.AWSDynamoClientV2
}

var _ IO = &Client{}

// NewQuery creates a new querier over the table or, with WithGSI, one of its indexes.
//
// Configure with method chaining: WithGSI(name), WithProjection(...).
func (c *Client) NewQuery(t table.TableDefinition, kc KeyCondition) *Querier {
	return NewQuerier(c.awsddb, t, kc)
}

// NewLookup creates a new getter for direct lookups by primary key.
//
// Options: [WithEventualConsistency]
func (c *Client) NewLookup(opts ...GetOption) *Getter {
	return NewGetter(c.awsddb, opts...)
}
