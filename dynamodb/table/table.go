package table

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type TableDefinition struct {
	Name           string
	KeyDefinitions PrimaryKeyDefinition
	GSIs           []GSIDefinition
}

// GSIDefinition represents a Global Secondary Index definition.
type GSIDefinition struct {
	Name           string
	KeyDefinitions PrimaryKeyDefinition
}

// GSI looks up a secondary index by name.
func (t TableDefinition) GSI(name string) (GSIDefinition, bool) {
	for _, g := range t.GSIs {
		if g.Name == name {
			return g, true
		}
	}
	return GSIDefinition{}, false
}

// KeysFor returns the key definition used when querying indexName.
// An empty name means the base table.
func (t TableDefinition) KeysFor(indexName string) (PrimaryKeyDefinition, error) {
	if indexName == "" {
		return t.KeyDefinitions, nil
	}
	g, ok := t.GSI(indexName)
	if !ok {
		return PrimaryKeyDefinition{}, fmt.Errorf("table %s has no index %q", t.Name, indexName)
	}
	return g.KeyDefinitions, nil
}

// ExtractPrimaryKey extracts the primary key values from a document.
func (g GSIDefinition) ExtractPrimaryKey(doc map[string]types.AttributeValue) (PrimaryKey, error) {
	return g.KeyDefinitions.ExtractPrimaryKey(doc)
}

func (t TableDefinition) ExtractPrimaryKey(doc map[string]types.AttributeValue) (PrimaryKey, error) {
	return t.KeyDefinitions.ExtractPrimaryKey(doc)
}

func (k PrimaryKeyDefinition) ExtractPrimaryKey(doc map[string]types.AttributeValue) (PrimaryKey, error) {
	part, ok := doc[k.PartitionKey.Name]
	if !ok {
		return PrimaryKey{}, fmt.Errorf("partition key %q not found", k.PartitionKey.Name)
	}
	if err := attributeMatchesDefinition(k.PartitionKey.Kind, part); err != nil {
		return PrimaryKey{}, fmt.Errorf("document key %q kind does not match definition: %w", k.PartitionKey.Name, err)
	}
	if err := attributeNotEmpty(k.PartitionKey.Name, part); err != nil {
		return PrimaryKey{}, err
	}
	pk := PrimaryKey{
		Definition: k,
		Values: PrimaryKeyValues{
			PartitionKey: keyValueFromAV(part),
		},
	}
	if k.SortKey.Name == "" {
		return pk, nil
	}
	sort, ok := doc[k.SortKey.Name]
	if !ok {
		return PrimaryKey{}, fmt.Errorf("sort key %q not found on document", k.SortKey.Name)
	}
	if err := attributeMatchesDefinition(k.SortKey.Kind, sort); err != nil {
		return PrimaryKey{}, fmt.Errorf("sort key %q kind does not match definition: %w", k.SortKey.Name, err)
	}
	if err := attributeNotEmpty(k.SortKey.Name, sort); err != nil {
		return PrimaryKey{}, err
	}
	pk.Values.SortKey = keyValueFromAV(sort)
	return pk, nil
}

func attributeNotEmpty(name string, av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		if v.Value == "" {
			return fmt.Errorf("key %q is empty", name)
		}
	case *types.AttributeValueMemberB:
		if len(v.Value) == 0 {
			return fmt.Errorf("key %q is empty", name)
		}
	}
	return nil
}

func keyValueFromAV(av types.AttributeValue) any {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberB:
		return v.Value
	}
	// attributeMatchesDefinition has already rejected everything else
	return nil
}
