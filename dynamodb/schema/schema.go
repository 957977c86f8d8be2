// Package schema reads DynamoDB table layouts from schema_dynamodb.yaml files
// and turns them into table definitions.
package schema

import (
	"fmt"

	"github.com/acksell/catalog/dynamodb/table"
	"gopkg.in/yaml.v3"
)

// Schema is the root type containing all table definitions.
type Schema struct {
	Tables []Table `yaml:"tables" json:"tables"`
}

// Table describes a DynamoDB table structure.
type Table struct {
	Name         string  `yaml:"name" json:"name"`
	PartitionKey KeyDef  `yaml:"partitionKey" json:"partitionKey"`
	SortKey      *KeyDef `yaml:"sortKey,omitempty" json:"sortKey,omitempty"`
	GSIs         []GSI   `yaml:"gsis,omitempty" json:"gsis,omitempty"`
}

// KeyDef describes a key attribute definition.
type KeyDef struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"` // "S", "N", or "B"
}

// GSI describes a Global Secondary Index.
type GSI struct {
	Name         string  `yaml:"name" json:"name"`
	PartitionKey KeyDef  `yaml:"partitionKey" json:"partitionKey"`
	SortKey      *KeyDef `yaml:"sortKey,omitempty" json:"sortKey,omitempty"`
}

// Parse decodes a schema document.
func Parse(data []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("parse schema: %w", err)
	}
	if len(s.Tables) == 0 {
		return Schema{}, fmt.Errorf("schema defines no tables")
	}
	return s, nil
}

// Table returns the table with the given name.
func (s Schema) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Definition converts the table to a table.TableDefinition. Name overrides
// the schema's table name when set, so one layout can back differently named
// tables per environment.
func (t Table) Definition(name string) (table.TableDefinition, error) {
	if name == "" {
		name = t.Name
	}
	keys, err := keyDefinitions(t.PartitionKey, t.SortKey)
	if err != nil {
		return table.TableDefinition{}, fmt.Errorf("table %s: %w", t.Name, err)
	}
	def := table.TableDefinition{
		Name:           name,
		KeyDefinitions: keys,
	}

	seen := make(map[string]bool, len(t.GSIs))
	for _, gsi := range t.GSIs {
		if seen[gsi.Name] {
			return table.TableDefinition{}, fmt.Errorf("table %s: duplicate index %q", t.Name, gsi.Name)
		}
		seen[gsi.Name] = true

		keys, err := keyDefinitions(gsi.PartitionKey, gsi.SortKey)
		if err != nil {
			return table.TableDefinition{}, fmt.Errorf("table %s index %s: %w", t.Name, gsi.Name, err)
		}
		def.GSIs = append(def.GSIs, table.GSIDefinition{
			Name:           gsi.Name,
			KeyDefinitions: keys,
		})
	}

	return def, nil
}

func keyDefinitions(partition KeyDef, sort *KeyDef) (table.PrimaryKeyDefinition, error) {
	var def table.PrimaryKeyDefinition
	pk, err := partition.toKeyDef()
	if err != nil {
		return def, fmt.Errorf("partition key: %w", err)
	}
	def.PartitionKey = pk
	if sort != nil {
		sk, err := sort.toKeyDef()
		if err != nil {
			return def, fmt.Errorf("sort key: %w", err)
		}
		def.SortKey = sk
	}
	return def, nil
}

func (k KeyDef) toKeyDef() (table.KeyDef, error) {
	if k.Name == "" {
		return table.KeyDef{}, fmt.Errorf("key name is required")
	}
	kind, err := table.ParseKeyKind(k.Kind)
	if err != nil {
		return table.KeyDef{}, err
	}
	return table.KeyDef{Name: k.Name, Kind: kind}, nil
}
