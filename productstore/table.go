package productstore

import (
	_ "embed"
	"fmt"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/dynamodb/schema"
	"github.com/acksell/catalog/dynamodb/table"
)

// Secondary index names.
const (
	IndexName               = "productNameIndex"
	IndexBrandPrice         = "brandPriceIndex"
	IndexCategoryPrice      = "categoryPriceIndex"
	IndexCategoryBrandPrice = "categoryBrandPriceIndex"
)

// DefaultTableName is the table name in schema_dynamodb.yaml.
const DefaultTableName = "products"

//go:embed schema_dynamodb.yaml
var schemaYAML []byte

// TableDefinition returns the product table layout under the given name.
// An empty name keeps DefaultTableName.
func TableDefinition(name string) (table.TableDefinition, error) {
	s, err := schema.Parse(schemaYAML)
	if err != nil {
		return table.TableDefinition{}, err
	}
	t, ok := s.Table(DefaultTableName)
	if !ok {
		return table.TableDefinition{}, fmt.Errorf("schema has no %s table", DefaultTableName)
	}
	def, err := t.Definition(name)
	if err != nil {
		return table.TableDefinition{}, err
	}
	for _, k := range catalog.AllKeys {
		idx := IndexForKey(k)
		gsi, ok := def.GSI(idx)
		if !ok {
			return table.TableDefinition{}, fmt.Errorf("schema is missing index %s", idx)
		}
		pa, sa := KeyAttributes(k)
		if gsi.KeyDefinitions.PartitionKey.Name != pa || gsi.KeyDefinitions.SortKey.Name != sa {
			return table.TableDefinition{}, fmt.Errorf("index %s keys (%s, %s) do not match item attributes (%s, %s)",
				idx, gsi.KeyDefinitions.PartitionKey.Name, gsi.KeyDefinitions.SortKey.Name, pa, sa)
		}
	}
	return def, nil
}

// IndexForKey names the secondary index a derived key populates.
func IndexForKey(k catalog.Key) string {
	switch k {
	case catalog.KeyName:
		return IndexName
	case catalog.KeyBrandPrice:
		return IndexBrandPrice
	case catalog.KeyCategoryPrice:
		return IndexCategoryPrice
	case catalog.KeyCategoryBrandPrice:
		return IndexCategoryBrandPrice
	}
	return ""
}

// KeyForIndex is the inverse of IndexForKey.
func KeyForIndex(index string) (catalog.Key, bool) {
	for _, k := range catalog.AllKeys {
		if IndexForKey(k) == index {
			return k, true
		}
	}
	return 0, false
}

// PrimaryKeyOf builds the base table key of a SKU.
func PrimaryKeyOf(def table.TableDefinition, sku string) table.PrimaryKey {
	pk, sk := PrimaryKey(sku)
	return table.PrimaryKey{
		Definition: def.KeyDefinitions,
		Values:     table.PrimaryKeyValues{PartitionKey: pk, SortKey: sk},
	}
}
