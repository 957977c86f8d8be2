package table

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTable = TableDefinition{
	Name: "products",
	KeyDefinitions: PrimaryKeyDefinition{
		PartitionKey: KeyDef{Name: "pk", Kind: KeyKindS},
		SortKey:      KeyDef{Name: "sk", Kind: KeyKindS},
	},
	GSIs: []GSIDefinition{
		{
			Name: "byPrice",
			KeyDefinitions: PrimaryKeyDefinition{
				PartitionKey: KeyDef{Name: "gpk", Kind: KeyKindS},
				SortKey:      KeyDef{Name: "price", Kind: KeyKindN},
			},
		},
	},
}

func TestKeysFor(t *testing.T) {
	keys, err := testTable.KeysFor("")
	require.NoError(t, err)
	assert.Equal(t, "pk", keys.PartitionKey.Name)

	keys, err = testTable.KeysFor("byPrice")
	require.NoError(t, err)
	assert.Equal(t, "gpk", keys.PartitionKey.Name)
	assert.Equal(t, KeyKindN, keys.SortKey.Kind)

	_, err = testTable.KeysFor("missing")
	assert.Error(t, err)
}

func TestPrimaryKeyDDB(t *testing.T) {
	t.Run("partition and sort", func(t *testing.T) {
		key := PrimaryKey{
			Definition: testTable.KeyDefinitions,
			Values:     PrimaryKeyValues{PartitionKey: "PRODUCT#1", SortKey: "DETAILS"},
		}
		av, err := key.DDB()
		require.NoError(t, err)
		assert.Equal(t, &types.AttributeValueMemberS{Value: "PRODUCT#1"}, av["pk"])
		assert.Equal(t, &types.AttributeValueMemberS{Value: "DETAILS"}, av["sk"])
	})

	t.Run("missing sort key", func(t *testing.T) {
		key := PrimaryKey{
			Definition: testTable.KeyDefinitions,
			Values:     PrimaryKeyValues{PartitionKey: "PRODUCT#1"},
		}
		_, err := key.DDB()
		assert.Error(t, err)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		key := PrimaryKey{
			Definition: testTable.KeyDefinitions,
			Values:     PrimaryKeyValues{PartitionKey: 42, SortKey: "DETAILS"},
		}
		_, err := key.DDB()
		assert.Error(t, err)
	})
}

func TestExtractPrimaryKey(t *testing.T) {
	doc := map[string]types.AttributeValue{
		"pk":    &types.AttributeValueMemberS{Value: "PRODUCT#1"},
		"sk":    &types.AttributeValueMemberS{Value: "DETAILS"},
		"gpk":   &types.AttributeValueMemberS{Value: "BRAND#Acme"},
		"price": &types.AttributeValueMemberN{Value: "10.5"},
	}

	pk, err := testTable.ExtractPrimaryKey(doc)
	require.NoError(t, err)
	assert.Equal(t, "PRODUCT#1", pk.Values.PartitionKey)
	assert.Equal(t, "DETAILS", pk.Values.SortKey)

	gsi, ok := testTable.GSI("byPrice")
	require.True(t, ok)
	gk, err := gsi.ExtractPrimaryKey(doc)
	require.NoError(t, err)
	assert.Equal(t, "10.5", gk.Values.SortKey)

	delete(doc, "price")
	_, err = gsi.ExtractPrimaryKey(doc)
	assert.Error(t, err)
}

func TestParseKeyKind(t *testing.T) {
	k, err := ParseKeyKind("N")
	require.NoError(t, err)
	assert.Equal(t, KeyKindN, k)

	_, err = ParseKeyKind("X")
	assert.Error(t, err)
}
