package filter

import (
	"math"
	"testing"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/productstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name   string
		filter catalog.Filter
		want   []productstore.IndexQuery
	}{
		{
			name:   "name only",
			filter: catalog.Filter{ProductName: "Widget"},
			want: []productstore.IndexQuery{
				{Index: productstore.IndexName, Key: productstore.KeyCondition{Partition: "NAME#Widget"}},
			},
		},
		{
			name:   "category brand and price range",
			filter: catalog.Filter{Category: "Electronics", Brand: "Acme", MinPrice: ptr(10.0), MaxPrice: ptr(50.0)},
			want: []productstore.IndexQuery{{
				Index: productstore.IndexCategoryBrandPrice,
				Key: productstore.KeyCondition{
					Partition: "CATEGORY#Electronics",
					Sort: productstore.SortCondition{
						Op:    productstore.SortBetween,
						Value: "BRAND#Acme#PRICE#000000001000",
						Upper: "BRAND#Acme#PRICE#000000005000",
					},
				},
			}},
		},
		{
			name:   "category brand and max price only",
			filter: catalog.Filter{Category: "Electronics", Brand: "Acme", MaxPrice: ptr(50.0)},
			want: []productstore.IndexQuery{{
				Index: productstore.IndexCategoryBrandPrice,
				Key: productstore.KeyCondition{
					Partition: "CATEGORY#Electronics",
					Sort: productstore.SortCondition{
						Op:    productstore.SortBetween,
						Value: "BRAND#Acme#PRICE#000000000000",
						Upper: "BRAND#Acme#PRICE#000000005000",
					},
				},
			}},
		},
		{
			name:   "category and min price",
			filter: catalog.Filter{Category: "Electronics", MinPrice: ptr(0.0)},
			want: []productstore.IndexQuery{{
				Index: productstore.IndexCategoryPrice,
				Key: productstore.KeyCondition{
					Partition: "CATEGORY#Electronics",
					Sort:      productstore.SortCondition{Op: productstore.SortAtLeast, Value: "PRICE#000000000000"},
				},
			}},
		},
		{
			name:   "brand and max price",
			filter: catalog.Filter{Brand: "Acme", MaxPrice: ptr(9.99)},
			want: []productstore.IndexQuery{{
				Index: productstore.IndexBrandPrice,
				Key: productstore.KeyCondition{
					Partition: "BRAND#Acme",
					Sort:      productstore.SortCondition{Op: productstore.SortAtMost, Value: "PRICE#000000000999"},
				},
			}},
		},
		{
			name:   "brand and price range",
			filter: catalog.Filter{Brand: "Acme", MinPrice: ptr(1.0), MaxPrice: ptr(2.0)},
			want: []productstore.IndexQuery{{
				Index: productstore.IndexBrandPrice,
				Key: productstore.KeyCondition{
					Partition: "BRAND#Acme",
					Sort:      productstore.SortCondition{Op: productstore.SortBetween, Value: "PRICE#000000000100", Upper: "PRICE#000000000200"},
				},
			}},
		},
		{
			name:   "category only",
			filter: catalog.Filter{Category: "Electronics"},
			want: []productstore.IndexQuery{
				{Index: productstore.IndexCategoryPrice, Key: productstore.KeyCondition{Partition: "CATEGORY#Electronics"}},
			},
		},
		{
			name:   "brand only",
			filter: catalog.Filter{Brand: "Acme"},
			want: []productstore.IndexQuery{
				{Index: productstore.IndexBrandPrice, Key: productstore.KeyCondition{Partition: "BRAND#Acme"}},
			},
		},
		{
			name:   "category and brand without price",
			filter: catalog.Filter{Category: "Electronics", Brand: "Acme"},
			want: []productstore.IndexQuery{{
				Index: productstore.IndexCategoryBrandPrice,
				Key: productstore.KeyCondition{
					Partition: "CATEGORY#Electronics",
					Sort:      productstore.SortCondition{Op: productstore.SortBeginsWith, Value: "BRAND#Acme#PRICE#"},
				},
			}},
		},
		{
			name:   "name fires alongside brand",
			filter: catalog.Filter{ProductName: "Widget", Brand: "Acme", MinStock: ptr(1)},
			want: []productstore.IndexQuery{
				{Index: productstore.IndexName, Key: productstore.KeyCondition{Partition: "NAME#Widget"}},
				{Index: productstore.IndexBrandPrice, Key: productstore.KeyCondition{Partition: "BRAND#Acme"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			for _, q := range got {
				assert.NoError(t, q.Validate())
			}
		})
	}
}

func TestPlanRejects(t *testing.T) {
	t.Run("no criterion", func(t *testing.T) {
		for _, f := range []catalog.Filter{
			{},
			{MinPrice: ptr(1.0), MaxPrice: ptr(2.0)},
			{MinStock: ptr(1), OrderBy: catalog.SortName},
		} {
			_, err := Plan(f)
			var cfg *catalog.ConfigurationError
			require.ErrorAs(t, err, &cfg)
			assert.ErrorIs(t, err, catalog.ErrNoFilter)
		}
	})

	tests := map[string]catalog.Filter{
		"inverted price":  {Brand: "Acme", MinPrice: ptr(5.0), MaxPrice: ptr(1.0)},
		"negative price":  {Brand: "Acme", MinPrice: ptr(-1.0)},
		"price too large": {Brand: "Acme", MaxPrice: ptr(catalog.MaxPrice * 10)},
		"inverted stock":  {Brand: "Acme", MinStock: ptr(5), MaxStock: ptr(1)},
		"negative stock":  {Brand: "Acme", MaxStock: ptr(-1)},
		"NaN max price":   {Brand: "Acme", MaxPrice: ptr(math.NaN())},
		"NaN min price":   {Category: "Tools", MinPrice: ptr(math.NaN())},
		"infinite price":  {Brand: "Acme", MaxPrice: ptr(math.Inf(1))},
		"sub-cent bound":  {Brand: "Acme", MinPrice: ptr(10.004)},
	}
	for name, f := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Plan(f)
			var cfg *catalog.ConfigurationError
			require.ErrorAs(t, err, &cfg)
			assert.NotErrorIs(t, err, catalog.ErrNoFilter)
			assert.ErrorIs(t, err, catalog.ErrInvalidInput)
		})
	}
}
