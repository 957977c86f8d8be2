package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func testProduct() Product {
	p := Product{
		SKU:      "SKU-1",
		Name:     "Widget",
		Category: "Tools",
		Brand:    "Acme",
		Price:    99.99,
		Stock:    5,
	}
	p.Keys = BuildKeys(p)
	return p
}

func TestBuildKeys(t *testing.T) {
	keys := testProduct().Keys

	assert.Equal(t, CompositeKey{Partition: "NAME#Widget", Sort: "SKU#SKU-1"}, keys.Name)
	assert.Equal(t, CompositeKey{Partition: "BRAND#Acme", Sort: "PRICE#000000009999"}, keys.BrandPrice)
	assert.Equal(t, CompositeKey{Partition: "CATEGORY#Tools", Sort: "PRICE#000000009999"}, keys.CategoryPrice)
	assert.Equal(t, CompositeKey{Partition: "CATEGORY#Tools", Sort: "BRAND#Acme#PRICE#000000009999"}, keys.CategoryBrandPrice)
}

func TestEncodePrice(t *testing.T) {
	t.Run("orders like numbers", func(t *testing.T) {
		prices := []float64{0, 0.01, 9.99, 10, 99.5, 100, 12345.67}
		for i := 1; i < len(prices); i++ {
			assert.Less(t, EncodePrice(prices[i-1]), EncodePrice(prices[i]), "%v < %v", prices[i-1], prices[i])
		}
	})

	t.Run("rounds to cents", func(t *testing.T) {
		assert.Equal(t, "000000001999", EncodePrice(19.99))
		assert.Equal(t, "000000000030", EncodePrice(0.1+0.2))
	})

	t.Run("not a number", func(t *testing.T) {
		assert.Equal(t, LowestPrice, EncodePrice(math.NaN()))
	})

	t.Run("clamps out of range", func(t *testing.T) {
		assert.Equal(t, LowestPrice, EncodePrice(-1))
		assert.Equal(t, HighestPrice, EncodePrice(MaxPrice*10))
		assert.Equal(t, HighestPrice, EncodePrice(MaxPrice))
	})
}

func TestApplyPatch(t *testing.T) {
	t.Run("zero price and zero stock are real values", func(t *testing.T) {
		next, changed := ApplyPatch(testProduct(), Patch{Price: ptr(0.0), Stock: ptr(0)})

		assert.Equal(t, 0.0, next.Price)
		assert.Equal(t, 0, next.Stock)
		assert.True(t, changed.Has(FieldPrice))
		assert.True(t, changed.Has(FieldStock))
		assert.False(t, changed.Has(FieldName))
	})

	t.Run("price compares exactly", func(t *testing.T) {
		_, changed := ApplyPatch(testProduct(), Patch{Price: ptr(99.98)})
		assert.Equal(t, Fields(FieldPrice), changed)
	})

	t.Run("same value is not a change", func(t *testing.T) {
		_, changed := ApplyPatch(testProduct(), Patch{Name: ptr("Widget"), Price: ptr(99.99)})
		assert.True(t, changed.IsEmpty())
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.True(t, Patch{}.IsEmpty())
		next, changed := ApplyPatch(testProduct(), Patch{})
		assert.True(t, changed.IsEmpty())
		assert.Equal(t, testProduct(), next)
	})

	t.Run("clearing description", func(t *testing.T) {
		p := testProduct()
		p.Description = "old"
		next, changed := ApplyPatch(p, Patch{Description: ptr("")})
		assert.Equal(t, "", next.Description)
		assert.Equal(t, Fields(FieldDescription), changed)
	})
}

func TestRecomputeKeys(t *testing.T) {
	tests := []struct {
		name    string
		patch   Patch
		rebuilt []Key
	}{
		{"name only", Patch{Name: ptr("Gadget")}, []Key{KeyName}},
		{"brand", Patch{Brand: ptr("Globex")}, []Key{KeyBrandPrice, KeyCategoryBrandPrice}},
		{"category", Patch{Category: ptr("Garden")}, []Key{KeyCategoryPrice, KeyCategoryBrandPrice}},
		{"price", Patch{Price: ptr(5.0)}, []Key{KeyBrandPrice, KeyCategoryPrice, KeyCategoryBrandPrice}},
		{"stock", Patch{Stock: ptr(1)}, nil},
		{"description", Patch{Description: ptr("new")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := testProduct()
			next, changed := ApplyPatch(cur, tt.patch)
			keys, rebuilt := RecomputeKeys(cur.Keys, next, changed)

			for _, k := range AllKeys {
				want := contains(tt.rebuilt, k)
				assert.Equal(t, want, rebuilt.Has(k), "key %s", k)
				// rebuilt or not, every key must match the new attributes
				assert.Equal(t, BuildKey(k, next), keys.Get(k), "key %s", k)
			}
		})
	}

	t.Run("untouched keys are copied, not rebuilt", func(t *testing.T) {
		cur := testProduct()
		stale := cur.Keys
		stale.Name = CompositeKey{Partition: "kept", Sort: "as-is"}

		keys, rebuilt := RecomputeKeys(stale, cur, Fields(FieldStock))
		assert.True(t, rebuilt.IsEmpty())
		assert.Equal(t, stale, keys)
	})
}

func contains(keys []Key, k Key) bool {
	for _, c := range keys {
		if c == k {
			return true
		}
	}
	return false
}

func TestProductValidate(t *testing.T) {
	require.NoError(t, testProduct().Validate())

	p := testProduct()
	p.SKU = ""
	p.Price = -1
	p.Stock = -2
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "sku is required")
	assert.Contains(t, err.Error(), "price must be between")
	assert.Contains(t, err.Error(), "stock must not be negative")

	t.Run("price", func(t *testing.T) {
		for _, ok := range []float64{0, 0.29, 19.99, 0.1 + 0.2, MaxPrice} {
			p := testProduct()
			p.Price = ok
			assert.NoError(t, p.Validate(), "%v", ok)
		}
		for _, bad := range []float64{math.NaN(), math.Inf(1), 10.004, 0.001} {
			p := testProduct()
			p.Price = bad
			assert.ErrorIs(t, p.Validate(), ErrInvalidInput, "%v", bad)
		}
	})

	t.Run("key separator", func(t *testing.T) {
		for _, mutate := range []func(*Product){
			func(p *Product) { p.Brand = "A#PRICE#x" },
			func(p *Product) { p.Category = "Tools#Hand" },
			func(p *Product) { p.Name = "#1 Widget" },
		} {
			p := testProduct()
			mutate(&p)
			err := p.Validate()
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), "must not contain")
		}

		p := testProduct()
		p.SKU = "SKU#7"
		assert.NoError(t, p.Validate(), "sku is not part of a composite sort prefix")
	})
}

func TestWholeCents(t *testing.T) {
	assert.True(t, WholeCents(19.99))
	assert.True(t, WholeCents(0.1+0.2))
	assert.True(t, WholeCents(MaxPrice))
	assert.False(t, WholeCents(10.004))
	assert.False(t, WholeCents(math.NaN()))
}

func TestErrors(t *testing.T) {
	assert.ErrorIs(t, NoFilterError(), ErrNoFilter)
	assert.ErrorIs(t, NoFilterError(), ErrInvalidInput)
	assert.NotErrorIs(t, &ConfigurationError{Reason: "min price above max price"}, ErrNoFilter)
	assert.ErrorIs(t, &NotFoundError{SKU: "x"}, ErrNotFound)
	assert.ErrorIs(t, &AlreadyExistsError{SKU: "x"}, ErrAlreadyExists)

	cause := errors.New("throttled")
	assert.ErrorIs(t, &HydrationError{Batch: 1, Size: 100, Err: cause}, cause)
	assert.ErrorIs(t, &IndexQueryError{Index: "brandPriceIndex", Err: cause}, cause)
}

func TestParseSortAndDirection(t *testing.T) {
	f, err := ParseSortField("price")
	require.NoError(t, err)
	assert.Equal(t, SortPrice, f)
	assert.True(t, f.IsNumeric())

	_, err = ParseSortField("colour")
	assert.ErrorIs(t, err, ErrInvalidInput)

	d, err := ParseDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, Descending, d)

	d, err = ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Ascending, d)
}

func TestFilterWithDefaults(t *testing.T) {
	f := Filter{Brand: "Acme"}.WithDefaults(0)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, Ascending, f.Direction)

	assert.True(t, Filter{MinPrice: ptr(0.0)}.HasPriceBound())
	assert.False(t, Filter{}.HasPriceBound())
	assert.True(t, Filter{MaxStock: ptr(0)}.HasStockBound())
}
