package catalog

import (
	"fmt"
	"math"
	"strings"
)

// KeySeparator joins the segments of a composite key. Names, brands and
// categories may not contain it.
const KeySeparator = "#"

const (
	namePrefix     = "NAME#"
	skuPrefix      = "SKU#"
	brandPrefix    = "BRAND#"
	categoryPrefix = "CATEGORY#"
	pricePrefix    = "PRICE#"
)

const (
	// LowestPrice and HighestPrice are the encoded bounds of the price range.
	LowestPrice  = "000000000000"
	HighestPrice = "999999999999"
)

// CompositeKey is the (partition, sort) pair a product contributes to one
// secondary index.
type CompositeKey struct {
	Partition string
	Sort      string
}

// IndexKeys holds every derived composite key of a product.
type IndexKeys struct {
	Name               CompositeKey
	BrandPrice         CompositeKey
	CategoryPrice      CompositeKey
	CategoryBrandPrice CompositeKey
}

// Key names one of the derived composite keys.
type Key uint8

const (
	KeyName Key = 1 << iota
	KeyBrandPrice
	KeyCategoryPrice
	KeyCategoryBrandPrice
)

// AllKeys lists every derived key.
var AllKeys = []Key{KeyName, KeyBrandPrice, KeyCategoryPrice, KeyCategoryBrandPrice}

// Inputs returns the fields a key is built from.
func (k Key) Inputs() FieldSet {
	switch k {
	case KeyName:
		return Fields(FieldName)
	case KeyBrandPrice:
		return Fields(FieldBrand, FieldPrice)
	case KeyCategoryPrice:
		return Fields(FieldCategory, FieldPrice)
	case KeyCategoryBrandPrice:
		return Fields(FieldCategory, FieldBrand, FieldPrice)
	}
	return 0
}

func (k Key) String() string {
	switch k {
	case KeyName:
		return "name"
	case KeyBrandPrice:
		return "brandPrice"
	case KeyCategoryPrice:
		return "categoryPrice"
	case KeyCategoryBrandPrice:
		return "categoryBrandPrice"
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// KeySet is a set of derived keys.
type KeySet uint8

func (s KeySet) Has(k Key) bool {
	return s&KeySet(k) != 0
}

func (s KeySet) IsEmpty() bool {
	return s == 0
}

func (s KeySet) String() string {
	var names []string
	for _, k := range AllKeys {
		if s.Has(k) {
			names = append(names, k.String())
		}
	}
	return strings.Join(names, ",")
}

// Get returns the composite key stored under k.
func (ik IndexKeys) Get(k Key) CompositeKey {
	switch k {
	case KeyName:
		return ik.Name
	case KeyBrandPrice:
		return ik.BrandPrice
	case KeyCategoryPrice:
		return ik.CategoryPrice
	case KeyCategoryBrandPrice:
		return ik.CategoryBrandPrice
	}
	return CompositeKey{}
}

func (ik *IndexKeys) set(k Key, ck CompositeKey) {
	switch k {
	case KeyName:
		ik.Name = ck
	case KeyBrandPrice:
		ik.BrandPrice = ck
	case KeyCategoryPrice:
		ik.CategoryPrice = ck
	case KeyCategoryBrandPrice:
		ik.CategoryBrandPrice = ck
	}
}

// BuildKey computes a single derived key from p's current attributes.
func BuildKey(k Key, p Product) CompositeKey {
	price := EncodePrice(p.Price)
	switch k {
	case KeyName:
		return CompositeKey{Partition: NamePartition(p.Name), Sort: skuPrefix + p.SKU}
	case KeyBrandPrice:
		return CompositeKey{Partition: BrandPartition(p.Brand), Sort: PriceSort(price)}
	case KeyCategoryPrice:
		return CompositeKey{Partition: CategoryPartition(p.Category), Sort: PriceSort(price)}
	case KeyCategoryBrandPrice:
		return CompositeKey{Partition: CategoryPartition(p.Category), Sort: BrandPriceSort(p.Brand, price)}
	}
	return CompositeKey{}
}

// BuildKeys computes every derived key of p.
func BuildKeys(p Product) IndexKeys {
	var ik IndexKeys
	for _, k := range AllKeys {
		ik.set(k, BuildKey(k, p))
	}
	return ik
}

// RecomputeKeys rebuilds exactly the keys whose inputs intersect changed and
// copies the others from prev. It returns the resulting keys and the set of
// keys that were rebuilt.
func RecomputeKeys(prev IndexKeys, p Product, changed FieldSet) (IndexKeys, KeySet) {
	next := prev
	var rebuilt KeySet
	for _, k := range AllKeys {
		if !k.Inputs().Intersects(changed) {
			continue
		}
		next.set(k, BuildKey(k, p))
		rebuilt |= KeySet(k)
	}
	return next, rebuilt
}

// EncodePrice renders a price as zero padded integer cents so that string
// order matches numeric order. Prices outside [0, MaxPrice] are clamped.
func EncodePrice(price float64) string {
	return encodeCents(math.Round(price * 100))
}

// WholeCents reports whether price is a whole number of cents, ignoring
// float noise (19.99*100 is 1998.9999999999998). Only such prices encode
// without loss.
func WholeCents(price float64) bool {
	cents := price * 100
	tolerance := math.Max(1e-6, math.Abs(cents)*1e-14)
	return math.Abs(cents-math.Round(cents)) < tolerance
}

func encodeCents(cents float64) string {
	switch {
	case math.IsNaN(cents) || cents < 0:
		return LowestPrice
	case cents > MaxPrice*100:
		return HighestPrice
	}
	return fmt.Sprintf("%012d", int64(cents))
}

func NamePartition(name string) string {
	return namePrefix + name
}

func BrandPartition(brand string) string {
	return brandPrefix + brand
}

func CategoryPartition(category string) string {
	return categoryPrefix + category
}

func PriceSort(encodedPrice string) string {
	return pricePrefix + encodedPrice
}

func BrandPriceSort(brand, encodedPrice string) string {
	return BrandPricePrefix(brand) + encodedPrice
}

// BrandPricePrefix is the sort key prefix shared by every price of one brand
// in the category+brand+price index.
func BrandPricePrefix(brand string) string {
	return brandPrefix + brand + KeySeparator + pricePrefix
}
