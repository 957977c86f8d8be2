package productstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/acksell/catalog"
)

// Attribute names of the product item.
const (
	AttrPK          = "pk"
	AttrSK          = "sk"
	AttrSKU         = "sku"
	AttrName        = "name"
	AttrCategory    = "category"
	AttrBrand       = "brand"
	AttrPrice       = "price"
	AttrStock       = "stock"
	AttrDescription = "description"
	AttrUpdatedAt   = "updatedAt"
)

const (
	partitionPrefix = "PRODUCT#"
	detailsSortKey  = "DETAILS"
)

// Item is the stored form of a product: its attributes plus the key
// attributes of the base table and of every secondary index.
type Item struct {
	PK string `dynamodbav:"pk"`
	SK string `dynamodbav:"sk"`

	SKU         string  `dynamodbav:"sku"`
	Name        string  `dynamodbav:"name"`
	Category    string  `dynamodbav:"category"`
	Brand       string  `dynamodbav:"brand"`
	Price       float64 `dynamodbav:"price"`
	Stock       int     `dynamodbav:"stock"`
	Description string  `dynamodbav:"description,omitempty"`

	PKName               string `dynamodbav:"pkName"`
	SKName               string `dynamodbav:"skName"`
	PKBrandPrice         string `dynamodbav:"pkBrandPrice"`
	SKBrandPrice         string `dynamodbav:"skBrandPrice"`
	PKCategoryPrice      string `dynamodbav:"pkCategoryPrice"`
	SKCategoryPrice      string `dynamodbav:"skCategoryPrice"`
	PKCategoryBrandPrice string `dynamodbav:"pkCategoryBrandPrice"`
	SKCategoryBrandPrice string `dynamodbav:"skCategoryBrandPrice"`

	CreatedAt time.Time `dynamodbav:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updatedAt"`
}

// PrimaryKey returns the base table key values of a SKU.
func PrimaryKey(sku string) (pk, sk string) {
	return partitionPrefix + sku, detailsSortKey
}

// SKUFromPartition reverses PrimaryKey's partition value.
func SKUFromPartition(pk string) (string, error) {
	sku, ok := strings.CutPrefix(pk, partitionPrefix)
	if !ok || sku == "" {
		return "", fmt.Errorf("partition key %q is not a product key", pk)
	}
	return sku, nil
}

func NewItem(p catalog.Product) Item {
	pk, sk := PrimaryKey(p.SKU)
	return Item{
		PK:          pk,
		SK:          sk,
		SKU:         p.SKU,
		Name:        p.Name,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Stock:       p.Stock,
		Description: p.Description,

		PKName:               p.Keys.Name.Partition,
		SKName:               p.Keys.Name.Sort,
		PKBrandPrice:         p.Keys.BrandPrice.Partition,
		SKBrandPrice:         p.Keys.BrandPrice.Sort,
		PKCategoryPrice:      p.Keys.CategoryPrice.Partition,
		SKCategoryPrice:      p.Keys.CategoryPrice.Sort,
		PKCategoryBrandPrice: p.Keys.CategoryBrandPrice.Partition,
		SKCategoryBrandPrice: p.Keys.CategoryBrandPrice.Sort,

		CreatedAt: p.Meta.Created,
		UpdatedAt: p.Meta.Updated,
	}
}

func (i Item) Product() catalog.Product {
	return catalog.Product{
		SKU:         i.SKU,
		Name:        i.Name,
		Category:    i.Category,
		Brand:       i.Brand,
		Price:       i.Price,
		Stock:       i.Stock,
		Description: i.Description,
		Keys: catalog.IndexKeys{
			Name:               catalog.CompositeKey{Partition: i.PKName, Sort: i.SKName},
			BrandPrice:         catalog.CompositeKey{Partition: i.PKBrandPrice, Sort: i.SKBrandPrice},
			CategoryPrice:      catalog.CompositeKey{Partition: i.PKCategoryPrice, Sort: i.SKCategoryPrice},
			CategoryBrandPrice: catalog.CompositeKey{Partition: i.PKCategoryBrandPrice, Sort: i.SKCategoryBrandPrice},
		},
		Meta: catalog.Meta{Created: i.CreatedAt, Updated: i.UpdatedAt},
	}
}

// IsValid rejects items whose derived keys are missing or do not match the
// product attributes, so a stale key is never written.
func (i Item) IsValid() error {
	if i.SKU == "" {
		return fmt.Errorf("item has no sku")
	}
	p := i.Product()
	want := catalog.BuildKeys(p)
	for _, k := range catalog.AllKeys {
		if p.Keys.Get(k) != want.Get(k) {
			return fmt.Errorf("item %s: %s key %+v does not match attributes, want %+v", i.SKU, k, p.Keys.Get(k), want.Get(k))
		}
	}
	return nil
}

// KeyAttributes names the partition and sort attributes of a derived key.
func KeyAttributes(k catalog.Key) (partition, sort string) {
	switch k {
	case catalog.KeyName:
		return "pkName", "skName"
	case catalog.KeyBrandPrice:
		return "pkBrandPrice", "skBrandPrice"
	case catalog.KeyCategoryPrice:
		return "pkCategoryPrice", "skCategoryPrice"
	case catalog.KeyCategoryBrandPrice:
		return "pkCategoryBrandPrice", "skCategoryBrandPrice"
	}
	return "", ""
}

// UpdatedAttributes lists the attribute values an update of the changed
// fields must write: the fields themselves, every index key built from them,
// and the update time.
func UpdatedAttributes(p catalog.Product, changed catalog.FieldSet) map[string]any {
	attrs := make(map[string]any)
	if changed.Has(catalog.FieldName) {
		attrs[AttrName] = p.Name
	}
	if changed.Has(catalog.FieldCategory) {
		attrs[AttrCategory] = p.Category
	}
	if changed.Has(catalog.FieldBrand) {
		attrs[AttrBrand] = p.Brand
	}
	if changed.Has(catalog.FieldPrice) {
		attrs[AttrPrice] = p.Price
	}
	if changed.Has(catalog.FieldStock) {
		attrs[AttrStock] = p.Stock
	}
	if changed.Has(catalog.FieldDescription) {
		attrs[AttrDescription] = p.Description
	}
	for _, k := range catalog.AllKeys {
		if !k.Inputs().Intersects(changed) {
			continue
		}
		pa, sa := KeyAttributes(k)
		ck := p.Keys.Get(k)
		attrs[pa] = ck.Partition
		attrs[sa] = ck.Sort
	}
	if len(attrs) > 0 {
		attrs[AttrUpdatedAt] = p.Meta.Updated
	}
	return attrs
}
