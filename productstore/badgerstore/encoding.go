package badgerstore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/acksell/catalog/productstore"
)

// Key layout in badger. All product key attributes are strings.
//
//	base item:   <table> 0x00 S<pk> 0x00 S<sk>
//	index entry: <table>$gsi:<index> 0x00 S<index pk> 0x00 S<index sk> 0x00 S<item pk>
//
// Index entries end with the item's partition key because several products
// can share an index key (same brand and price, for instance).

const (
	keySeparator  byte = 0x00
	keyTypeString byte = 'S'
	gsiMarker          = "$gsi:"
)

type keyEncoder struct {
	tableName string
	indexName string // empty for the base table
}

func (e keyEncoder) tablePrefix() []byte {
	var buf bytes.Buffer
	buf.WriteString(e.tableName)
	if e.indexName != "" {
		buf.WriteString(gsiMarker)
		buf.WriteString(e.indexName)
	}
	buf.WriteByte(keySeparator)
	return buf.Bytes()
}

// partitionPrefix returns the prefix shared by every key in one partition.
func (e keyEncoder) partitionPrefix(partition string) []byte {
	buf := bytes.NewBuffer(e.tablePrefix())
	buf.Write(encodeString(partition))
	buf.WriteByte(keySeparator)
	return buf.Bytes()
}

// sortPrefix returns the partition prefix extended with an encoded sort key,
// the smallest key whose sort component is >= sort.
func (e keyEncoder) sortPrefix(partition, sort string) []byte {
	buf := bytes.NewBuffer(e.partitionPrefix(partition))
	buf.Write(encodeString(sort))
	return buf.Bytes()
}

func (e keyEncoder) itemKey(pk, sk string) []byte {
	return e.sortPrefix(pk, sk)
}

func (e keyEncoder) indexKey(ck keyPair, itemPK string) []byte {
	buf := bytes.NewBuffer(e.sortPrefix(ck.partition, ck.sort))
	buf.WriteByte(keySeparator)
	buf.Write(encodeString(itemPK))
	return buf.Bytes()
}

// sortKeyOf extracts the sort component of a key under partitionPrefix.
func sortKeyOf(key, partitionPrefix []byte) (string, error) {
	rest := bytes.TrimPrefix(key, partitionPrefix)
	if i := bytes.IndexByte(rest, keySeparator); i >= 0 {
		rest = rest[:i]
	}
	if len(rest) == 0 || rest[0] != keyTypeString {
		return "", fmt.Errorf("malformed key %q", key)
	}
	return string(unescapeBytes(rest[1:])), nil
}

type keyPair struct {
	partition string
	sort      string
}

func encodeString(s string) []byte {
	b := make([]byte, 0, len(s)+1)
	b = append(b, keyTypeString)
	return append(b, escapeBytes([]byte(s))...)
}

// escapeBytes escapes null bytes (0x00) in the input to preserve separator integrity.
// Uses 0x01 0x01 for literal 0x00, and 0x01 0x02 for literal 0x01.
func escapeBytes(b []byte) []byte {
	var buf bytes.Buffer
	for _, c := range b {
		switch c {
		case 0x00:
			buf.WriteByte(0x01)
			buf.WriteByte(0x01)
		case 0x01:
			buf.WriteByte(0x01)
			buf.WriteByte(0x02)
		default:
			buf.WriteByte(c)
		}
	}
	return buf.Bytes()
}

// unescapeBytes reverses the escaping done by escapeBytes.
func unescapeBytes(b []byte) []byte {
	var buf bytes.Buffer
	for i := 0; i < len(b); i++ {
		if b[i] == 0x01 && i+1 < len(b) {
			switch b[i+1] {
			case 0x01:
				buf.WriteByte(0x00)
				i++
				continue
			case 0x02:
				buf.WriteByte(0x01)
				i++
				continue
			}
		}
		buf.WriteByte(b[i])
	}
	return buf.Bytes()
}

func encodeItem(item productstore.Item) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(item); err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeItem(data []byte) (productstore.Item, error) {
	var item productstore.Item
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&item); err != nil {
		return productstore.Item{}, fmt.Errorf("decode item: %w", err)
	}
	return item, nil
}
