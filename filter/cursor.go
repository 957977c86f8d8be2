package filter

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/acksell/catalog"
)

// Cursor continues a search on its next page. After is the SKU of the last
// record the previous page returned; it is informational only, since pages
// are cut by offset.
type Cursor struct {
	After    string `json:"after"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeCursor(s string) (Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: malformed cursor: %v", catalog.ErrInvalidInput, err)
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("%w: malformed cursor: %v", catalog.ErrInvalidInput, err)
	}
	if c.Page < 1 || c.PageSize < 1 {
		return Cursor{}, fmt.Errorf("%w: cursor points at page %d of size %d", catalog.ErrInvalidInput, c.Page, c.PageSize)
	}
	return c, nil
}

// Apply moves f to the page the cursor points at.
func (c Cursor) Apply(f catalog.Filter) catalog.Filter {
	f.Page = c.Page
	f.PageSize = c.PageSize
	return f
}
