package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/filter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type queryFlags struct {
	brand, category, name string
	minPrice, maxPrice    float64
	minStock, maxStock    int
	orderBy, direction    string
	page, pageSize        int
	cursor                string
}

func newQueryCmd(configPath *string) *cobra.Command {
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a filtered search and print the page as JSON",
		Long: `Run a filtered search against the configured store.

At least one of --brand, --category or --name is required.

Examples:
  catalog query --brand Acme --max-price 20 --order-by price
  catalog query --category Tools --brand Acme --min-stock 1
  catalog query --brand Acme --cursor eyJhZnRlciI6...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := qf.filter(cmd.Flags())
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			page, err := a.service.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printPage(cmd.OutOrStdout(), page)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&qf.brand, "brand", "", "exact brand")
	fs.StringVar(&qf.category, "category", "", "exact category")
	fs.StringVar(&qf.name, "name", "", "exact product name")
	fs.Float64Var(&qf.minPrice, "min-price", 0, "inclusive lower price bound")
	fs.Float64Var(&qf.maxPrice, "max-price", 0, "inclusive upper price bound")
	fs.IntVar(&qf.minStock, "min-stock", 0, "inclusive lower stock bound")
	fs.IntVar(&qf.maxStock, "max-stock", 0, "inclusive upper stock bound")
	fs.StringVar(&qf.orderBy, "order-by", "", "name, price, stock, category or brand")
	fs.StringVar(&qf.direction, "direction", "ASC", "ASC or DESC")
	fs.IntVar(&qf.page, "page", 0, "1-based page number")
	fs.IntVar(&qf.pageSize, "page-size", 0, "records per page")
	fs.StringVar(&qf.cursor, "cursor", "", "continuation cursor from a previous page")
	return cmd
}

// filter builds the search. Bounds are only set for flags given on the
// command line, so an explicit zero still counts.
func (qf queryFlags) filter(fs *pflag.FlagSet) (catalog.Filter, error) {
	f := catalog.Filter{
		Brand:       qf.brand,
		Category:    qf.category,
		ProductName: qf.name,
		Page:        qf.page,
		PageSize:    qf.pageSize,
	}
	if fs.Changed("min-price") {
		f.MinPrice = &qf.minPrice
	}
	if fs.Changed("max-price") {
		f.MaxPrice = &qf.maxPrice
	}
	if fs.Changed("min-stock") {
		f.MinStock = &qf.minStock
	}
	if fs.Changed("max-stock") {
		f.MaxStock = &qf.maxStock
	}

	var err error
	if f.OrderBy, err = catalog.ParseSortField(qf.orderBy); err != nil {
		return f, err
	}
	if f.Direction, err = catalog.ParseDirection(qf.direction); err != nil {
		return f, err
	}
	if qf.cursor != "" {
		c, err := filter.DecodeCursor(qf.cursor)
		if err != nil {
			return f, err
		}
		f = c.Apply(f)
	}
	return f, nil
}

type productOutput struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Description string  `json:"description,omitempty"`
}

type pageOutput struct {
	Products []productOutput `json:"products"`
	Cursor   string          `json:"cursor,omitempty"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

func printPage(w io.Writer, page filter.Page) error {
	out := pageOutput{
		Products: make([]productOutput, len(page.Products)),
		Cursor:   page.Cursor,
		Total:    page.Total,
		Page:     page.Number,
		PageSize: page.Size,
	}
	for i, p := range page.Products {
		out.Products[i] = productOutput{
			SKU:         p.SKU,
			Name:        p.Name,
			Category:    p.Category,
			Brand:       p.Brand,
			Price:       p.Price,
			Stock:       p.Stock,
			Description: p.Description,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}
