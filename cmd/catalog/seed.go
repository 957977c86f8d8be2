package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// seedFile is the layout of a seed file:
//
//	products:
//	  - sku: A1
//	    name: Hammer
//	    category: Tools
//	    brand: Acme
//	    price: 12.5
//	    stock: 4
type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	SKU         string  `yaml:"sku"`
	Name        string  `yaml:"name"`
	Category    string  `yaml:"category"`
	Brand       string  `yaml:"brand"`
	Price       float64 `yaml:"price"`
	Stock       int     `yaml:"stock"`
	Description string  `yaml:"description"`
}

type creator interface {
	Create(ctx context.Context, in service.CreateInput) (catalog.Product, error)
}

func newSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Create the products listed in a YAML file",
		Long: `Create every product listed in a YAML seed file. Products whose SKU
already exists are skipped. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open seed file: %w", err)
				}
				defer f.Close()
				r = f
			}
			products, err := readSeedFile(r)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			created, skipped, err := seed(cmd.Context(), a.service, products, a.logger)
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", created, skipped)
			return err
		},
	}
}

func readSeedFile(r io.Reader) ([]service.CreateInput, error) {
	var sf seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	inputs := make([]service.CreateInput, len(sf.Products))
	for i, p := range sf.Products {
		inputs[i] = service.CreateInput(p)
	}
	return inputs, nil
}

// seed creates products in order and stops at the first failure other than
// an existing SKU.
func seed(ctx context.Context, svc creator, products []service.CreateInput, log *slog.Logger) (created, skipped int, err error) {
	for _, in := range products {
		_, err := svc.Create(ctx, in)
		switch {
		case err == nil:
			created++
		case errors.Is(err, catalog.ErrAlreadyExists):
			log.InfoContext(ctx, "product exists, skipping", slog.String("sku", in.SKU))
			skipped++
		default:
			return created, skipped, fmt.Errorf("seed %s: %w", in.SKU, err)
		}
	}
	return created, skipped, nil
}
