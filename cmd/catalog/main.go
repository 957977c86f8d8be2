// catalog runs the product catalog service and its operator tooling.
//
// # Commands
//
//	catalog serve            Start the HTTP API
//	catalog query [flags]    Run a filtered search and print the page as JSON
//	catalog seed <file>      Create the products listed in a YAML file
//
// Configuration is read from catalog.yaml (searched from the working
// directory upwards) and then from the environment:
//
//	backend: badger          # dynamodb (default) or badger
//	badgerPath: ./data       # empty runs in memory
//	tableName: products
//	httpPort: 8080
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Product catalog with multi-index search",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: catalog.yaml found from the working directory up)")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newQueryCmd(&configPath))
	rootCmd.AddCommand(newSeedCmd(&configPath))

	return rootCmd
}
