// Package config loads the catalog service configuration: built-in
// defaults, then an optional catalog.yaml, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/acksell/catalog/productstore"
	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the config file searched for from the working directory up.
const FileName = "catalog.yaml"

const (
	BackendDynamoDB = "dynamodb"
	BackendBadger   = "badger"
)

type Config struct {
	Environment string `yaml:"environment" env:"ENVIRONMENT"`
	LogLevel    string `yaml:"logLevel" env:"LOG_LEVEL"`
	HTTPPort    int    `yaml:"httpPort" env:"CATALOG_HTTP_PORT"`

	// Backend selects the product store: dynamodb or badger.
	Backend string `yaml:"backend" env:"CATALOG_BACKEND"`

	TableName          string `yaml:"tableName" env:"TABLE_NAME"`
	AWSRegion          string `yaml:"awsRegion" env:"AWS_REGION"`
	DynamoDBEndpoint   string `yaml:"dynamodbEndpoint" env:"DYNAMODB_ENDPOINT"`
	DynamoDBMaxRetries int    `yaml:"dynamodbMaxAttempts" env:"DYNAMODB_MAX_ATTEMPTS"`
	VerifyCredentials  bool   `yaml:"verifyCredentials" env:"AWS_VERIFY_CREDENTIALS"`

	// BadgerPath is the badger data directory. Empty runs in memory.
	BadgerPath string `yaml:"badgerPath" env:"BADGER_PATH"`

	HydrateBatchSize   int    `yaml:"hydrateBatchSize" env:"HYDRATE_BATCH_SIZE"`
	HydrateConcurrency int    `yaml:"hydrateConcurrency" env:"HYDRATE_CONCURRENCY"`
	SortLocale         string `yaml:"sortLocale" env:"SORT_LOCALE"`
	DefaultPageSize    int    `yaml:"defaultPageSize" env:"DEFAULT_PAGE_SIZE"`
	MaxPageSize        int    `yaml:"maxPageSize" env:"MAX_PAGE_SIZE"`
}

func Default() Config {
	return Config{
		Environment:        "development",
		LogLevel:           "info",
		HTTPPort:           8080,
		Backend:            BackendDynamoDB,
		TableName:          productstore.DefaultTableName,
		AWSRegion:          "us-east-1",
		DynamoDBMaxRetries: 3,
		HydrateBatchSize:   productstore.MaxBatchGet,
		HydrateConcurrency: 8,
		SortLocale:         "en",
		DefaultPageSize:    20,
		MaxPageSize:        100,
	}
}

// Load builds the configuration. An empty path searches for FileName from
// the working directory upwards; a missing file is not an error then.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.Backend {
	case BackendDynamoDB:
		if c.TableName == "" {
			return fmt.Errorf("TABLE_NAME is required for the dynamodb backend")
		}
		if c.DynamoDBMaxRetries < 1 {
			return fmt.Errorf("DYNAMODB_MAX_ATTEMPTS must be at least 1, got %d", c.DynamoDBMaxRetries)
		}
	case BackendBadger:
	default:
		return fmt.Errorf("unknown backend %q, want %s or %s", c.Backend, BackendDynamoDB, BackendBadger)
	}
	if c.HydrateBatchSize < 1 || c.HydrateBatchSize > productstore.MaxBatchGet {
		return fmt.Errorf("HYDRATE_BATCH_SIZE must be between 1 and %d, got %d", productstore.MaxBatchGet, c.HydrateBatchSize)
	}
	if c.HydrateConcurrency < 1 {
		return fmt.Errorf("HYDRATE_CONCURRENCY must be at least 1, got %d", c.HydrateConcurrency)
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be between 1 and MAX_PAGE_SIZE (%d), got %d", c.MaxPageSize, c.DefaultPageSize)
	}
	return nil
}

// findConfigFile walks up from the working directory looking for FileName.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
