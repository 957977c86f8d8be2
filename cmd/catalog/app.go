package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/acksell/catalog/config"
	"github.com/acksell/catalog/filter"
	"github.com/acksell/catalog/logger"
	"github.com/acksell/catalog/metrics"
	"github.com/acksell/catalog/productstore"
	"github.com/acksell/catalog/productstore/badgerstore"
	"github.com/acksell/catalog/productstore/dynamostore"
	"github.com/acksell/catalog/service"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const serviceName = "catalog"

// app holds the components every command shares.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	store   productstore.Store
	engine  *filter.Engine
	service *service.ProductService
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(serviceName, cfg.LogLevel)

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	engine, err := filter.New(store, filter.Options{
		Logger:          log,
		Metrics:         m,
		BatchSize:       cfg.HydrateBatchSize,
		Concurrency:     cfg.HydrateConcurrency,
		Locale:          cfg.SortLocale,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("filter engine: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  log,
		metrics: m,
		store:   store,
		engine:  engine,
		service: service.NewProductService(store, engine, log),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (productstore.Store, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		log.Info("opening badger store", slog.String("path", cfg.BadgerPath), slog.Bool("in_memory", cfg.BadgerPath == ""))
		store, err := badgerstore.New(badgerstore.Options{
			Path:      cfg.BadgerPath,
			InMemory:  cfg.BadgerPath == "",
			TableName: cfg.TableName,
		})
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return store, nil
	default:
		client, err := newDynamoClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		store, err := dynamostore.New(client, cfg.TableName)
		if err != nil {
			return nil, fmt.Errorf("open dynamodb store: %w", err)
		}
		return store, nil
	}
}

func newDynamoClient(ctx context.Context, cfg config.Config, log *slog.Logger) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithRetryMaxAttempts(cfg.DynamoDBMaxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if cfg.VerifyCredentials {
		out, err := sts.NewFromConfig(awsCfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return nil, fmt.Errorf("verify aws credentials: %w", err)
		}
		log.Info("aws credentials verified",
			slog.String("account", aws.ToString(out.Account)),
			slog.String("arn", aws.ToString(out.Arn)),
		)
	}

	log.Info("using dynamodb table",
		slog.String("table", cfg.TableName),
		slog.String("region", cfg.AWSRegion),
		slog.String("endpoint", cfg.DynamoDBEndpoint),
	)
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}
