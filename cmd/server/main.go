package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/raywall/dynamodb-quick-service/pkg/cache"
	"github.com/raywall/dynamodb-quick-service/pkg/config"
	"github.com/raywall/dynamodb-quick-service/pkg/logger"
	"github.com/raywall/dynamodb-quick-service/pkg/observability"
	"github.com/raywall/dynamodb-quick-service/pkg/transport"
)

var (
	configPath string
	envPrefix  string
	// Variáveis injetáveis para mocking
	serverStarter   = transport.StartHTTPServer
	lambdaStarter   = lambda.Start
	newDynamoClient = dynamoClient
	newCache        = redisCache
)

func init() {
	configPath = os.Getenv("CONFIG_FILE_PATH")
	envPrefix = os.Getenv("CONFIG_ENV_PREFIX")
}

func main() {
	if configPath == "" {
		log.Fatalln("FATAL: CONFIG_FILE_PATH não definido")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configPath); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.NewLoader(config.WithEnvPrefix(envPrefix)).Load(ctx, cfgPath)
	if err != nil {
		return err
	}

	lg := logger.Configure(cfg.Service.Logging, cfg.Service.Name)
	ctx = lg.WithContext(ctx)

	provider, err := observability.SetupMetrics(cfg.Service.Metrics)
	if err != nil {
		return err
	}
	if c, ok := provider.(io.Closer); ok {
		defer c.Close()
	}

	client, err := newDynamoClient(ctx, cfg.AWS)
	if err != nil {
		return err
	}

	opts := []dyndb.Option{
		dyndb.WithMetrics(provider),
		dyndb.WithRequestOptions(cfg.Expression.RequestOptions()...),
	}
	if cfg.Cache.Enabled {
		itemCache, closer, err := newCache(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer closer.Close()
		opts = append(opts, dyndb.WithCache(itemCache, cfg.Cache.GetTTL()))
		lg.Info().Str("addr", cfg.Cache.Addr).Msg("cache redis habilitado")
	}

	store := dyndb.New(client, cfg.Table, opts...)

	srv := &transport.Server{
		Dispatcher: transport.NewDispatcher(store, cfg.Service.GetTimeout()),
		Service:    cfg.Service,
		Metrics:    provider,
		Logger:     lg,
	}

	lg.Info().
		Str("table", cfg.Table.TableName).
		Str("runtime", cfg.Service.Runtime).
		Msg("serviço inicializado")

	switch cfg.Service.Runtime {
	case "local", "ec2", "ecs", "eks":
		return serverStarter(ctx, srv)
	case "lambda":
		lambdaStarter(transport.NewLambdaHandler(srv).Handle)
		return nil
	default:
		return fmt.Errorf("runtime desconhecido: %s", cfg.Service.Runtime)
	}
}

func dynamoClient(ctx context.Context, cfg config.AWSConf) (dyndb.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar configuração AWS: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

func redisCache(ctx context.Context, cfg config.CacheConf) (dyndb.ItemCache, io.Closer, error) {
	c, client, err := cache.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return c, client, nil
}
