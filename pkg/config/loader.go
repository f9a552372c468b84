package config

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/dynamodb-quick-service/envloader"
	"github.com/raywall/dynamodb-quick-service/expression"
	"github.com/raywall/dynamodb-quick-service/pkg/config/injector"
	"github.com/raywall/dynamodb-quick-service/request"
	"gopkg.in/yaml.v3"
)

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Loader suporta múltiplas fontes de configuração:
//
//	config.yaml | file://config.yaml
//	s3://bucket/path/config.yaml
//	dynamodb://tabela/chave?pk=id&col=config
type Loader struct {
	validator *ConfigValidator
	injector  *injector.Injector
	s3        S3Downloader
	dynamo    DynamoGetter
	envOpts   []envloader.Option
	awsCfg    func(ctx context.Context) (aws.Config, error)
}

type LoaderOption func(*Loader)

func WithS3(c S3Downloader) LoaderOption {
	return func(l *Loader) { l.s3 = c }
}

func WithDynamo(c DynamoGetter) LoaderOption {
	return func(l *Loader) { l.dynamo = c }
}

func WithInjector(i *injector.Injector) LoaderOption {
	return func(l *Loader) { l.injector = i }
}

// WithEnvPrefix lê as sobrescritas de ambiente com o prefixo informado
// (ex: "ORDERS_" → ORDERS_DYNAMODB_TABLE_NAME).
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) { l.envOpts = append(l.envOpts, envloader.WithPrefix(prefix)) }
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		validator: NewValidator(),
		awsCfg: func(ctx context.Context) (aws.Config, error) {
			return awsconfig.LoadDefaultConfig(ctx)
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.injector == nil {
		l.injector = injector.New()
	}
	return l
}

// Load é o atalho usado pelos comandos na inicialização.
func Load(ctx context.Context, source string) (*ServiceConfig, error) {
	return NewLoader().Load(ctx, source)
}

// Load detecta o esquema da fonte, carrega e valida a configuração.
func (l *Loader) Load(ctx context.Context, source string) (*ServiceConfig, error) {
	raw, err := l.Read(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("falha leitura config (%s): %w", source, err)
	}
	return l.Parse(ctx, raw)
}

// Read retorna o conteúdo bruto da fonte.
func (l *Loader) Read(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "s3://"):
		if l.s3 == nil {
			cfg, err := l.awsCfg(ctx)
			if err != nil {
				return nil, err
			}
			l.s3 = s3.NewFromConfig(cfg)
		}
		return l.fromS3(ctx, source)

	case strings.HasPrefix(source, "dynamodb://"):
		if l.dynamo == nil {
			cfg, err := l.awsCfg(ctx)
			if err != nil {
				return nil, err
			}
			l.dynamo = dynamodb.NewFromConfig(cfg)
		}
		return l.fromDynamoDB(ctx, source)
	}

	return os.ReadFile(strings.TrimPrefix(source, "file://"))
}

func (l *Loader) fromS3(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, fmt.Errorf("URL S3 inválida: %s", uri)
	}

	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (l *Loader) fromDynamoDB(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	table := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	col := u.Query().Get("col")
	if col == "" {
		col = "config" // Coluna padrão onde o YAML está salvo
	}
	pk := u.Query().Get("pk")
	if pk == "" {
		pk = "id"
	}

	key, err := expression.EncodeMap(expression.NewParams().Set(pk, pkValue))
	if err != nil {
		return nil, err
	}
	in, err := request.Get(table, key)
	if err != nil {
		return nil, err
	}

	out, err := l.dynamo.GetItem(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("item não encontrado no DynamoDB")
	}

	var item map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, err
	}
	content, ok := item[col].(string)
	if !ok || content == "" {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", col)
	}
	return []byte(content), nil
}

// Parse aplica, em ordem: YAML, injeção ${...}, variáveis de ambiente e validação.
func (l *Loader) Parse(ctx context.Context, data []byte) (*ServiceConfig, error) {
	var cfg ServiceConfig

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("YAML malformado: %w", err)
	}

	if err := l.injector.Inject(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("falha na injeção de variáveis: %w", err)
	}

	if err := envloader.Load(&cfg, l.envOpts...); err != nil {
		return nil, fmt.Errorf("falha ao aplicar variáveis de ambiente: %w", err)
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validação da configuração falhou: %w", err)
	}

	return &cfg, nil
}
