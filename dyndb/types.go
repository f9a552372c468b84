package dyndb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/raywall/dynamodb-quick-service/expression"
)

// Client é o subconjunto de *dynamodb.Client usado pelo Store.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Item é um item do DynamoDB já decodificado.
type Item = map[string]any

// Index descreve um índice secundário da tabela.
type Index struct {
	Name    string `yaml:"name" validate:"required"`
	HashKey string `yaml:"hash_key" validate:"required"`
	SortKey string `yaml:"sort_key"`
	// Índices globais só aceitam consultas eventualmente consistentes.
	Global bool `yaml:"global"`
}

// TableConfig: configuração da tabela
type TableConfig struct {
	TableName string  `yaml:"name" env:"DYNAMODB_TABLE_NAME" validate:"required,tablename"`
	HashKey   string  `yaml:"hash_key" env:"DYNAMODB_HASH_KEY" envDefault:"id" validate:"required"`
	SortKey   string  `yaml:"sort_key" env:"DYNAMODB_SORT_KEY"` // opcional
	Indexes   []Index `yaml:"indexes" validate:"dive"`
}

func (c TableConfig) index(name string) (Index, bool) {
	for _, idx := range c.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}

// Request é a requisição simplificada aceita por todas as operações do Store.
// Table vazio usa a tabela configurada.
type Request struct {
	Table      string             `json:"table,omitempty" validate:"omitempty,tablename"`
	Key        *expression.Params `json:"key,omitempty"`
	Item       *expression.Params `json:"item,omitempty"`
	Conditions *expression.Params `json:"conditions,omitempty"`
	Filters    *expression.Params `json:"filters,omitempty"`
	Projection []string           `json:"projection,omitempty" validate:"dive,attrname"`
	Index      string             `json:"index,omitempty" validate:"omitempty,min=3,max=255"`
	Limit      int32              `json:"limit,omitempty" validate:"gte=0,lte=1000"`
	Token      string             `json:"token,omitempty"`
	Joiner     string             `json:"joiner,omitempty" validate:"omitempty,oneof=And and AND Or or OR"`
}

// Page é uma página de resultados de Query ou Scan. Token é vazio na última página.
type Page struct {
	Items []Item `json:"items"`
	Count int    `json:"count"`
	Token string `json:"token,omitempty"`
}

// Operations é a superfície CRUD por requisição, implementada por *Store e
// MockStore.
type Operations interface {
	Get(ctx context.Context, r Request) (Item, error)
	Create(ctx context.Context, r Request) (Item, error)
	Update(ctx context.Context, r Request) (Item, error)
	Delete(ctx context.Context, r Request) error
	Query(ctx context.Context, r Request) (Page, error)
	Scan(ctx context.Context, r Request) (Page, error)
}

var _ Operations = (*Store)(nil)
