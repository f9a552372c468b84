package easyrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/raywall/dynamodb-quick-service/expression"
)

// Repository converte entre T e as dyndb.Operations.
// Seus métodos são internos ao pacote, incentivando o uso via Service.
type Repository[T any] struct {
	Config dyndb.TableConfig
	Ops    dyndb.Operations
}

func NewRepository[T any](ops dyndb.Operations, cfg dyndb.TableConfig) *Repository[T] {
	return &Repository[T]{Config: cfg, Ops: ops}
}

func (r *Repository[T]) key(pk, sk any) *expression.Params {
	key := expression.NewParams().Set(r.Config.HashKey, pk)
	if r.Config.SortKey != "" {
		key.Set(r.Config.SortKey, sk)
	}
	return key
}

func (r *Repository[T]) get(ctx context.Context, pk, sk any) (*T, error) {
	item, err := r.Ops.Get(ctx, dyndb.Request{Key: r.key(pk, sk)})
	if err != nil {
		return nil, err
	}
	return fromItem[T](item)
}

func (r *Repository[T]) list(ctx context.Context, token string, limit int32) ([]T, string, error) {
	page, err := r.Ops.Scan(ctx, dyndb.Request{Token: token, Limit: limit})
	if err != nil {
		return nil, "", err
	}
	return fromPage[T](page)
}

func (r *Repository[T]) query(ctx context.Context, q dyndb.Request) ([]T, string, error) {
	page, err := r.Ops.Query(ctx, q)
	if err != nil {
		return nil, "", err
	}
	return fromPage[T](page)
}

func (r *Repository[T]) create(ctx context.Context, item *T) (*T, error) {
	params, err := toParams(item)
	if err != nil {
		return nil, err
	}
	stored, err := r.Ops.Create(ctx, dyndb.Request{Item: params})
	if err != nil {
		return nil, err
	}
	return fromItem[T](stored)
}

func (r *Repository[T]) update(ctx context.Context, item *T) (*T, error) {
	params, err := toParams(item)
	if err != nil {
		return nil, err
	}
	stored, err := r.Ops.Update(ctx, dyndb.Request{Item: params})
	if err != nil {
		return nil, err
	}
	return fromItem[T](stored)
}

func (r *Repository[T]) delete(ctx context.Context, pk, sk any) error {
	return r.Ops.Delete(ctx, dyndb.Request{Key: r.key(pk, sk)})
}

// keyOf extrai os valores de chave de item usando a codificação dynamodbav.
func (r *Repository[T]) keyOf(item *T) (pk, sk any, err error) {
	params, err := toParams(item)
	if err != nil {
		return nil, nil, err
	}
	pk, _ = params.Get(r.Config.HashKey)
	if r.Config.SortKey != "" {
		sk, _ = params.Get(r.Config.SortKey)
	}
	return pk, sk, nil
}

// toParams codifica item com attributevalue (respeitando as tags dynamodbav).
// Escalares viram valores Go simples para que checagens de chave e chaves de
// cache vejam o mesmo formato das requisições JSON; o resto passa inalterado.
func toParams[T any](item *T) (*expression.Params, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("easyrepo: marshal %T: %w", item, err)
	}
	m := make(map[string]any, len(av))
	for k, v := range av {
		switch v := v.(type) {
		case *types.AttributeValueMemberS:
			m[k] = v.Value
		case *types.AttributeValueMemberN:
			m[k] = json.Number(v.Value)
		case *types.AttributeValueMemberBOOL:
			m[k] = v.Value
		case *types.AttributeValueMemberNULL:
			m[k] = nil
		default:
			m[k] = v
		}
	}
	return expression.FromMap(m), nil
}

// fromItem recodifica um item decodificado e o converte em T.
func fromItem[T any](item dyndb.Item) (*T, error) {
	av, err := expression.Encode(map[string]any(item))
	if err != nil {
		return nil, fmt.Errorf("easyrepo: encode item: %w", err)
	}
	m, _ := av.(*types.AttributeValueMemberM)
	if m == nil {
		return nil, fmt.Errorf("easyrepo: item is not a map")
	}
	var out T
	if err := attributevalue.UnmarshalMap(m.Value, &out); err != nil {
		return nil, fmt.Errorf("easyrepo: unmarshal %T: %w", out, err)
	}
	return &out, nil
}

func fromPage[T any](page dyndb.Page) ([]T, string, error) {
	out := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		v, err := fromItem[T](item)
		if err != nil {
			return nil, "", err
		}
		out = append(out, *v)
	}
	return out, page.Token, nil
}
