package request

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdkexpr "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynamodb-quick-service/expression"
)

// Key é uma chave primária já codificada.
type Key = map[string]types.AttributeValue

// ScanParams descreve um Scan além do nome da tabela.
type ScanParams struct {
	Filters    *expression.Params
	Projection []string
	Limit      int32
	StartKey   Key
	Index      string
}

// QueryParams descreve uma Query além do nome da tabela. Conditions deve
// conter a igualdade da partition key e, opcionalmente, da sort key.
type QueryParams struct {
	Index      string
	Conditions *expression.Params
	Filters    *expression.Params
	Projection []string
	Limit      int32
	StartKey   Key
	// EventuallyConsistent desliga a leitura fortemente consistente. Índices
	// secundários globais só aceitam leitura eventualmente consistente.
	EventuallyConsistent bool
}

// Put codifica todos os valores de item em um PutItemInput.
func Put(table string, item *expression.Params) (*dynamodb.PutItemInput, error) {
	if table == "" {
		return nil, contract("put", ErrMissingTable)
	}
	if item.Len() == 0 {
		return nil, contract("put", ErrEmptyParams)
	}

	av, err := expression.EncodeMap(item)
	if err != nil {
		return nil, fmt.Errorf("request: put: %w", err)
	}
	return &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	}, nil
}

// ConditionalPut é um Put protegido por attribute_not_exists em hashKey; a
// escrita falha com ConditionalCheckFailedException se o item já existir.
func ConditionalPut(table string, item *expression.Params, hashKey string) (*dynamodb.PutItemInput, error) {
	in, err := Put(table, item)
	if err != nil {
		return nil, err
	}
	if hashKey == "" {
		return nil, contract("put", ErrMissingKey)
	}

	built, err := sdkexpr.NewBuilder().
		WithCondition(sdkexpr.AttributeNotExists(sdkexpr.Name(hashKey))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("request: put condition: %w", err)
	}
	in.ConditionExpression = built.Condition()
	in.ExpressionAttributeNames = built.Names()
	in.ExpressionAttributeValues = built.Values()
	return in, nil
}

// Get monta um GetItemInput. A chave é usada como recebida.
func Get(table string, key Key) (*dynamodb.GetItemInput, error) {
	if err := tableAndKey("get", table, key); err != nil {
		return nil, err
	}
	return &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       key,
	}, nil
}

// Delete monta um DeleteItemInput. A chave é usada como recebida.
func Delete(table string, key Key) (*dynamodb.DeleteItemInput, error) {
	if err := tableAndKey("delete", table, key); err != nil {
		return nil, err
	}
	return &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       key,
	}, nil
}

// Scan monta um ScanInput com filtro e projeção opcionais.
func Scan(table string, in ScanParams, opts ...Option) (*dynamodb.ScanInput, error) {
	if table == "" {
		return nil, contract("scan", ErrMissingTable)
	}
	o := defaults(opts)

	limit := in.Limit
	if limit <= 0 {
		limit = o.ScanLimit
	}

	aliases := o.aliases(expression.Positional)
	filter, err := expression.Filter(in.Filters, expression.WithJoiner(o.Joiner), expression.WithAliases(aliases))
	if err != nil {
		return nil, fmt.Errorf("request: scan: %w", err)
	}
	projection, err := expression.Projection(in.Projection, in.Filters, expression.WithAliases(aliases))
	if err != nil {
		return nil, fmt.Errorf("request: scan: %w", err)
	}

	out := &dynamodb.ScanInput{
		TableName:                 aws.String(table),
		Limit:                     aws.Int32(limit),
		Select:                    types.SelectAllAttributes,
		ExclusiveStartKey:         in.StartKey,
		FilterExpression:          optional(filter.Expression),
		ProjectionExpression:      optional(projection.Expression),
		ExpressionAttributeNames:  aliases.Names(),
		ExpressionAttributeValues: aliases.Values(),
	}
	if in.Index != "" {
		out.IndexName = aws.String(in.Index)
	}
	if !projection.Empty() {
		out.Select = types.SelectSpecificAttributes
	}
	return out, nil
}

// Query monta um QueryInput a partir de condições de igualdade na chave. A
// chave inicial é repassada sem alteração.
func Query(table string, in QueryParams, opts ...Option) (*dynamodb.QueryInput, error) {
	if table == "" {
		return nil, contract("query", ErrMissingTable)
	}
	if in.Conditions.Len() == 0 {
		return nil, contract("query", ErrEmptyParams)
	}
	o := defaults(opts)

	aliases := o.aliases(expression.Compact)
	keyCond, err := expression.KeyCondition(in.Conditions, expression.WithAliases(aliases))
	if err != nil {
		return nil, fmt.Errorf("request: query: %w", err)
	}
	filter, err := expression.Filter(in.Filters, expression.WithJoiner(o.Joiner), expression.WithAliases(aliases))
	if err != nil {
		return nil, fmt.Errorf("request: query: %w", err)
	}
	projection, err := expression.Projection(in.Projection, in.Filters, expression.WithAliases(aliases))
	if err != nil {
		return nil, fmt.Errorf("request: query: %w", err)
	}

	out := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		ConsistentRead:            aws.Bool(!in.EventuallyConsistent),
		KeyConditionExpression:    aws.String(keyCond.Expression),
		FilterExpression:          optional(filter.Expression),
		ProjectionExpression:      optional(projection.Expression),
		ExclusiveStartKey:         in.StartKey,
		ExpressionAttributeNames:  aliases.Names(),
		ExpressionAttributeValues: aliases.Values(),
	}
	if in.Index != "" {
		out.IndexName = aws.String(in.Index)
	}
	if in.Limit > 0 {
		out.Limit = aws.Int32(in.Limit)
	}
	return out, nil
}

// Update monta um UpdateItemInput que aplica SET em cada atributo e retorna
// o item novo completo. Atributos da chave ficam de fora, pois não podem ser
// atualizados.
func Update(table string, key Key, attrs *expression.Params, opts ...Option) (*dynamodb.UpdateItemInput, error) {
	if err := tableAndKey("update", table, key); err != nil {
		return nil, err
	}

	set := expression.NewParams()
	attrs.Each(func(name string, v any) bool {
		if _, isKey := key[name]; !isKey {
			set.Set(name, v)
		}
		return true
	})
	if set.Len() == 0 {
		return nil, contract("update", ErrEmptyParams)
	}

	o := defaults(opts)
	aliases := o.aliases(expression.Positional)
	upd, err := expression.Update(set, expression.WithAliases(aliases))
	if err != nil {
		return nil, fmt.Errorf("request: update: %w", err)
	}

	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		ReturnValues:              types.ReturnValueAllNew,
		UpdateExpression:          aws.String(upd.Expression),
		ExpressionAttributeNames:  aliases.Names(),
		ExpressionAttributeValues: aliases.Values(),
	}, nil
}

func tableAndKey(op, table string, key Key) error {
	if table == "" {
		return contract(op, ErrMissingTable)
	}
	if len(key) == 0 {
		return contract(op, ErrMissingKey)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
