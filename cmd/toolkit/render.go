package main

import (
	"encoding/base64"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// view é a forma impressa de uma requisição montada, com os valores no
// formato JSON do DynamoDB ({"S": "..."}, {"N": "..."}).
type view struct {
	Operation              string            `json:"operation"`
	TableName              string            `json:"TableName"`
	IndexName              string            `json:"IndexName,omitempty"`
	Key                    map[string]any    `json:"Key,omitempty"`
	Item                   map[string]any    `json:"Item,omitempty"`
	KeyConditionExpression string            `json:"KeyConditionExpression,omitempty"`
	FilterExpression       string            `json:"FilterExpression,omitempty"`
	ProjectionExpression   string            `json:"ProjectionExpression,omitempty"`
	UpdateExpression       string            `json:"UpdateExpression,omitempty"`
	ConditionExpression    string            `json:"ConditionExpression,omitempty"`
	Names                  map[string]string `json:"ExpressionAttributeNames,omitempty"`
	Values                 map[string]any    `json:"ExpressionAttributeValues,omitempty"`
	Limit                  *int32            `json:"Limit,omitempty"`
	Select                 string            `json:"Select,omitempty"`
	ConsistentRead         *bool             `json:"ConsistentRead,omitempty"`
	ReturnValues           string            `json:"ReturnValues,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func renderMap(m map[string]types.AttributeValue) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = render(v)
	}
	return out
}

func render(av types.AttributeValue) any {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return map[string]any{"S": v.Value}
	case *types.AttributeValueMemberN:
		return map[string]any{"N": v.Value}
	case *types.AttributeValueMemberBOOL:
		return map[string]any{"BOOL": v.Value}
	case *types.AttributeValueMemberNULL:
		return map[string]any{"NULL": v.Value}
	case *types.AttributeValueMemberB:
		return map[string]any{"B": base64.StdEncoding.EncodeToString(v.Value)}
	case *types.AttributeValueMemberSS:
		return map[string]any{"SS": v.Value}
	case *types.AttributeValueMemberNS:
		return map[string]any{"NS": v.Value}
	case *types.AttributeValueMemberL:
		list := make([]any, len(v.Value))
		for i, e := range v.Value {
			list[i] = render(e)
		}
		return map[string]any{"L": list}
	case *types.AttributeValueMemberM:
		m := renderMap(v.Value)
		if m == nil {
			m = map[string]any{}
		}
		return map[string]any{"M": m}
	}
	return nil
}
