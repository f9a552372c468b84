package dyndb

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mr-tron/base58"
)

// keyAttr é a forma JSON do DynamoDB de um atributo de chave. Chaves só
// guardam valores string, número ou binário.
type keyAttr struct {
	S *string `json:"S,omitempty"`
	N *string `json:"N,omitempty"`
	B []byte  `json:"B,omitempty"`
}

// encodeToken transforma um LastEvaluatedKey em token opaco:
// base58(gzip(json(key))).
func encodeToken(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}

	raw := make(map[string]keyAttr, len(key))
	for name, av := range key {
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			raw[name] = keyAttr{S: &v.Value}
		case *types.AttributeValueMemberN:
			raw[name] = keyAttr{N: &v.Value}
		case *types.AttributeValueMemberB:
			raw[name] = keyAttr{B: v.Value}
		default:
			return "", fmt.Errorf("dyndb: key attribute %q has unsupported type %T", name, av)
		}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("dyndb: failed to marshal key: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return "", fmt.Errorf("dyndb: failed to compress key: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("dyndb: failed to compress key: %w", err)
	}
	return base58.Encode(buf.Bytes()), nil
}

// decodeToken desfaz encodeToken. Token vazio gera chave nil.
func decodeToken(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}

	compressed, err := base58.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var raw map[string]keyAttr
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(raw) == 0 {
		return nil, ErrInvalidToken
	}

	key := make(map[string]types.AttributeValue, len(raw))
	for name, attr := range raw {
		switch {
		case attr.S != nil:
			key[name] = &types.AttributeValueMemberS{Value: *attr.S}
		case attr.N != nil:
			key[name] = &types.AttributeValueMemberN{Value: *attr.N}
		case attr.B != nil:
			key[name] = &types.AttributeValueMemberB{Value: attr.B}
		default:
			return nil, fmt.Errorf("%w: attribute %q has no value", ErrInvalidToken, name)
		}
	}
	return key, nil
}
