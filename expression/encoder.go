package expression

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// decimalNumber é a forma textual aceita para N: sem NaN, Inf, hexadecimal,
// sinal "+" ou separadores.
var decimalNumber = regexp.MustCompile(`^-?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?$`)

type missing struct{}

// Missing marca um valor ausente. O compilador o ignora e Encode o
// rejeita.
var Missing = missing{}

// Encode converte um valor em tempo de execução no AttributeValue correspondente.
func Encode(v any) (types.AttributeValue, error) {
	switch val := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case missing:
		return nil, ErrMissingValue
	case types.AttributeValue:
		return val, nil
	case string:
		return &types.AttributeValueMemberS{Value: val}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: val}, nil
	case int:
		return number(strconv.FormatInt(int64(val), 10)), nil
	case int8:
		return number(strconv.FormatInt(int64(val), 10)), nil
	case int16:
		return number(strconv.FormatInt(int64(val), 10)), nil
	case int32:
		return number(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return number(strconv.FormatInt(val, 10)), nil
	case uint:
		return number(strconv.FormatUint(uint64(val), 10)), nil
	case uint8:
		return number(strconv.FormatUint(uint64(val), 10)), nil
	case uint16:
		return number(strconv.FormatUint(uint64(val), 10)), nil
	case uint32:
		return number(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return number(strconv.FormatUint(val, 10)), nil
	case float32:
		return encodeFloat(float64(val), 32)
	case float64:
		return encodeFloat(val, 64)
	case json.Number:
		return encodeNumberText(string(val))
	case []any:
		return encodeList(len(val), func(i int) any { return val[i] })
	case []string:
		return encodeList(len(val), func(i int) any { return val[i] })
	case []int:
		return encodeList(len(val), func(i int) any { return val[i] })
	case []int64:
		return encodeList(len(val), func(i int) any { return val[i] })
	case []float64:
		return encodeList(len(val), func(i int) any { return val[i] })
	case []bool:
		return encodeList(len(val), func(i int) any { return val[i] })
	case map[string]any:
		return encodeMap(val)
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return encodeMap(m)
	case *Params:
		out, err := EncodeMap(val)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: out}, nil
	default:
		return nil, &UnsupportedTypeError{Type: reflect.TypeOf(v)}
	}
}

// EncodeMap codifica todos os valores de params. O resultado pode ser usado
// direto como item ou chave.
func EncodeMap(params *Params) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, params.Len())
	var err error
	params.Each(func(name string, v any) bool {
		var av types.AttributeValue
		av, err = Encode(v)
		if err != nil {
			err = wrapPath(name, err)
			return false
		}
		out[name] = av
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func number(s string) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: s}
}

func encodeFloat(f float64, bitSize int) (types.AttributeValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &InvalidNumberError{Value: f}
	}
	return number(strconv.FormatFloat(f, 'f', -1, bitSize)), nil
}

func encodeNumberText(text string) (types.AttributeValue, error) {
	if !decimalNumber.MatchString(text) {
		return nil, &InvalidNumberError{Text: text}
	}
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return nil, fmt.Errorf("expression: invalid number %q: %w", text, err)
	}
	return number(text), nil
}

func encodeList(n int, at func(int) any) (types.AttributeValue, error) {
	list := make([]types.AttributeValue, 0, n)
	for i := 0; i < n; i++ {
		av, err := Encode(at(i))
		if err != nil {
			return nil, wrapPath("["+strconv.Itoa(i)+"]", err)
		}
		list = append(list, av)
	}
	return &types.AttributeValueMemberL{Value: list}, nil
}

// encodeMap percorre as chaves ordenadas para que a entrada com falha seja
// sempre a mesma.
func encodeMap(m map[string]any) (types.AttributeValue, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]types.AttributeValue, len(m))
	for _, k := range keys {
		av, err := Encode(m[k])
		if err != nil {
			return nil, wrapPath(k, err)
		}
		out[k] = av
	}
	return &types.AttributeValueMemberM{Value: out}, nil
}

func wrapPath(segment string, err error) error {
	if inner, ok := err.(*EncodeError); ok {
		sep := "."
		if len(inner.Path) > 0 && inner.Path[0] == '[' {
			sep = ""
		}
		return &EncodeError{Path: segment + sep + inner.Path, Err: inner.Err}
	}
	return &EncodeError{Path: segment, Err: err}
}
