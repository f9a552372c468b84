package expression

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrMissingValue é retornado quando Missing chega ao encoder.
var ErrMissingValue = errors.New("expression: missing value cannot be encoded")

// UnsupportedTypeError é retornado por Encode para tipos fora do conjunto
// aceito (string, número, bool, nil, lista, mapa).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == nil {
		return "expression: unsupported type <nil>"
	}
	return fmt.Sprintf("expression: unsupported type %s", e.Type)
}

// InvalidNumberError é retornado para floats NaN ou infinitos e para texto
// numérico que não é decimal simples (json.Number "NaN", "Inf", "0x1p4").
type InvalidNumberError struct {
	Value float64
	Text  string
}

func (e *InvalidNumberError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("expression: number %q is not a decimal", e.Text)
	}
	return fmt.Sprintf("expression: number %v has no decimal representation", e.Value)
}

// EncodeError localiza uma falha de codificação dentro de um mapa ou lista.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("expression: encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// ExpressionError é retornado para opções de compilação inválidas.
type ExpressionError struct {
	Kind string
	Msg  string
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("expression: %s: %s", e.Kind, e.Msg)
}
