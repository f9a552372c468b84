// Package validate reúne as checagens de entrada feitas antes de compilar as
// requisições: strings não vazias, faixas numéricas, nomes de tabela e de
// atributo. Também valida structs com go-playground/validator, com essas
// regras registradas como "tablename" e "attrname".
package validate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	MinTableName     = 3
	MaxTableName     = 255
	MaxAttributeName = 65535
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// FieldError descreve uma regra que falhou.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("field '%s' failed on rule '%s=%s'", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("field '%s' failed on rule '%s'", e.Field, e.Rule)
}

// Errors agrega as falhas da validação de uma struct.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return "validation failed:\n- " + strings.Join(msgs, "\n- ")
}

var (
	once     sync.Once
	instance *validator.Validate
)

// New retorna um validator com as regras do pacote registradas.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("tablename", func(fl validator.FieldLevel) bool {
		return TableName(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("attrname", func(fl validator.FieldLevel) bool {
		return AttributeName(fl.Field().String()) == nil
	})
	return v
}

func shared() *validator.Validate {
	once.Do(func() { instance = New() })
	return instance
}

// Struct valida s conforme suas tags `validate`.
func Struct(ctx context.Context, s any) error {
	err := shared().StructCtx(ctx, s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Namespace(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// NonEmpty falha quando value é vazio ou só tem espaços.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return FieldError{Field: field, Rule: "required"}
	}
	return nil
}

// NumberRange falha quando value está fora de [min, max].
func NumberRange(field string, value, min, max float64) error {
	if value < min {
		return FieldError{Field: field, Rule: "gte", Param: fmt.Sprint(min)}
	}
	if value > max {
		return FieldError{Field: field, Rule: "lte", Param: fmt.Sprint(max)}
	}
	return nil
}

// TableName aplica as regras de nome de tabela do DynamoDB: de 3 a 255
// caracteres em [a-zA-Z0-9_.-].
func TableName(name string) error {
	if len(name) < MinTableName || len(name) > MaxTableName {
		return FieldError{Field: "table", Rule: "len", Param: fmt.Sprintf("%d-%d", MinTableName, MaxTableName)}
	}
	if !tableNamePattern.MatchString(name) {
		return FieldError{Field: "table", Rule: "charset", Param: "a-zA-Z0-9_.-"}
	}
	return nil
}

// AttributeName verifica se name tem entre 1 e 65535 bytes.
func AttributeName(name string) error {
	if len(name) == 0 || len(name) > MaxAttributeName {
		return FieldError{Field: "attribute", Rule: "len", Param: fmt.Sprintf("1-%d", MaxAttributeName)}
	}
	return nil
}
