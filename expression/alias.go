package expression

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Numbering define como os placeholders de valor são diferenciados.
type Numbering int

const (
	// Compact só acrescenta o índice da posição quando o placeholder simples
	// (":" + primeira letra) já está em uso: a, b, a -> :a, :b, :a2.
	Compact Numbering = iota
	// Positional sempre acrescenta o índice da posição: a, b -> :a0, :b1.
	Positional
)

// Aliases guarda os ExpressionAttributeNames e ExpressionAttributeValues
// gerados ao compilar uma expressão. Um Aliases não deve ser compartilhado
// entre compilações.
type Aliases struct {
	numbering Numbering
	omitEmpty bool
	position  int
	names     map[string]string
	values    map[string]types.AttributeValue
}

// NewAliases retorna tabelas de alias vazias. Com omitEmpty, tabelas vazias
// são devolvidas como nil.
func NewAliases(numbering Numbering, omitEmpty bool) *Aliases {
	return &Aliases{
		numbering: numbering,
		omitEmpty: omitEmpty,
		names:     map[string]string{},
		values:    map[string]types.AttributeValue{},
	}
}

// Name retorna o token que referencia name na expressão: "#name" para
// palavras reservadas, o próprio nome nos demais casos.
func (a *Aliases) Name(name string) string {
	if !IsReserved(name) {
		return name
	}
	return a.ForceName(name)
}

// ForceName cria o alias de name mesmo que não seja reservado.
func (a *Aliases) ForceName(name string) string {
	token := "#" + name
	a.names[token] = name
	return token
}

// Value associa av a um novo placeholder derivado de name e retorna o
// placeholder.
func (a *Aliases) Value(name string, av types.AttributeValue) string {
	idx := a.position
	a.position++

	base := ":" + initial(name)
	token := base
	if a.numbering == Positional {
		token = base + strconv.Itoa(idx)
	}
	for a.taken(token) {
		token = base + strconv.Itoa(idx)
		idx++
	}
	a.values[token] = av
	return token
}

// Names retorna a tabela de alias de nomes.
func (a *Aliases) Names() map[string]string {
	if len(a.names) == 0 && a.omitEmpty {
		return nil
	}
	out := make(map[string]string, len(a.names))
	for k, v := range a.names {
		out[k] = v
	}
	return out
}

// Values retorna a tabela de alias de valores.
func (a *Aliases) Values() map[string]types.AttributeValue {
	if len(a.values) == 0 && a.omitEmpty {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

func (a *Aliases) taken(token string) bool {
	_, ok := a.values[token]
	return ok
}

// initial é a primeira runa de name em minúscula, ou "v" quando essa runa
// não pode aparecer em um placeholder.
func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	r = unicode.ToLower(r)
	if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
		return string(r)
	}
	return "v"
}
