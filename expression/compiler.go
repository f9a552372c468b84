package expression

import (
	"reflect"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	JoinAnd = "And"
	JoinOr  = "Or"
)

// Compiled é o resultado da compilação de uma expressão.
type Compiled struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

// Empty informa se nada foi gerado.
func (c Compiled) Empty() bool {
	return c.Expression == ""
}

type options struct {
	joiner    string
	omitEmpty bool
	aliases   *Aliases
}

// Option configura uma compilação.
type Option func(*options)

// WithJoiner define a palavra entre as cláusulas do filtro. Só "and" e "or"
// são aceitos, em qualquer caixa; a caixa informada é mantida na saída.
func WithJoiner(joiner string) Option {
	return func(o *options) {
		if joiner != "" {
			o.joiner = joiner
		}
	}
}

// WithEmptyAliases devolve tabelas de alias vazias como mapas vazios, não nil.
func WithEmptyAliases() Option {
	return func(o *options) {
		o.omitEmpty = false
	}
}

// WithAliases compila sobre uma tabela de alias existente, para que várias
// expressões da mesma requisição compartilhem os placeholders.
func WithAliases(a *Aliases) Option {
	return func(o *options) {
		o.aliases = a
	}
}

func buildOptions(numbering Numbering, opts []Option) options {
	o := options{joiner: JoinAnd, omitEmpty: true}
	for _, fn := range opts {
		fn(&o)
	}
	if o.aliases == nil {
		o.aliases = NewAliases(numbering, o.omitEmpty)
	} else {
		o.aliases.numbering = numbering
	}
	return o
}

func (o options) result(clauses []string, sep, prefix string) Compiled {
	out := Compiled{Names: o.aliases.Names(), Values: o.aliases.Values()}
	if len(clauses) > 0 {
		out.Expression = prefix + strings.Join(clauses, sep)
	}
	return out
}

// Filter compila uma expressão de filtro. Cada escalar vira "name = :v".
// Uma lista vira "contains(name, :v)" com :v ligado apenas ao primeiro
// elemento; os demais não são testados. Valores nil e mapas são
// ignorados.
func Filter(params *Params, opts ...Option) (Compiled, error) {
	o := buildOptions(Positional, opts)
	if !validJoiner(o.joiner) {
		return Compiled{}, &ExpressionError{Kind: "filter", Msg: "unsupported joiner " + o.joiner}
	}

	var clauses []string
	var err error
	params.Each(func(name string, v any) bool {
		if skipFilter(v) {
			return true
		}

		first, _, isList := listHead(v)
		if isList {
			var av types.AttributeValue
			if av, err = Encode(first); err != nil {
				err = wrapPath(name, err)
				return false
			}
			clauses = append(clauses, "contains("+o.aliases.Name(name)+", "+o.aliases.Value(name, av)+")")
			return true
		}

		var av types.AttributeValue
		if av, err = Encode(v); err != nil {
			err = wrapPath(name, err)
			return false
		}
		clauses = append(clauses, o.aliases.Name(name)+" = "+o.aliases.Value(name, av))
		return true
	})
	if err != nil {
		return Compiled{}, err
	}
	return o.result(clauses, " "+o.joiner+" ", ""), nil
}

// Projection compila uma expressão de projeção sobre names. Nomes que são
// chaves de filter ficam de fora. Todo nome projetado recebe alias.
func Projection(names []string, filter *Params, opts ...Option) (Compiled, error) {
	o := buildOptions(Positional, opts)

	var tokens []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] || filter.Has(name) {
			continue
		}
		seen[name] = true
		tokens = append(tokens, o.aliases.ForceName(name))
	}
	return o.result(tokens, ", ", ""), nil
}

// KeyCondition compila uma expressão de condição de chave: "pk = :p and sk = :s".
func KeyCondition(params *Params, opts ...Option) (Compiled, error) {
	return assignments(params, Compact, " and ", "", opts)
}

// Update compila uma expressão de atualização: "SET a = :a0, b = :b1".
// Timestamps como updatedAt já devem estar em params.
func Update(params *Params, opts ...Option) (Compiled, error) {
	return assignments(params, Positional, ", ", "SET ", opts)
}

func assignments(params *Params, numbering Numbering, sep, prefix string, opts []Option) (Compiled, error) {
	o := buildOptions(numbering, opts)

	var clauses []string
	var err error
	params.Each(func(name string, v any) bool {
		if v == Missing {
			return true
		}
		var av types.AttributeValue
		if av, err = Encode(v); err != nil {
			err = wrapPath(name, err)
			return false
		}
		clauses = append(clauses, o.aliases.Name(name)+" = "+o.aliases.Value(name, av))
		return true
	})
	if err != nil {
		return Compiled{}, err
	}
	return o.result(clauses, sep, prefix), nil
}

func validJoiner(j string) bool {
	return strings.EqualFold(j, JoinAnd) || strings.EqualFold(j, JoinOr)
}

func skipFilter(v any) bool {
	switch v.(type) {
	case nil, missing:
		return true
	case map[string]any, map[string]string, *Params:
		return true
	case *types.AttributeValueMemberM, *types.AttributeValueMemberNULL:
		return true
	}
	if reflect.ValueOf(v).Kind() == reflect.Map {
		return true
	}
	_, n, ok := listHead(v)
	return ok && n == 0
}

// listHead devolve o primeiro elemento e o tamanho de v quando v é uma das
// listas aceitas por Encode. Outros slices ([]byte, []int32...) não são
// listas e falham na codificação, como em qualquer outra expressão.
func listHead(v any) (any, int, bool) {
	switch l := v.(type) {
	case *types.AttributeValueMemberL:
		return head(l.Value)
	case []any:
		return head(l)
	case []string:
		return head(l)
	case []int:
		return head(l)
	case []int64:
		return head(l)
	case []float64:
		return head(l)
	case []bool:
		return head(l)
	}
	return nil, 0, false
}

func head[T any](s []T) (any, int, bool) {
	if len(s) == 0 {
		return nil, 0, true
	}
	return s[0], len(s), true
}
