// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package envloader

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Lookup resolve uma variável de ambiente. O padrão é os.LookupEnv.
type Lookup func(key string) (string, bool)

type Option func(*loader)

// WithLookup troca a fonte das variáveis (útil em testes e para fontes
// que não são o ambiente do processo).
func WithLookup(fn Lookup) Option {
	return func(l *loader) { l.lookup = fn }
}

// WithPrefix prefixa todos os nomes de tag: com "ORDERS_", a tag
// `env:"DYNAMODB_TABLE_NAME"` lê ORDERS_DYNAMODB_TABLE_NAME.
func WithPrefix(prefix string) Option {
	return func(l *loader) { l.prefix = prefix }
}

type loader struct {
	lookup Lookup
	prefix string
}

// Load preenche os campos com tag `env` de config, que deve ser ponteiro
// para struct. Uma variável definida sempre sobrescreve o campo; `envDefault`
// só é aplicado a campos ainda zerados, preservando o que veio do YAML.
func Load(config interface{}, opts ...Option) error {
	val := reflect.ValueOf(config)
	if !val.IsValid() {
		return &InvalidConfigError{}
	}
	if val.Kind() != reflect.Ptr || val.IsNil() || val.Elem().Kind() != reflect.Struct {
		return &InvalidConfigError{Value: val.Type()}
	}

	l := &loader{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}
	return l.loadStruct(val.Elem(), "")
}

// MustLoad é similar ao Load, mas panic em caso de erro
func MustLoad(config interface{}, opts ...Option) {
	if err := Load(config, opts...); err != nil {
		panic(err)
	}
}

func (l *loader) loadStruct(val reflect.Value, path string) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		if !field.CanSet() {
			continue
		}
		fieldPath := fieldType.Name
		if path != "" {
			fieldPath = path + "." + fieldType.Name
		}

		// Structs aninhadas (ou ponteiros para struct) são percorridas
		switch {
		case field.Kind() == reflect.Struct:
			if err := l.loadStruct(field, fieldPath); err != nil {
				return err
			}
			continue
		case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			if err := l.loadStruct(field.Elem(), fieldPath); err != nil {
				return err
			}
			continue
		}

		name := fieldType.Tag.Get("env")
		if name == "" {
			continue
		}
		name = l.prefix + name

		value, _ := l.lookup(name)
		if value == "" && field.IsZero() {
			value = fieldType.Tag.Get("envDefault")
		}
		if value == "" {
			continue
		}

		if err := setFieldValue(field, value); err != nil {
			return &FieldError{Path: fieldPath, EnvVar: name, Value: value, Err: err}
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Ptr:
		// *bool, *int... para distinguir "não informado" de zero
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return &UnsupportedTypeError{Type: field.Type()}
		}
		field.Set(splitList(field.Type(), value))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)

	default:
		return &UnsupportedTypeError{Type: field.Type()}
	}
	return nil
}

// splitList converte "a, b,,c" em [a b c].
func splitList(typ reflect.Type, value string) reflect.Value {
	parts := strings.Split(value, ",")
	out := reflect.MakeSlice(typ, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = reflect.Append(out, reflect.ValueOf(p).Convert(typ.Elem()))
		}
	}
	return out
}
