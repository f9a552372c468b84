package expression

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Params é um mapa plano de atributos que preserva a ordem de inserção. A
// numeração dos placeholders segue essa ordem, então compilar o mesmo Params
// duas vezes gera a mesma expressão.
//
// O valor zero é um mapa vazio pronto para uso, e um *Params nil é lido como
// vazio.
type Params struct {
	keys   []string
	values map[string]any
}

// NewParams retorna um Params vazio.
func NewParams() *Params {
	return &Params{values: map[string]any{}}
}

// FromMap monta Params a partir de um map. As chaves entram em ordem lexical,
// já que a iteração de map é aleatória.
func FromMap(m map[string]any) *Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := &Params{keys: keys, values: make(map[string]any, len(m))}
	for k, v := range m {
		p.values[k] = v
	}
	return p
}

// Set grava value em name. Regravar um nome existente mantém sua posição
// original. Set retorna o próprio receptor para encadear chamadas.
func (p *Params) Set(name string, value any) *Params {
	if p.values == nil {
		p.values = map[string]any{}
	}
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.values[name] = value
	return p
}

func (p *Params) Get(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[name]
	return v, ok
}

func (p *Params) Has(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[name]
	return ok
}

func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys retorna uma cópia dos nomes na ordem de inserção.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Each chama fn para cada entrada, em ordem, até fn retornar false.
func (p *Params) Each(fn func(name string, value any) bool) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		if !fn(k, p.values[k]) {
			return
		}
	}
}

// Clone retorna uma cópia independente. Valores aninhados são compartilhados.
func (p *Params) Clone() *Params {
	if p == nil {
		return NewParams()
	}
	out := &Params{keys: make([]string, len(p.keys)), values: make(map[string]any, len(p.values))}
	copy(out.keys, p.keys)
	for k, v := range p.values {
		out.values[k] = v
	}
	return out
}

// With retorna uma cópia de p com name igual a value, sem alterar p.
func (p *Params) With(name string, value any) *Params {
	return p.Clone().Set(name, value)
}

// Map retorna as entradas como um map simples.
func (p *Params) Map() map[string]any {
	if p == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// MarshalJSON escreve as entradas como objeto JSON na ordem de inserção.
func (p *Params) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON lê um objeto JSON mantendo a ordem das chaves do documento.
// Números ficam como json.Number para que inteiros não sofram arredondamento.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = Params{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expression: params must be a JSON object, got %v", tok)
	}

	out := NewParams()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)

		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("expression: params %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = *out
	return nil
}
