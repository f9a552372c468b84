package expression_test

import (
	"encoding/json"
	"testing"

	"github.com/raywall/dynamodb-quick-service/expression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Order(t *testing.T) {
	t.Parallel()

	p := expression.NewParams().Set("name", "a").Set("age", 1).Set("city", "x")
	p.Set("name", "b")

	assert.Equal(t, []string{"name", "age", "city"}, p.Keys())
	v, ok := p.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, 3, p.Len())
}

func TestParams_FromMapSortsKeys(t *testing.T) {
	t.Parallel()

	p := expression.FromMap(map[string]any{"zeta": 1, "alpha": 2, "mid": 3})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, p.Keys())
}

func TestParams_WithDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := expression.NewParams().Set("age", 31)
	merged := base.With("updatedAt", 1700000000000)

	assert.Equal(t, []string{"age"}, base.Keys())
	assert.Equal(t, []string{"age", "updatedAt"}, merged.Keys())
}

func TestParams_NilIsEmpty(t *testing.T) {
	t.Parallel()

	var p *expression.Params
	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Has("x"))
	assert.Nil(t, p.Keys())
}

func TestParams_JSONKeepsDocumentOrder(t *testing.T) {
	t.Parallel()

	var p expression.Params
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":1,"alpha":"a","nested":{"x":[1,2]}}`), &p))

	assert.Equal(t, []string{"zeta", "alpha", "nested"}, p.Keys())
	v, _ := p.Get("zeta")
	assert.Equal(t, json.Number("1"), v)

	out, err := json.Marshal(&p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":1,"alpha":"a","nested":{"x":[1,2]}}`, string(out))
	assert.Equal(t, `{"zeta":1,"alpha":"a","nested":{"x":[1,2]}}`, string(out))
}

func TestParams_JSONRejectsNonObject(t *testing.T) {
	t.Parallel()

	var p expression.Params
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &p))
}
