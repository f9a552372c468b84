package dyndb_test

import (
	"context"
	"testing"
	"time"

	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/raywall/dynamodb-quick-service/expression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truora/minidyn/aws-v2/client"
)

func newMinidynStore(t *testing.T) (*client.Client, *dyndb.Store) {
	t.Helper()
	fake := client.NewClient()
	require.NoError(t, client.AddTable(context.Background(), fake, "users", "id", ""))

	store := dyndb.New(fake, dyndb.TableConfig{TableName: "users", HashKey: "id"},
		dyndb.WithClock(func() time.Time { return fixedNow }))
	return fake, store
}

func TestMinidyn_CreateGetDelete(t *testing.T) {
	_, store := newMinidynStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, dyndb.Request{
		Item: expression.NewParams().Set("id", "u1").Set("name", "Ana").Set("age", 30),
	})
	require.NoError(t, err)
	assert.Equal(t, float64(fixedNow.UnixMilli()), created[dyndb.CreatedAt])

	item, err := store.Get(ctx, dyndb.Request{Key: key("u1")})
	require.NoError(t, err)
	assert.Equal(t, "Ana", item["name"])
	assert.Equal(t, float64(30), item["age"])

	_, err = store.Create(ctx, dyndb.Request{Item: key("u1")})
	assert.ErrorIs(t, err, dyndb.ErrAlreadyExists)

	require.NoError(t, store.Delete(ctx, dyndb.Request{Key: key("u1")}))
	_, err = store.Get(ctx, dyndb.Request{Key: key("u1")})
	assert.ErrorIs(t, err, dyndb.ErrNotFound)
}

func TestMinidyn_BatchPutAndGet(t *testing.T) {
	_, store := newMinidynStore(t)
	ctx := context.Background()

	items := []*expression.Params{
		key("b1").Set("name", "Ana"),
		key("b2").Set("name", "Bia"),
	}
	require.NoError(t, store.BatchPut(ctx, items))

	got, err := store.BatchGet(ctx, []*expression.Params{key("b1"), key("b2"), key("b3")})
	require.NoError(t, err)
	require.Len(t, got, 2)

	names := []any{got[0]["name"], got[1]["name"]}
	assert.ElementsMatch(t, []any{"Ana", "Bia"}, names)
}

func TestMinidyn_EmulatedFailure(t *testing.T) {
	fake, store := newMinidynStore(t)
	client.EmulateFailure(fake, client.FailureConditionInternalServerError)
	t.Cleanup(func() { client.EmulateFailure(fake, client.FailureConditionNone) })

	_, err := store.Get(context.Background(), dyndb.Request{Key: key("u1")})
	assert.ErrorIs(t, err, dyndb.ErrUnavailable)

	var se *dyndb.StoreError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Retryable())
}
