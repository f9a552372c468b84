package request_test

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynamodb-quick-service/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{"empty", nil, 3, nil},
		{"exact", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"remainder", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"bigger size", []int{1}, 25, [][]int{{1}}},
		{"invalid size", []int{1}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, request.Chunk(tt.items, tt.size))
		})
	}
}

func keys(n int) []request.Key {
	out := make([]request.Key, n)
	for i := range out {
		out[i] = request.Key{"id": &types.AttributeValueMemberS{Value: fmt.Sprintf("k%d", i)}}
	}
	return out
}

func TestBatchWrite(t *testing.T) {
	t.Parallel()

	puts := make([]map[string]types.AttributeValue, 30)
	for i := range puts {
		puts[i] = map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: fmt.Sprint(i)}}
	}

	inputs, err := request.BatchWrite("users", puts, keys(21))
	require.NoError(t, err)
	require.Len(t, inputs, 3)

	assert.Len(t, inputs[0].RequestItems["users"], 25)
	assert.Len(t, inputs[1].RequestItems["users"], 25)
	assert.Len(t, inputs[2].RequestItems["users"], 1)
	assert.NotNil(t, inputs[0].RequestItems["users"][0].PutRequest)
	assert.NotNil(t, inputs[2].RequestItems["users"][0].DeleteRequest)

	_, err = request.BatchWrite("", puts, nil)
	assert.ErrorIs(t, err, request.ErrMissingTable)
	_, err = request.BatchWrite("users", nil, []request.Key{{}})
	assert.ErrorIs(t, err, request.ErrMissingKey)
}

func TestBatchGet(t *testing.T) {
	t.Parallel()

	inputs, err := request.BatchGet("users", keys(250))
	require.NoError(t, err)
	require.Len(t, inputs, 3)
	assert.Len(t, inputs[0].RequestItems["users"].Keys, 100)
	assert.Len(t, inputs[2].RequestItems["users"].Keys, 50)
	assert.True(t, *inputs[0].RequestItems["users"].ConsistentRead)

	none, err := request.BatchGet("users", nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
