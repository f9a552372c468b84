package request

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// MaxBatchWrite é o limite do BatchWriteItem por chamada.
	MaxBatchWrite = 25
	// MaxBatchGet é o limite do BatchGetItem por chamada.
	MaxBatchGet = 100
)

// Chunk divide items em grupos de no máximo size elementos, mantendo a ordem.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// BatchWrite agrupa puts e deletes em BatchWriteItemInputs de no máximo
// MaxBatchWrite requisições cada. Puts vêm primeiro.
func BatchWrite(table string, puts []map[string]types.AttributeValue, deletes []Key) ([]*dynamodb.BatchWriteItemInput, error) {
	if table == "" {
		return nil, contract("batch write", ErrMissingTable)
	}

	writes := make([]types.WriteRequest, 0, len(puts)+len(deletes))
	for _, item := range puts {
		writes = append(writes, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	for _, key := range deletes {
		if len(key) == 0 {
			return nil, contract("batch write", ErrMissingKey)
		}
		writes = append(writes, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}})
	}

	var out []*dynamodb.BatchWriteItemInput
	for _, chunk := range Chunk(writes, MaxBatchWrite) {
		out = append(out, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{table: chunk},
		})
	}
	return out, nil
}

// BatchGet agrupa keys em BatchGetItemInputs de no máximo MaxBatchGet chaves.
func BatchGet(table string, keys []Key) ([]*dynamodb.BatchGetItemInput, error) {
	if table == "" {
		return nil, contract("batch get", ErrMissingTable)
	}
	for _, key := range keys {
		if len(key) == 0 {
			return nil, contract("batch get", ErrMissingKey)
		}
	}

	var out []*dynamodb.BatchGetItemInput
	for _, chunk := range Chunk(keys, MaxBatchGet) {
		out = append(out, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				table: {Keys: chunk, ConsistentRead: aws.Bool(true)},
			},
		})
	}
	return out, nil
}
