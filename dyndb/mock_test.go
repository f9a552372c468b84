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
package dyndb_test

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/stretchr/testify/mock"
)

// MockDynamoClient simula o cliente do SDK; as expectativas são registradas
// com On(<método>, ctx, input).
type MockDynamoClient struct {
	mock.Mock
}

// reply converte o retorno registrado, aceitando nil como saída.
func reply[T any](args mock.Arguments) (*T, error) {
	out, _ := args.Get(0).(*T)
	return out, args.Error(1)
}

func (m *MockDynamoClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return reply[dynamodb.GetItemOutput](m.Called(ctx, in))
}

func (m *MockDynamoClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return reply[dynamodb.PutItemOutput](m.Called(ctx, in))
}

func (m *MockDynamoClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return reply[dynamodb.DeleteItemOutput](m.Called(ctx, in))
}

func (m *MockDynamoClient) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return reply[dynamodb.UpdateItemOutput](m.Called(ctx, in))
}

func (m *MockDynamoClient) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	return reply[dynamodb.BatchWriteItemOutput](m.Called(ctx, in))
}

func (m *MockDynamoClient) BatchGetItem(ctx context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	return reply[dynamodb.BatchGetItemOutput](m.Called(ctx, in))
}

func (m *MockDynamoClient) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return reply[dynamodb.QueryOutput](m.Called(ctx, in))
}

func (m *MockDynamoClient) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return reply[dynamodb.ScanOutput](m.Called(ctx, in))
}

var _ dyndb.Client = (*MockDynamoClient)(nil)

var fixedNow = time.UnixMilli(1700000000000)

// createTestStore: tabela "test-table" (hash "id", GSI by-email), relógio
// fixo e backoff mínimo para os retries de batch.
func createTestStore(client *MockDynamoClient, opts ...dyndb.Option) *dyndb.Store {
	cfg := dyndb.TableConfig{
		TableName: "test-table",
		HashKey:   "id",
		Indexes: []dyndb.Index{
			{Name: "by-email", HashKey: "email", Global: true},
		},
	}
	base := []dyndb.Option{
		dyndb.WithClock(func() time.Time { return fixedNow }),
		dyndb.WithBackoff(time.Millisecond),
	}
	return dyndb.New(client, cfg, append(base, opts...)...)
}

func createTestStoreWithSortKey(client *MockDynamoClient) *dyndb.Store {
	cfg := dyndb.TableConfig{
		TableName: "test-table",
		HashKey:   "pk",
		SortKey:   "sk",
	}
	return dyndb.New(client, cfg, dyndb.WithClock(func() time.Time { return fixedNow }))
}
