// Package dyndb oferece uma fachada CRUD sobre o AWS DynamoDB Go SDK (v2).
//
// Visão Geral:
// O `Store` recebe um `Request` simplificado (tabela, chave, atributos,
// condições, filtros, projeção e token de paginação), monta a requisição
// nativa através do pacote `request` e a despacha pelo `Client`.
// Respostas são convertidas para `map[string]any` e os erros do SDK são
// normalizados em sentinelas (`ErrNotFound`, `ErrAlreadyExists`, ...).
//
// Funcionalidades Principais:
//   - Create com verificação de existência e PutItem condicional.
//   - Update com leitura prévia e injeção automática de `updatedAt`.
//   - Query/Scan paginados com tokens opacos (gzip + base58).
//   - BatchPut/BatchGet em lotes de 25/100 com reprocessamento dos itens
//     não processados.
//   - Cache de leitura opcional (`ItemCache`) e métricas (`metrics.Provider`).
//   - `MockStore` para testes de camadas superiores.
//
// Exemplo:
//
//	store := dyndb.New(client, dyndb.TableConfig{TableName: "users", HashKey: "id"})
//
//	item, err := store.Create(ctx, dyndb.Request{
//		Item: expression.NewParams().Set("id", "u1").Set("name", "John"),
//	})
//	if errors.Is(err, dyndb.ErrAlreadyExists) { /* ... */ }
//
//	page, err := store.Query(ctx, dyndb.Request{
//		Index:      "byEmail",
//		Conditions: expression.NewParams().Set("email", "john@example.com"),
//	})
//
// Configuração:
// `TableConfig` pode ser preenchido por variáveis de ambiente
// (DYNAMODB_TABLE_NAME, DYNAMODB_HASH_KEY, DYNAMODB_SORT_KEY).
package dyndb
