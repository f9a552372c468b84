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
//
// Package dynamodb_quick_service reúne utilitários para construir serviços
// CRUD sobre DynamoDB a partir de requisições simples: um mapa plano de
// atributos, sem escrever expressões à mão.
//
// Sub-Pacotes Principais:
//
// 1. expression:
//   - Codificação de valores nativos para AttributeValue.
//   - Alocação de aliases (#nome, :valor) respeitando palavras reservadas.
//   - Compilação de filtros, projeções, key conditions e updates.
//
// 2. request:
//   - Montagem dos inputs completos do SDK (Get, Put, Delete, Query, Scan,
//     Update) e divisão de batches em grupos de 25 e 100.
//
// 3. dyndb:
//   - Store com verificação de existência, timestamps, cache, métricas,
//     paginação por token opaco e classificação de erros do SDK.
//
// 4. easyrepo:
//   - Service[T] tipado com validação, hooks e métodos customizados.
//
// 5. envloader, pkg/config:
//   - Configuração via YAML (arquivo, S3 ou DynamoDB), placeholders
//     ${env.X}, ${ssm.X}, ${secret.X} e variáveis de ambiente.
//
// Os binários cmd/server (HTTP ou Lambda) e cmd/toolkit (compilação de
// requisições pela linha de comando) usam esses pacotes.
//
// Exemplo de Início Rápido:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		awsconfig "github.com/aws/aws-sdk-go-v2/config"
//		"github.com/aws/aws-sdk-go-v2/service/dynamodb"
//		"github.com/raywall/dynamodb-quick-service/dyndb"
//		"github.com/raywall/dynamodb-quick-service/expression"
//	)
//
//	func main() {
//		ctx := context.Background()
//		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// TableName e HashKey vazios são lidos de DYNAMODB_TABLE_NAME e DYNAMODB_HASH_KEY
//		store := dyndb.New(dynamodb.NewFromConfig(awsCfg), dyndb.TableConfig{})
//
//		item, err := store.Create(ctx, dyndb.Request{
//			Item: expression.NewParams().Set("id", "user-123").Set("name", "Ana"),
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("criado em %v", item[dyndb.CreatedAt])
//
//		page, err := store.Scan(ctx, dyndb.Request{
//			Filters: expression.NewParams().Set("status", "active"),
//			Limit:   50,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("%d itens, próxima página: %q", page.Count, page.Token)
//	}
package dynamodb_quick_service
