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
// Package envloader carrega variáveis de ambiente em structs de configuração
// através das tags `env` e `envDefault`.
//
// É a última camada da configuração do serviço: o YAML é decodificado
// primeiro e o envloader sobrescreve apenas o que estiver definido no
// ambiente. Por isso `envDefault` só vale para campos que continuam zerados.
//
// Tipos suportados: string, int*, uint*, bool, float*, time.Duration,
// ponteiros para esses tipos e []string (lista separada por vírgulas).
// Structs aninhadas e ponteiros para struct são percorridos; erros de
// conversão trazem o caminho do campo (FieldError.Path).
//
// Exemplo:
//
//	var table dyndb.TableConfig
//	// DYNAMODB_TABLE_NAME=users, DYNAMODB_HASH_KEY ausente
//	if err := envloader.Load(&table); err != nil {
//		log.Fatal(err)
//	}
//	// table.TableName == "users", table.HashKey == "id"
//
// WithPrefix permite que vários serviços compartilhem o mesmo ambiente
// (ORDERS_DYNAMODB_TABLE_NAME, USERS_DYNAMODB_TABLE_NAME) e WithLookup troca
// a fonte das variáveis.
package envloader
