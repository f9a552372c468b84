// Package request monta as entradas completas da API do DynamoDB (PutItem,
// GetItem, DeleteItem, Scan, Query, UpdateItem e as chamadas em lote) a partir
// de nomes de tabela, chaves e mapas planos de atributos. Nenhuma função faz
// I/O; só falham quando o contrato é violado, como tabela ou chave ausente.
package request
