// Package expression compila mapas planos de atributos em expressões do
// DynamoDB (filtro, projeção, condição de chave e atualização) junto com as
// tabelas ExpressionAttributeNames e ExpressionAttributeValues que elas usam.
//
// Cada compilação monta suas próprias tabelas de alias e não guarda estado
// entre chamadas, então as funções do pacote são seguras para uso concorrente.
//
// Exemplo:
//
//	params := expression.NewParams().Set("name", "John Doe").Set("age", 25)
//	out, err := expression.Filter(params)
//	// out.Expression == "#name = :n0 And age = :a1"
package expression
