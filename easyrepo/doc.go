/*
Package easyrepo expõe um Service[T] tipado sobre qualquer dyndb.Operations
(o *dyndb.Store em produção, dyndb.MockStore nos testes).

T é convertido com as tags dynamodbav: na escrita os escalares viram valores
Go simples (string, json.Number, bool) antes de chegar ao compilador de
expressões; na leitura o item volta para T com attributevalue, incluindo os
timestamps createdAt/updatedAt gravados pelo store.

Antes de cada escrita o Service valida T (validator/v10 com as regras do
pacote validate) e executa os hooks registrados. Update busca a versão
atual e a entrega aos hooks BeforeUpdate; um item inexistente retorna
ErrNotFound antes de qualquer escrita.

	type User struct {
		ID    string `dynamodbav:"id" validate:"required"`
		Email string `dynamodbav:"email" validate:"required,email"`
	}

	store := dyndb.New(dynamoClient, dyndb.TableConfig{TableName: "users", HashKey: "id"})
	users := easyrepo.NewService[User](store, store.Config())
	users.RegisterHook(easyrepo.BeforeCreate, func(ctx context.Context, u, _ *User) error {
		u.Email = strings.ToLower(u.Email)
		return nil
	})
	created, err := users.Create(ctx, &User{ID: "1", Email: "Ana@Example.com"})

Métodos específicos do domínio podem ser registrados com
RegisterCustomServiceMethod e executados por nome (ver examples/users).
*/
package easyrepo
