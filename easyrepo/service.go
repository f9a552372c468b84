package easyrepo

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/raywall/dynamodb-quick-service/expression"
	"github.com/raywall/dynamodb-quick-service/validate"
)

type HookType int

const (
	BeforeCreate HookType = iota
	BeforeUpdate
)

var (
	ErrInvalidInput          = errors.New("easyrepo: invalid input")
	ErrEmptyCustomMethodName = errors.New("easyrepo: empty custom service method name")
	ErrMethodNameNotFound    = errors.New("easyrepo: method name not found")

	// Reexportados para que o chamador compare sem importar dyndb.
	ErrNotFound      = dyndb.ErrNotFound
	ErrAlreadyExists = dyndb.ErrAlreadyExists
)

// Service centraliza a lógica de negócio e a validação dos itens do tipo T.
// Encapsula o repositório e usa o validator para garantir a integridade dos dados.
type Service[T any] struct {
	valid                *validator.Validate
	repo                 *Repository[T]
	customServiceMethods map[string]CustomServiceMethod[T]
	hooks                Hooks[T]
}

// Hooks guarda as validações e regras de negócio executadas antes de criar
// ou atualizar.
type Hooks[T any] struct {
	BeforeCreate []BeforeSaveHook[T]
	BeforeUpdate []BeforeSaveHook[T]
}

// BeforeSaveHook pode validar ou transformar item antes da gravação.
// existing é nil na criação.
type BeforeSaveHook[T any] func(ctx context.Context, item *T, existing *T) error

// CustomServiceMethod permite injetar um método customizado
type CustomServiceMethod[T any] func(ctx context.Context, args ...any) (*T, error)

// NewService cria um Service sobre ops. A validação de structs usa as regras
// do pacote validate e as registradas com RegisterValidation.
func NewService[T any](ops dyndb.Operations, cfg dyndb.TableConfig) *Service[T] {
	return &Service[T]{
		valid:                validate.New(),
		repo:                 NewRepository[T](ops, cfg),
		customServiceMethods: make(map[string]CustomServiceMethod[T]),
	}
}

// RegisterHook permite injetar lógica customizada antes das gravações.
func (s *Service[T]) RegisterHook(hookType HookType, fn BeforeSaveHook[T]) {
	switch hookType {
	case BeforeCreate:
		s.hooks.BeforeCreate = append(s.hooks.BeforeCreate, fn)
	case BeforeUpdate:
		s.hooks.BeforeUpdate = append(s.hooks.BeforeUpdate, fn)
	}
}

// RegisterCustomServiceMethod permite injetar um método customizado
func (s *Service[T]) RegisterCustomServiceMethod(name string, fn CustomServiceMethod[T]) {
	s.customServiceMethods[name] = fn
}

// RegisterValidation adiciona uma regra de validação customizada ao validator.
func (s *Service[T]) RegisterValidation(name string, fn validator.Func) error {
	return s.valid.RegisterValidation(name, fn)
}

// Get busca um item pela hash key (pk) e sort key (sk).
// Retorna ErrInvalidInput se uma chave obrigatória for nil.
func (s *Service[T]) Get(ctx context.Context, pk, sk any) (*T, error) {
	if err := s.checkKey(pk, sk); err != nil {
		return nil, err
	}
	return s.repo.get(ctx, pk, sk)
}

// List retorna uma página do scan da tabela e o token da próxima página.
func (s *Service[T]) List(ctx context.Context, token string, limit int32) ([]T, string, error) {
	return s.repo.list(ctx, token, limit)
}

// Query retorna os itens que atendem às condições de igualdade, opcionalmente
// em um índice secundário.
func (s *Service[T]) Query(ctx context.Context, index string, conditions, filters *expression.Params, token string) ([]T, string, error) {
	if conditions.Len() == 0 {
		return nil, "", ErrInvalidInput
	}
	return s.repo.query(ctx, dyndb.Request{
		Index:      index,
		Conditions: conditions,
		Filters:    filters,
		Token:      token,
	})
}

// Create valida item, executa os hooks BeforeCreate e grava. O valor
// retornado traz os timestamps definidos pelo store.
func (s *Service[T]) Create(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, ErrInvalidInput
	}
	if err := s.valid.StructCtx(ctx, item); err != nil {
		return nil, err
	}
	for _, hook := range s.hooks.BeforeCreate {
		if err := hook(ctx, item, nil); err != nil {
			return nil, err
		}
	}
	return s.repo.create(ctx, item)
}

// Update valida item, carrega a versão gravada para os hooks BeforeUpdate
// e grava todos os atributos de item.
func (s *Service[T]) Update(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, ErrInvalidInput
	}
	if err := s.valid.StructCtx(ctx, item); err != nil {
		return nil, err
	}

	pk, sk, err := s.repo.keyOf(item)
	if err != nil {
		return nil, err
	}
	if err := s.checkKey(pk, sk); err != nil {
		return nil, err
	}
	existing, err := s.repo.get(ctx, pk, sk)
	if err != nil {
		return nil, err
	}
	for _, hook := range s.hooks.BeforeUpdate {
		if err := hook(ctx, item, existing); err != nil {
			return nil, err
		}
	}
	return s.repo.update(ctx, item)
}

// Delete remove um item pelas chaves primárias
func (s *Service[T]) Delete(ctx context.Context, pk, sk any) error {
	if err := s.checkKey(pk, sk); err != nil {
		return err
	}
	return s.repo.delete(ctx, pk, sk)
}

// RunCustomServiceMethod executa um método registrado com
// RegisterCustomServiceMethod.
func (s *Service[T]) RunCustomServiceMethod(ctx context.Context, name string, args ...any) (*T, error) {
	if name == "" {
		return nil, ErrEmptyCustomMethodName
	}
	fn, ok := s.customServiceMethods[name]
	if !ok {
		return nil, ErrMethodNameNotFound
	}
	return fn(ctx, args...)
}

func (s *Service[T]) checkKey(pk, sk any) error {
	if s.repo.Config.HashKey == "" || pk == nil {
		return ErrInvalidInput
	}
	if s.repo.Config.SortKey != "" && sk == nil {
		return ErrInvalidInput
	}
	return nil
}
