package dyndb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// ErrNotFound – erro padrão quando o item não existe
var ErrNotFound = errors.New("dyndb: item not found")

var (
	ErrAlreadyExists   = errors.New("dyndb: item already exists")
	ErrConditionFailed = errors.New("dyndb: condition check failed")
	ErrInvalidInput    = errors.New("dyndb: invalid input")
	ErrInvalidToken    = errors.New("dyndb: invalid pagination token")
	ErrThrottled       = errors.New("dyndb: request throttled")
	ErrAccessDenied    = errors.New("dyndb: access denied")
	ErrTableNotFound   = errors.New("dyndb: table not found")
	ErrInvalidRequest  = errors.New("dyndb: request rejected by dynamodb")
	ErrUnavailable     = errors.New("dyndb: service unavailable")
)

// StoreError carrega a operação e a tabela de uma chamada que falhou. Kind é
// um dos sentinelas acima e casa com errors.Is; Err é a causa.
type StoreError struct {
	Op    string
	Table string
	Kind  error
	Err   error
}

func (e *StoreError) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("dyndb: %s %s: %v", e.Op, e.Table, e.Kind)
	}
	return fmt.Sprintf("dyndb: %s %s: %v: %v", e.Op, e.Table, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == e.Kind
}

// Retryable informa se a falha é transitória. Chamada cancelada pelo
// chamador nunca é repetida.
func (e *StoreError) Retryable() bool {
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	return e.Kind == ErrThrottled || e.Kind == ErrUnavailable
}

func storeErr(op, table string, kind, err error) error {
	return &StoreError{Op: op, Table: table, Kind: kind, Err: err}
}

// classify converte o erro devolvido pelo client em StoreError. Falhas
// locais de codificação e de contrato são tratadas antes da chamada e não
// chegam aqui; erro sem código de API (conexão recusada, reset, erros de
// contexto) é falha de transporte e vira ErrUnavailable.
func classify(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		if op == opCreate {
			return storeErr(op, table, ErrAlreadyExists, err)
		}
		return storeErr(op, table, ErrConditionFailed, err)
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return storeErr(op, table, ErrUnavailable, err)
	}

	switch apiErr.ErrorCode() {
	case "ResourceNotFoundException":
		return storeErr(op, table, ErrTableNotFound, err)
	case "ProvisionedThroughputExceededException", "ThrottlingException",
		"RequestLimitExceeded", "LimitExceededException":
		return storeErr(op, table, ErrThrottled, err)
	case "AccessDeniedException", "UnrecognizedClientException", "MissingAuthenticationTokenException":
		return storeErr(op, table, ErrAccessDenied, err)
	case "ValidationException", "SerializationException", "ItemCollectionSizeLimitExceededException":
		return storeErr(op, table, ErrInvalidRequest, err)
	case "InternalServerError", "ServiceUnavailable":
		return storeErr(op, table, ErrUnavailable, err)
	}
	if apiErr.ErrorFault() == smithy.FaultServer {
		return storeErr(op, table, ErrUnavailable, err)
	}
	return storeErr(op, table, ErrInvalidRequest, err)
}
