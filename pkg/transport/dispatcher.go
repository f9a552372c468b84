package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/raywall/dynamodb-quick-service/expression"
	"github.com/raywall/dynamodb-quick-service/request"
	"github.com/raywall/dynamodb-quick-service/validate"
	"github.com/rs/zerolog"
)

// Operações expostas em {route}/{operation}
const (
	OpGet      = "get"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpQuery    = "query"
	OpScan     = "scan"
	OpBatchPut = "batch_put"
	OpBatchGet = "batch_get"
)

// Batcher é implementado por *dyndb.Store; MockStore não precisa dele.
type Batcher interface {
	BatchPut(ctx context.Context, items []*expression.Params) error
	BatchGet(ctx context.Context, keys []*expression.Params) ([]dyndb.Item, error)
}

// Dispatcher traduz (operação, corpo JSON) em chamadas a dyndb.Operations.
// É compartilhado pelo servidor HTTP e pelo handler Lambda.
type Dispatcher struct {
	ops     dyndb.Operations
	timeout time.Duration
}

func NewDispatcher(ops dyndb.Operations, timeout time.Duration) *Dispatcher {
	return &Dispatcher{ops: ops, timeout: timeout}
}

type itemResponse struct {
	Item dyndb.Item `json:"item"`
}

type itemsResponse struct {
	Items []dyndb.Item `json:"items"`
	Count int          `json:"count"`
}

type batchRequest struct {
	Items []*expression.Params `json:"items"`
	Keys  []*expression.Params `json:"keys"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Dispatch executa a operação e devolve o status HTTP e o corpo da resposta.
func (d *Dispatcher) Dispatch(ctx context.Context, operation string, body []byte) (int, []byte) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	status, out, err := d.dispatch(ctx, strings.ToLower(operation), body)
	if err != nil {
		status = StatusOf(err)
		if status >= http.StatusInternalServerError {
			zerolog.Ctx(ctx).Error().Err(err).Str("operation", operation).Msg("operation failed")
		}
		return status, encode(errorResponse{Error: err.Error(), Kind: kindOf(status)})
	}
	if out == nil {
		return status, nil
	}
	return status, encode(out)
}

func (d *Dispatcher) dispatch(ctx context.Context, op string, body []byte) (int, any, error) {
	switch op {
	case OpBatchPut, OpBatchGet:
		return d.batch(ctx, op, body)
	case OpGet, OpCreate, OpUpdate, OpDelete, OpQuery, OpScan:
	default:
		return 0, nil, &unknownOperationError{op: op}
	}

	var r dyndb.Request
	if err := decodeBody(body, &r); err != nil {
		return 0, nil, err
	}

	switch op {
	case OpGet:
		item, err := d.ops.Get(ctx, r)
		return http.StatusOK, itemResponse{Item: item}, err
	case OpCreate:
		item, err := d.ops.Create(ctx, r)
		return http.StatusCreated, itemResponse{Item: item}, err
	case OpUpdate:
		item, err := d.ops.Update(ctx, r)
		return http.StatusOK, itemResponse{Item: item}, err
	case OpDelete:
		return http.StatusNoContent, nil, d.ops.Delete(ctx, r)
	case OpQuery:
		page, err := d.ops.Query(ctx, r)
		return http.StatusOK, page, err
	default:
		page, err := d.ops.Scan(ctx, r)
		return http.StatusOK, page, err
	}
}

func (d *Dispatcher) batch(ctx context.Context, op string, body []byte) (int, any, error) {
	b, ok := d.ops.(Batcher)
	if !ok {
		return 0, nil, &unknownOperationError{op: op}
	}
	var r batchRequest
	if err := decodeBody(body, &r); err != nil {
		return 0, nil, err
	}
	if op == OpBatchPut {
		return http.StatusNoContent, nil, b.BatchPut(ctx, r.Items)
	}
	items, err := b.BatchGet(ctx, r.Keys)
	return http.StatusOK, itemsResponse{Items: items, Count: len(items)}, err
}

type unknownOperationError struct{ op string }

func (e *unknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", e.op)
}

type bodyError struct{ err error }

func (e *bodyError) Error() string { return "invalid JSON body: " + e.err.Error() }
func (e *bodyError) Unwrap() error { return e.err }

func decodeBody(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &bodyError{err: err}
	}
	return nil
}

// StatusOf mapeia erros das camadas dyndb/request/expression para status HTTP.
func StatusOf(err error) int {
	var (
		unknown  *unknownOperationError
		body     *bodyError
		verrs    validate.Errors
		contract *request.ContractError
		exprErr  *expression.ExpressionError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.Is(err, dyndb.ErrNotFound), errors.Is(err, dyndb.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, dyndb.ErrAlreadyExists), errors.Is(err, dyndb.ErrConditionFailed):
		return http.StatusConflict
	case errors.Is(err, dyndb.ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, dyndb.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, dyndb.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, dyndb.ErrInvalidInput), errors.Is(err, dyndb.ErrInvalidToken),
		errors.Is(err, dyndb.ErrInvalidRequest),
		errors.As(err, &body), errors.As(err, &verrs),
		errors.As(err, &contract), errors.As(err, &exprErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func kindOf(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusTooManyRequests:
		return "throttled"
	case http.StatusForbidden:
		return "access_denied"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusGatewayTimeout:
		return "timeout"
	}
	return "internal"
}

func encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":"response encoding failed","kind":"internal"}`)
	}
	return data
}
