package request

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTable = errors.New("request: table name is required")
	ErrMissingKey   = errors.New("request: key is required")
	ErrEmptyParams  = errors.New("request: parameter map is empty")
)

// ContractError indica uma entrada estruturalmente inválida.
type ContractError struct {
	Op  string
	Err error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("request: %s: %v", e.Op, e.Err)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

func contract(op string, err error) error {
	return &ContractError{Op: op, Err: err}
}
