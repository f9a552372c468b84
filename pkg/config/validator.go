package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/dynamodb-quick-service/validate"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validate.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *ServiceConfig) error {
	if err := cv.validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("field '%s' failed on rule '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("structural validation errors:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("structural validation error: %w", err)
	}

	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("semantic validation error: %w", err)
	}
	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *ServiceConfig) error {
	if _, err := time.ParseDuration(cfg.Service.Timeout); err != nil {
		return fmt.Errorf("invalid service timeout '%s': %w", cfg.Service.Timeout, err)
	}
	if cfg.Cache.Enabled {
		if _, err := time.ParseDuration(cfg.Cache.TTL); err != nil {
			return fmt.Errorf("invalid cache ttl '%s': %w", cfg.Cache.TTL, err)
		}
	}

	// Índices: nomes únicos e distintos da chave da tabela
	seen := make(map[string]bool)
	for _, idx := range cfg.Table.Indexes {
		if seen[idx.Name] {
			return fmt.Errorf("duplicated index name: '%s'", idx.Name)
		}
		seen[idx.Name] = true
		if !idx.Global && idx.HashKey != cfg.Table.HashKey {
			return fmt.Errorf("local index '%s' must share the table hash key '%s'", idx.Name, cfg.Table.HashKey)
		}
	}
	if cfg.Table.SortKey != "" && cfg.Table.SortKey == cfg.Table.HashKey {
		return fmt.Errorf("sort key must differ from hash key")
	}
	return nil
}
