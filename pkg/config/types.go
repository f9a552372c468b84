package config

import (
	"time"

	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/raywall/dynamodb-quick-service/request"
)

// ServiceConfig representa a estrutura raiz do arquivo YAML do serviço.
type ServiceConfig struct {
	Version    string            `yaml:"version" validate:"required"`
	Service    ServiceDetails    `yaml:"service" validate:"required"`
	Table      dyndb.TableConfig `yaml:"table" validate:"required"`
	Expression ExpressionConf    `yaml:"expression"`
	Cache      CacheConf         `yaml:"cache"`
	AWS        AWSConf           `yaml:"aws"`
}

// ServiceDetails contém os metadados e configurações de runtime do serviço.
type ServiceDetails struct {
	Name    string      `yaml:"name" validate:"required,hostname_rfc1123"`
	Runtime string      `yaml:"runtime" env:"SERVICE_RUNTIME" validate:"required,oneof=local lambda ecs eks ec2"`
	Port    int         `yaml:"port" env:"PORT" validate:"required_if=Runtime local"` // Obrigatório apenas se local
	Route   string      `yaml:"route" validate:"omitempty,startswith=/"`
	Timeout string      `yaml:"timeout" validate:"required"` // Ex: "500ms", "2s"
	Logging LoggingConf `yaml:"logging"`
	Metrics MetricsConf `yaml:"metrics"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled" env:"LOG_ENABLED"`
	Level   string `yaml:"level" env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" env:"LOG_FORMAT" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool     `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string   `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string   `yaml:"namespace"`
	Tags      []string `yaml:"tags" env:"DD_TAGS"`
}

// ExpressionConf ajusta a montagem das expressões DynamoDB.
type ExpressionConf struct {
	// OmitEmptyAliases: nil significa true.
	OmitEmptyAliases *bool  `yaml:"omit_empty_aliases"`
	Joiner           string `yaml:"joiner" validate:"omitempty,oneof=And and AND Or or OR"`
	ScanLimit        int32  `yaml:"scan_limit" env:"SCAN_LIMIT" validate:"gte=0"`
}

// CacheConf configura o cache Redis de leitura de itens.
type CacheConf struct {
	Enabled  bool   `yaml:"enabled" env:"CACHE_ENABLED"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" validate:"required_if=Enabled true"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	TTL      string `yaml:"ttl" env:"CACHE_TTL" envDefault:"5m"`
	Prefix   string `yaml:"prefix"`
}

type AWSConf struct {
	Region string `yaml:"region" env:"AWS_REGION"`
	// Endpoint aponta para um DynamoDB local (ex: http://localhost:8000).
	Endpoint string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT" validate:"omitempty,url"`
}

func (s ServiceDetails) GetTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func (c CacheConf) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// RequestOptions converte a configuração em opções do pacote request.
func (e ExpressionConf) RequestOptions() []request.Option {
	omit := true
	if e.OmitEmptyAliases != nil {
		omit = *e.OmitEmptyAliases
	}
	joiner := e.Joiner
	if joiner == "" {
		joiner = "And"
	}
	return []request.Option{request.WithOptions(request.Options{
		OmitEmptyAliases: omit,
		Joiner:           joiner,
		ScanLimit:        e.ScanLimit,
	})}
}
