package observability

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/raywall/dynamodb-quick-service/pkg/config"
	"github.com/raywall/dynamodb-quick-service/pkg/metrics"
)

// statsdClient é a parte de *statsd.Client usada pelo DatadogProvider.
type statsdClient interface {
	Count(name string, value int64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	Close() error
}

// DatadogProvider adapta a lib oficial do Datadog para nossa interface.
type DatadogProvider struct {
	client statsdClient
	tags   []string
}

func (d *DatadogProvider) Count(name string, value float64, tags []string) error {
	return d.client.Count(name, int64(value), d.with(tags), 1)
}

func (d *DatadogProvider) Gauge(name string, value float64, tags []string) error {
	return d.client.Gauge(name, value, d.with(tags), 1)
}

func (d *DatadogProvider) Histogram(name string, value float64, tags []string) error {
	return d.client.Histogram(name, value, d.with(tags), 1)
}

// Close envia as métricas pendentes.
func (d *DatadogProvider) Close() error {
	return d.client.Close()
}

func (d *DatadogProvider) with(tags []string) []string {
	if len(d.tags) == 0 {
		return tags
	}
	out := make([]string, 0, len(d.tags)+len(tags))
	out = append(out, d.tags...)
	return append(out, tags...)
}

// SetupMetrics inicializa o provedor correto baseado no YAML.
func SetupMetrics(cfg config.MetricsConf) (metrics.Provider, error) {
	if !cfg.Datadog.Enabled {
		return metrics.Noop{}, nil
	}

	opts := []statsd.Option{
		statsd.WithNamespace(cfg.Datadog.Namespace),
	}

	client, err := statsd.New(cfg.Datadog.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no datadog statsd: %w", err)
	}

	return &DatadogProvider{client: client, tags: cfg.Datadog.Tags}, nil
}
