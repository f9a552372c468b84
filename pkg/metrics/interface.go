package metrics

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por Prometheus ou Logging sem alterar a lógica de negócio.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Noop descarta todas as métricas. Usado quando métricas estão desabilitadas.
type Noop struct{}

func (Noop) Count(name string, value float64, tags []string) error     { return nil }
func (Noop) Gauge(name string, value float64, tags []string) error     { return nil }
func (Noop) Histogram(name string, value float64, tags []string) error { return nil }
