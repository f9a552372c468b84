package observability

import (
	"testing"

	"github.com/raywall/dynamodb-quick-service/pkg/config"
	"github.com/raywall/dynamodb-quick-service/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStatsd struct {
	mock.Mock
}

func (m *mockStatsd) Count(name string, value int64, tags []string, rate float64) error {
	return m.Called(name, value, tags, rate).Error(0)
}

func (m *mockStatsd) Gauge(name string, value float64, tags []string, rate float64) error {
	return m.Called(name, value, tags, rate).Error(0)
}

func (m *mockStatsd) Histogram(name string, value float64, tags []string, rate float64) error {
	return m.Called(name, value, tags, rate).Error(0)
}

func (m *mockStatsd) Close() error {
	return m.Called().Error(0)
}

func TestSetupMetrics(t *testing.T) {
	t.Run("Disabled returns Noop", func(t *testing.T) {
		provider, err := SetupMetrics(config.MetricsConf{Datadog: config.DatadogConf{Enabled: false}})
		require.NoError(t, err)
		assert.IsType(t, metrics.Noop{}, provider)
	})

	t.Run("Enabled returns Datadog", func(t *testing.T) {
		provider, err := SetupMetrics(config.MetricsConf{
			Datadog: config.DatadogConf{Enabled: true, Addr: "localhost:8125", Namespace: "quick."},
		})
		require.NoError(t, err)

		dd, ok := provider.(*DatadogProvider)
		require.True(t, ok)
		assert.NoError(t, dd.Close())
	})
}

func TestDatadogProvider_GlobalTags(t *testing.T) {
	client := &mockStatsd{}
	p := &DatadogProvider{client: client, tags: []string{"env:test"}}

	client.On("Count", "dynamodb.requests", int64(1), []string{"env:test", "operation:get"}, float64(1)).Return(nil)
	client.On("Histogram", "dynamodb.latency_ms", 3.0, []string{"env:test"}, float64(1)).Return(nil)
	client.On("Gauge", "cache.size", 2.0, []string{"env:test"}, float64(1)).Return(nil)

	require.NoError(t, p.Count("dynamodb.requests", 1, []string{"operation:get"}))
	require.NoError(t, p.Histogram("dynamodb.latency_ms", 3, nil))
	require.NoError(t, p.Gauge("cache.size", 2, nil))
	client.AssertExpectations(t)
}
