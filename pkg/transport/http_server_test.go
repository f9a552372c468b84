package transport

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/raywall/dynamodb-quick-service/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockMetrics struct{ mock.Mock }

func (m *mockMetrics) Count(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

func (m *mockMetrics) Gauge(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

func (m *mockMetrics) Histogram(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

func newTestServer(store dyndb.Operations, route string, logs *bytes.Buffer) *Server {
	return &Server{
		Dispatcher: NewDispatcher(store, 0),
		Service:    config.ServiceDetails{Route: route, Port: 0},
		Logger:     zerolog.New(logs),
	}
}

func TestRouter_Operation(t *testing.T) {
	var logs bytes.Buffer
	store := &dyndb.MockStore{
		GetFn: func(ctx context.Context, r dyndb.Request) (dyndb.Item, error) {
			// o logger do contexto carrega o correlation id
			zerolog.Ctx(ctx).Info().Msg("inside store")
			return dyndb.Item{"id": "1"}, nil
		},
	}
	srv := newTestServer(store, "/api/", &logs)

	req := httptest.NewRequest(http.MethodPost, "/api/get", strings.NewReader(`{"key":{"id":"1"}}`))
	req.Header.Set(HeaderCorrelationID, "corr-123")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"item":{"id":"1"}}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "corr-123", rec.Header().Get(HeaderCorrelationID))
	assert.NotEmpty(t, rec.Header().Get(HeaderLatency))
	assert.Contains(t, logs.String(), `"correlation_id":"corr-123","message":"inside store"`)
	assert.Contains(t, logs.String(), `"message":"request completed"`)
}

func TestRouter_Routes(t *testing.T) {
	srv := newTestServer(&dyndb.MockStore{}, "", &bytes.Buffer{})
	h := srv.Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/delete", strings.NewReader(`{"key":{"id":"1"}}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(HeaderCorrelationID))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/get", strings.NewReader(`{"key":{"id":"1"}}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"not_found"`)
}

func TestObservabilityMiddleware_Metrics(t *testing.T) {
	m := &mockMetrics{}
	tags := []string{"method:POST", "status:201"}
	m.On("Count", "http.requests", float64(1), tags).Return(nil).Once()
	m.On("Histogram", "http.latency_ms", mock.Anything, tags).Return(nil).Once()

	srv := newTestServer(&dyndb.MockStore{}, "/v1", &bytes.Buffer{})
	srv.Metrics = m

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/create", strings.NewReader(`{"item":{"id":"1"}}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	m.AssertExpectations(t)
}

func TestStartHTTPServer_Shutdown(t *testing.T) {
	srv := newTestServer(&dyndb.MockStore{}, "/v1", &bytes.Buffer{})
	srv.Logger = zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, StartHTTPServer(ctx, srv))
}
