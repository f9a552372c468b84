package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raywall/dynamodb-quick-service/pkg/config"
	"github.com/raywall/dynamodb-quick-service/pkg/metrics"
	"github.com/rs/zerolog"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
	DefaultRoute        = "/v1"

	maxBodyBytes = 4 << 20
)

type ctxKey string

// ContextKeyCorrID guarda o correlation id no contexto da requisição.
const ContextKeyCorrID ctxKey = "correlation_id"

// Server agrupa o que os transportes HTTP e Lambda precisam.
type Server struct {
	Dispatcher *Dispatcher
	Service    config.ServiceDetails
	Metrics    metrics.Provider
	Logger     zerolog.Logger
}

func (s *Server) route() string {
	route := strings.TrimSuffix(s.Service.Route, "/")
	if route == "" {
		return DefaultRoute
	}
	return route
}

func (s *Server) metrics() metrics.Provider {
	if s.Metrics == nil {
		return metrics.Noop{}
	}
	return s.Metrics
}

// Router monta as rotas:
//
//	POST {route}/{operation}
//	GET  {route}/health
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix(s.route()).Subrouter()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	api.HandleFunc("/{operation}", s.handleOperation).Methods(http.MethodPost)

	return s.ObservabilityMiddleware(router)
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, `{"error":"unreadable body","kind":"invalid_input"}`, http.StatusBadRequest)
		return
	}

	status, resp := s.Dispatcher.Dispatch(r.Context(), mux.Vars(r)["operation"], body)

	if resp != nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if resp != nil {
		_, _ = w.Write(resp)
	}
}

// StartHTTPServer sobe o servidor e encerra de forma graciosa quando ctx é cancelado.
func StartHTTPServer(ctx context.Context, s *Server) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Service.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info().Str("addr", srv.Addr).Str("route", s.route()).Msg("Servidor HTTP ouvindo")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.Logger.Info().Msg("Encerrando servidor HTTP")
		return srv.Shutdown(shutdownCtx)
	}
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	duration := time.Since(rw.startTime)
	rw.Header().Set(HeaderLatency, strconv.FormatInt(duration.Milliseconds(), 10))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (s *Server) ObservabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		corrID := r.Header.Get(HeaderCorrelationID)
		if corrID == "" {
			corrID = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, corrID)

		logger := s.Logger.With().Str("correlation_id", corrID).Logger()
		ctx := logger.WithContext(r.Context())
		ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			startTime:      start,
		}

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		s.observe(logger, r.Method, r.URL.Path, wrapper.statusCode, time.Since(start))
	})
}

func (s *Server) observe(logger zerolog.Logger, method, path string, status int, elapsed time.Duration) {
	tags := []string{"method:" + method, "status:" + strconv.Itoa(status)}
	s.metrics().Count("http.requests", 1, tags)
	s.metrics().Histogram("http.latency_ms", float64(elapsed.Milliseconds()), tags)

	logger.Info().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Int64("latency_ms", elapsed.Milliseconds()).
		Msg("request completed")
}
