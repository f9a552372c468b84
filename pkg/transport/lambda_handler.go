package transport

import (
	"context"
	"encoding/base64"
	"path"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LambdaHandler adapta eventos do API Gateway para o Dispatcher
type LambdaHandler struct {
	srv *Server
}

// NewLambdaHandler cria uma nova instância do adaptador
func NewLambdaHandler(srv *Server) *LambdaHandler {
	return &LambdaHandler{srv: srv}
}

// Handle processa a requisição Lambda
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	// O API Gateway pode ou não normalizar o header
	corrID := req.Headers[HeaderCorrelationID]
	if corrID == "" {
		corrID = req.Headers["X-Correlation-Id"]
	}
	if corrID == "" {
		corrID = uuid.NewString()
	}

	logger := h.srv.Logger.With().Str("correlation_id", corrID).Logger()
	ctx = logger.WithContext(ctx)
	ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)

	// Rota {route}/{operation}: usa o path parameter se configurado,
	// senão o último segmento do path
	operation := req.PathParameters["operation"]
	if operation == "" {
		operation = path.Base(req.Path)
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return h.finish(logger, req, start, corrID, events.APIGatewayProxyResponse{
				StatusCode: 400,
				Body:       `{"error":"invalid base64 body","kind":"invalid_input"}`,
			}), nil
		}
		body = decoded
	}

	status, resp := h.srv.Dispatcher.Dispatch(ctx, operation, body)

	response := events.APIGatewayProxyResponse{StatusCode: status, Body: string(resp)}
	if resp != nil {
		response.Headers = map[string]string{"Content-Type": "application/json"}
	}
	return h.finish(logger, req, start, corrID, response), nil
}

func (h *LambdaHandler) finish(logger zerolog.Logger, req events.APIGatewayProxyRequest, start time.Time, corrID string, resp events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	elapsed := time.Since(start)
	resp.Headers[HeaderCorrelationID] = corrID
	resp.Headers[HeaderLatency] = strconv.FormatInt(elapsed.Milliseconds(), 10)

	h.srv.observe(logger, req.HTTPMethod, req.Path, resp.StatusCode, elapsed)
	return resp
}
