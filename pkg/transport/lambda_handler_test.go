package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaHandler_Handle(t *testing.T) {
	store := &dyndb.MockStore{
		GetFn: func(ctx context.Context, r dyndb.Request) (dyndb.Item, error) {
			return dyndb.Item{"id": "1", "name": "Ana"}, nil
		},
	}
	handler := NewLambdaHandler(newTestServer(store, "/v1", &bytes.Buffer{}))

	t.Run("path parameter", func(t *testing.T) {
		resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod:     http.MethodPost,
			Path:           "/v1/get",
			PathParameters: map[string]string{"operation": "get"},
			Headers:        map[string]string{HeaderCorrelationID: "corr-1"},
			Body:           `{"key":{"id":"1"}}`,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"item":{"id":"1","name":"Ana"}}`, resp.Body)
		assert.Equal(t, "corr-1", resp.Headers[HeaderCorrelationID])
		assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	})

	t.Run("operation from path and base64 body", func(t *testing.T) {
		resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod:      http.MethodPost,
			Path:            "/v1/create",
			Body:            base64.StdEncoding.EncodeToString([]byte(`{"item":{"id":"9"}}`)),
			IsBase64Encoded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.JSONEq(t, `{"item":{"id":"9"}}`, resp.Body)
		assert.NotEmpty(t, resp.Headers[HeaderCorrelationID])
	})

	t.Run("invalid base64", func(t *testing.T) {
		resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
			Path:            "/v1/create",
			Body:            "%%%",
			IsBase64Encoded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete has no body", func(t *testing.T) {
		resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
			Path: "/v1/delete",
			Body: `{"key":{"id":"1"}}`,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, resp.Body)
	})
}
