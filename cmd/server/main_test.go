package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/raywall/dynamodb-quick-service/pkg/config"
	"github.com/raywall/dynamodb-quick-service/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bootYAML = `
version: "1.0"
service:
  name: boot-test
  runtime: %s
  port: 9999
  route: /api
  timeout: 1s
  logging: {enabled: false, level: error, format: json}
  metrics: {datadog: {enabled: false}}
table:
  name: users
  hash_key: pk
cache:
  enabled: %t
  addr: localhost:6379
  ttl: 30s
`

// fakeClient nunca é chamado durante o bootstrap.
type fakeClient struct{ dyndb.Client }

type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string) (dyndb.Item, bool, error) { return nil, false, nil }
func (nopCache) Set(ctx context.Context, key string, item dyndb.Item, ttl time.Duration) error {
	return nil
}
func (nopCache) Delete(ctx context.Context, key string) error { return nil }

type closeCounter struct{ n int }

func (c *closeCounter) Close() error { c.n++; return nil }

func writeBootConfig(t *testing.T, runtime string, cacheEnabled bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "service.yaml")
	content := []byte(fmt.Sprintf(bootYAML, runtime, cacheEnabled))
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func stubDeps(t *testing.T) *closeCounter {
	t.Helper()
	origServer, origLambda, origDynamo, origCache := serverStarter, lambdaStarter, newDynamoClient, newCache
	t.Cleanup(func() {
		serverStarter, lambdaStarter, newDynamoClient, newCache = origServer, origLambda, origDynamo, origCache
	})

	newDynamoClient = func(ctx context.Context, cfg config.AWSConf) (dyndb.Client, error) {
		return fakeClient{}, nil
	}
	closer := &closeCounter{}
	newCache = func(ctx context.Context, cfg config.CacheConf) (dyndb.ItemCache, io.Closer, error) {
		assert.Equal(t, "localhost:6379", cfg.Addr)
		return nopCache{}, closer, nil
	}
	return closer
}

func TestRun_ServerBootstrap(t *testing.T) {
	closer := stubDeps(t)

	called := false
	serverStarter = func(ctx context.Context, srv *transport.Server) error {
		called = true
		assert.Equal(t, "boot-test", srv.Service.Name)
		assert.Equal(t, 9999, srv.Service.Port)
		require.NotNil(t, srv.Dispatcher)
		return nil
	}

	require.NoError(t, run(context.Background(), writeBootConfig(t, "local", true)))
	assert.True(t, called, "O servidor HTTP não foi iniciado")
	assert.Equal(t, 1, closer.n)
}

func TestRun_LambdaBootstrap(t *testing.T) {
	stubDeps(t)

	var handler interface{}
	lambdaStarter = func(h interface{}) { handler = h }

	require.NoError(t, run(context.Background(), writeBootConfig(t, "lambda", false)))
	assert.NotNil(t, handler)
}

func TestRun_Errors(t *testing.T) {
	stubDeps(t)

	err := run(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	newDynamoClient = func(ctx context.Context, cfg config.AWSConf) (dyndb.Client, error) {
		return nil, errors.New("no credentials")
	}
	err = run(context.Background(), writeBootConfig(t, "local", false))
	assert.ErrorContains(t, err, "no credentials")
}
