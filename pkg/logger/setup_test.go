package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/raywall/dynamodb-quick-service/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		zerolog.DefaultContextLogger = nil
	})

	t.Run("Default Level Info", func(t *testing.T) {
		_ = Configure(config.LoggingConf{Enabled: true}, "")
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("Custom Level Debug", func(t *testing.T) {
		_ = Configure(config.LoggingConf{Enabled: true, Level: "DEBUG"}, "")
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("JSON output with service field", func(t *testing.T) {
		var buf bytes.Buffer
		logger := ConfigureTo(&buf, config.LoggingConf{Enabled: true, Format: "json"}, "users-api")
		logger.Info().Str("table", "users").Msg("ok")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "users-api", entry["service"])
		assert.Equal(t, "users", entry["table"])
		assert.Equal(t, "info", entry["level"])
	})

	t.Run("Context fallback", func(t *testing.T) {
		var buf bytes.Buffer
		_ = ConfigureTo(&buf, config.LoggingConf{Enabled: true}, "users-api")
		zerolog.Ctx(context.Background()).Warn().Msg("fallback")
		assert.Contains(t, buf.String(), `"service":"users-api"`)
	})

	t.Run("Disabled Logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := ConfigureTo(&buf, config.LoggingConf{Enabled: false}, "users-api")
		logger.Info().Msg("teste")
		assert.Empty(t, buf.String())
	})
}
