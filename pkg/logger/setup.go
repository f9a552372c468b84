package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/raywall/dynamodb-quick-service/pkg/config"
	"github.com/rs/zerolog"
)

// Configure inicializa o logger global baseando-se na configuração do YAML.
func Configure(cfg config.LoggingConf, service string) zerolog.Logger {
	return ConfigureTo(os.Stdout, cfg, service)
}

// ConfigureTo é o Configure com destino explícito.
//
// O logger retornado também vira o zerolog.DefaultContextLogger, de modo que
// zerolog.Ctx em um contexto sem logger ainda grava com o campo "service".
func ConfigureTo(out io.Writer, cfg config.LoggingConf, service string) zerolog.Logger {
	// Define o nível de log (default: info)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// JSON para produção, Console "bonito" para local se solicitado
	if !cfg.Enabled {
		out = io.Discard
	} else if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	logger := ctx.Logger()

	zerolog.DefaultContextLogger = &logger
	return logger
}
