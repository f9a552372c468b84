package request

import "github.com/raywall/dynamodb-quick-service/expression"

// DefaultScanLimit é aplicado a scans sem limite explícito.
const DefaultScanLimit int32 = 1000

// Options ajusta como as expressões entram nas requisições.
type Options struct {
	// OmitEmptyAliases deixa ExpressionAttributeNames/Values nil quando
	// nenhum alias daquele tipo foi gerado.
	OmitEmptyAliases bool
	// Joiner entre as cláusulas do filtro ("And" ou "Or").
	Joiner    string
	ScanLimit int32
}

// Option altera Options.
type Option func(*Options)

func WithJoiner(joiner string) Option {
	return func(o *Options) { o.Joiner = joiner }
}

// WithEmptyAliases mantém tabelas de alias vazias como {} para clientes que
// exigem.
func WithEmptyAliases() Option {
	return func(o *Options) { o.OmitEmptyAliases = false }
}

func WithScanLimit(limit int32) Option {
	return func(o *Options) {
		if limit > 0 {
			o.ScanLimit = limit
		}
	}
}

// WithOptions substitui todas as opções por o.
func WithOptions(o Options) Option {
	return func(dst *Options) {
		*dst = o
		if dst.ScanLimit <= 0 {
			dst.ScanLimit = DefaultScanLimit
		}
	}
}

func defaults(opts []Option) Options {
	o := Options{OmitEmptyAliases: true, Joiner: expression.JoinAnd, ScanLimit: DefaultScanLimit}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (o Options) aliases(numbering expression.Numbering) *expression.Aliases {
	return expression.NewAliases(numbering, o.OmitEmptyAliases)
}
