package manufactory

import (
	"go.uber.org/zap"

	"github.com/sghaida/manufactory/typeindex"
)

type options struct {
	log     *zap.Logger
	metrics *Metrics
	exports []typeindex.Index
}

// Option configures a CookBook, ComponentAccumulator, RuntimeManufactory or
// Manufactory. Options that do not apply to a constructor are ignored.
type Option func(*options)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithExports restricts the export set requested from Create.
func WithExports(idx ...typeindex.Index) Option {
	return func(o *options) { o.exports = append(o.exports, idx...) }
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
