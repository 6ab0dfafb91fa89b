package throttle

import (
	"context"

	"github.com/throttlify/throttlify"
	"github.com/throttlify/throttlify/metrics"
)

// NewRunner returns a runner that throttles every Func executed through it
// with the same gates, see Throttler for the admission semantics.
func NewRunner(cfg Config, r throttlify.Runner) (throttlify.Runner, error) {
	m, err := NewMiddleware(cfg)
	if err != nil {
		return nil, err
	}

	return m(r), nil
}

// NewMiddleware returns a new throttle middleware. Every runner created with the
// middleware has its own gates.
func NewMiddleware(cfg Config) (throttlify.Middleware, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.defaults()

	return func(next throttlify.Runner) throttlify.Runner {
		return &runner{
			cfg:    cfg,
			gate:   newGate(cfg),
			runner: throttlify.SanitizeRunner(next),
		}
	}, nil
}

type runner struct {
	cfg    Config
	gate   *gate
	runner throttlify.Runner
}

func (r *runner) Run(ctx context.Context, f throttlify.Func) error {
	rec := r.gate.rec
	if r.cfg.MetricsRecorder == nil {
		rec, _ = metrics.RecorderFromContext(ctx)
	}

	settle := r.gate.acquire(rec)
	defer settle()

	return r.runner.Run(ctx, f)
}
