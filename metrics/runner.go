package metrics

import (
	"context"
	"time"

	"github.com/throttlify/throttlify"
)

var ctxRecorderKey contextKey = "recorder"

type contextKey string

func (c contextKey) String() string {
	return "metrics-ctx-key" + string(c)
}

// RecorderFromContext will get the metrics recorder from the context.
// If there is not context it will return also a dummy recorder that is
// safe to use it.
func RecorderFromContext(ctx context.Context) (recorder Recorder, ok bool) {
	rec, ok := ctx.Value(ctxRecorderKey).(Recorder)

	if !ok {
		return Dummy, false
	}

	return rec, true
}

func setRecorderOnContext(ctx context.Context, r Recorder) context.Context {
	return context.WithValue(ctx, ctxRecorderKey, r)
}

// NewMeasuredRunner is a decorator that will measure the execution of the
// runner chain and leave the recorder on the context so the rest of the chain
// can measure with it.
func NewMeasuredRunner(id string, rec Recorder, r throttlify.Runner) throttlify.Runner {
	return NewMeasuredMiddleware(id, rec)(r)
}

// NewMeasuredMiddleware returns the middleware version of NewMeasuredRunner.
func NewMeasuredMiddleware(id string, rec Recorder) throttlify.Middleware {
	if rec == nil {
		rec = Dummy
	}
	rec = rec.WithID(id)

	return func(next throttlify.Runner) throttlify.Runner {
		next = throttlify.SanitizeRunner(next)

		return throttlify.RunnerFunc(func(ctx context.Context, f throttlify.Func) (err error) {
			defer func(start time.Time) {
				rec.ObserveCommandExecution(start, err == nil)
			}(time.Now())

			ctx = setRecorderOnContext(ctx, rec)

			return next.Run(ctx, f)
		})
	}
}
