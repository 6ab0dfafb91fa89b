package throttle

import (
	"context"
	"fmt"

	"github.com/throttlify/throttlify/errors"
)

// Operation is the asynchronous call that will be throttled. It receives the
// arguments of the call and returns its result or an error.
type Operation[A, R any] func(ctx context.Context, args A) (R, error)

// Throttler wraps an Operation and limits its admission using a concurrency gate
// and a rolling window gate. One Throttler should be created per wrapped operation.
type Throttler[A, R any] struct {
	op   Operation[A, R]
	cfg  Config
	gate *gate
}

// New returns a new Throttler for the operation. The configuration is
// validated eagerly, in case of invalid configuration no Throttler is returned.
func New[A, R any](op Operation[A, R], cfg Config) (*Throttler[A, R], error) {
	if op == nil {
		return nil, fmt.Errorf("%w: missing operation", errors.ErrInvalidArgument)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.defaults()

	return &Throttler[A, R]{
		op:   op,
		cfg:  cfg,
		gate: newGate(cfg),
	}, nil
}

// Throttlify is a shorthand that returns only the throttled operation.
func Throttlify[A, R any](op Operation[A, R], cfg Config) (Operation[A, R], error) {
	t, err := New(op, cfg)
	if err != nil {
		return nil, err
	}

	return t.Call, nil
}

// Bind returns an Operation that will call the method always on the same receiver.
//
//	op := throttle.Bind(client, (*Client).Get)
func Bind[T, A, R any](recv T, method func(T, context.Context, A) (R, error)) Operation[A, R] {
	if method == nil {
		return nil
	}

	return func(ctx context.Context, args A) (R, error) {
		return method(recv, ctx, args)
	}
}

// Call waits until the call is admitted by both gates and then executes the
// operation returning its result and error as they are.
//
// A queued call can't be cancelled, ctx is passed to the operation once admitted.
func (t *Throttler[A, R]) Call(ctx context.Context, args A) (R, error) {
	settle := t.gate.acquire(t.gate.rec)
	// Settle also when the operation panics, the slots must be released anyway.
	defer settle()

	return t.op(ctx, args)
}

// Config returns the configuration used by the throttler with the defaults applied.
func (t *Throttler[A, R]) Config() Config {
	return t.cfg
}

// Counts returns the slots currently held on each gate.
func (t *Throttler[A, R]) Counts() Counts {
	counts, _ := t.gate.snapshot()
	return counts
}

// QueueLengths returns the number of calls waiting on each gate.
func (t *Throttler[A, R]) QueueLengths() Counts {
	_, queued := t.gate.snapshot()
	return queued
}

// Drain waits until all the admitted calls have released their slots on both
// gates or the context is done. It should be called once no more calls are
// being made, usually on a graceful shutdown.
//
// If ctx is done first, Drain returns its error but a goroutine keeps waiting
// in background until the pending releases finish.
func (t *Throttler[A, R]) Drain(ctx context.Context) error {
	if !t.gate.drain(ctx.Done()) {
		return ctx.Err()
	}
	return nil
}
