package throttlify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/throttlify/throttlify"
	grerrors "github.com/throttlify/throttlify/errors"
)

type spy struct {
	next   throttlify.Runner
	called bool
}

func (s *spy) Run(ctx context.Context, f throttlify.Func) error {
	s.called = true
	return s.next.Run(ctx, f)
}

func newSpyMiddleware(spy *spy) throttlify.Middleware {
	return func(next throttlify.Runner) throttlify.Runner {
		spy.next = next
		return spy
	}
}

func TestRunnerChain(t *testing.T) {
	tests := []struct {
		name    string
		runners int
	}{
		{
			name:    "A chain of 5 runners should call all of them",
			runners: 5,
		},
		{
			name:    "An empty chain should still execute the func",
			runners: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := assert.New(t)

			spies := []*spy{}
			middlewares := []throttlify.Middleware{}

			for i := 0; i < test.runners; i++ {
				spy := &spy{}
				spies = append(spies, spy)
				middlewares = append(middlewares, newSpyMiddleware(spy))
			}

			executed := false
			runner := throttlify.RunnerChain(middlewares...)
			err := runner.Run(context.TODO(), func(ctx context.Context) error {
				executed = true
				return nil
			})

			assert.NoError(err)
			assert.True(executed)
			for _, spy := range spies {
				assert.True(spy.called)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	wantErr := errors.New("wanted error")

	tests := []struct {
		name   string
		ctx    func() context.Context
		f      throttlify.Func
		expErr error
	}{
		{
			name:   "A command should return the error of the func.",
			ctx:    context.TODO,
			f:      func(ctx context.Context) error { return wantErr },
			expErr: wantErr,
		},
		{
			name: "A command with a cancelled context should not execute the func.",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			f:      func(ctx context.Context) error { return wantErr },
			expErr: grerrors.ErrContextCanceled,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := assert.New(t)

			err := throttlify.SanitizeRunner(nil).Run(test.ctx(), test.f)
			assert.Equal(test.expErr, err)
		})
	}
}
