package ratelimitserver_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/throttlify/throttlify/internal/fetch"
	"github.com/throttlify/throttlify/internal/ratelimitserver"
	"github.com/throttlify/throttlify/throttle"
)

const (
	serverMax      = 2
	serverDuration = 500 * time.Millisecond
	// networkMargin covers the time between the admission of the call and
	// the hit on the server.
	networkMargin = 50 * time.Millisecond
)

func getAll(op throttle.Operation[string, fetch.Reply], url string, n int) ([]fetch.Reply, error) {
	replies := make([]fetch.Reply, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			replies[i], errs[i] = op(context.TODO(), url)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return replies, nil
}

func countLimited(replies []fetch.Reply) int {
	limited := 0
	for _, r := range replies {
		if r.Limited() {
			limited++
		}
	}
	return limited
}

func TestIntegrationThrottledClient(t *testing.T) {
	tests := []struct {
		name       string
		throttled  bool
		cfg        throttle.Config
		calls      int
		expLimited int
	}{
		{
			name:      "A throttled client should not exceed the rate limit of the server.",
			throttled: true,
			cfg: throttle.Config{
				WindowLimit:    serverMax,
				WindowDuration: serverDuration + networkMargin,
			},
			calls:      serverMax * 3,
			expLimited: 0,
		},
		{
			name:       "A non throttled client should exceed the rate limit of the server.",
			throttled:  false,
			calls:      serverMax * 4,
			expLimited: serverMax * 3,
		},
		{
			name:      "A throttled client with a max too high should exceed the rate limit of the server.",
			throttled: true,
			cfg: throttle.Config{
				WindowLimit:    serverMax + 1,
				WindowDuration: serverDuration + networkMargin,
			},
			calls:      serverMax + 1,
			expLimited: 1,
		},
		{
			name:      "A throttled client with a duration too small should exceed the rate limit of the server.",
			throttled: true,
			cfg: throttle.Config{
				WindowLimit:    serverMax,
				WindowDuration: serverDuration / 5,
			},
			calls:      serverMax * 2,
			expLimited: serverMax,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := assert.New(t)

			srv, err := ratelimitserver.New(ratelimitserver.Config{
				Store: ratelimitserver.NewMemoryStore(serverMax, serverDuration),
			})
			require.NoError(t, err)
			ts := httptest.NewServer(srv)
			defer ts.Close()

			client := &fetch.Client{HTTPClient: ts.Client()}
			op := client.Operation()
			if test.throttled {
				op, err = throttle.Throttlify(op, test.cfg)
				require.NoError(t, err)
			}

			replies, err := getAll(op, ts.URL, test.calls)
			require.NoError(t, err)

			assert.Equal(test.expLimited, countLimited(replies))
			assert.Equal(int64(test.calls-test.expLimited), srv.Count())
		})
	}
}
