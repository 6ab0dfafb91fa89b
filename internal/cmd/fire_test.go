package cmd

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/throttlify/throttlify/internal/ratelimitserver"
)

func TestFireCommand(t *testing.T) {
	assert := assert.New(t)

	srv, err := ratelimitserver.New(ratelimitserver.Config{
		Store: ratelimitserver.NewMemoryStore(2, time.Second),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"fire",
		"--url", ts.URL,
		"--calls", "4",
		"--max", "2",
		"--duration", "300ms",
		"--metrics",
	})

	require.NoError(t, rootCmd.Execute())

	got := out.String()
	// The last two calls are admitted inside the window of the server.
	assert.Equal(2, strings.Count(got, ratelimitserver.DefaultErrorMessage))
	assert.Contains(got, "LIMITED")
	assert.Contains(got, `throttlify_throttle_queued_total{gate="window",id="fire"} 2`)
	assert.Equal(int64(2), srv.Count())
}

func TestRenderReports(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	renderReports(out, []fireReport{
		{index: 0, admitted: time.Millisecond},
	})

	assert.Contains(out.String(), "ADMITTED")
	assert.Contains(out.String(), "1ms")
}
