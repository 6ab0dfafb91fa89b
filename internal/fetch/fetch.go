// Package fetch has the HTTP operation that is throttled against the rate
// limited server.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/throttlify/throttlify/throttle"
)

// Reply is the decoded reply of the rate limited server.
type Reply struct {
	Status  int    `json:"-"`
	Count   int64  `json:"count"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Limited returns true if the server rejected the request due to the rate limit.
func (r Reply) Limited() bool {
	return r.Status == http.StatusTooManyRequests
}

// Client gets URLs from the rate limited server.
type Client struct {
	HTTPClient *http.Client
}

// Get gets the url and decodes the reply.
func (c *Client) Get(ctx context.Context, url string) (Reply, error) {
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Reply{}, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("could not get %s: %w", url, err)
	}
	defer resp.Body.Close()

	reply := Reply{Status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return Reply{}, fmt.Errorf("could not decode reply: %w", err)
	}

	return reply, nil
}

// Operation returns the Get of the client as a throttle operation.
func (c *Client) Operation() throttle.Operation[string, Reply] {
	return throttle.Bind(c, (*Client).Get)
}
