package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// DefaultURL is the public usage counter endpoint.
const DefaultURL = "https://entorb.net/web-stats-json.php"

// Client talks to the remote usage counter. Every call is best-effort:
// failures are logged at debug level and otherwise ignored, the counter has
// no bearing on application state.
type Client struct {
	baseURL string
	origin  string
	http    *http.Client
	log     zerolog.Logger
}

// New returns a client for the counter at baseURL, counting under origin.
func New(baseURL, origin string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		origin:  origin,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// Read fetches the current count. Returns 0 on any failure.
func (c *Client) Read(ctx context.Context) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("read"), nil)
	if err != nil {
		return 0
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Msg("stats read failed")
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0
	}

	var body struct {
		AccessCounts float64 `json:"accesscounts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Debug().Err(err).Msg("stats read returned malformed body")
		return 0
	}
	if body.AccessCounts < 0 {
		return 0
	}
	return int(body.AccessCounts)
}

// Increment bumps the count in the background and forgets about it.
func (c *Client) Increment() {
	go func() {
		resp, err := c.http.Get(c.url("write"))
		if err != nil {
			c.log.Debug().Err(err).Msg("stats write failed")
			return
		}
		resp.Body.Close()
	}()
}

func (c *Client) url(action string) string {
	return fmt.Sprintf("%s?origin=%s&action=%s", c.baseURL, url.QueryEscape(c.origin), action)
}
