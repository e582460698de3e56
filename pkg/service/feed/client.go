package feed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lwalder/veille/pkg/utils/safe"
)

// ErrNotConfigured is returned when the upstream bearer token is absent
var ErrNotConfigured = goerr.New("feed bearer token is not configured")

// Client fetches the most recent original posts of one fixed account.
// Retweets and replies are excluded upstream.
type Client struct {
	endpoint   string
	token      string
	accountID  string
	maxResults int
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the upstream HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a feed client. endpoint is the user-timeline URL template
// with "{id}" standing for the account ID.
func New(endpoint, token, accountID string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		token:      token,
		accountID:  accountID,
		maxResults: 5,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RecentPosts returns the raw post objects, newest first. The response is
// passed through untouched so the frontend owns the rendering.
func (c *Client) RecentPosts(ctx context.Context) ([]json.RawMessage, error) {
	if c.token == "" {
		return nil, ErrNotConfigured
	}

	endpoint := strings.ReplaceAll(c.endpoint, "{id}", url.PathEscape(c.accountID))
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid feed endpoint", goerr.V("endpoint", endpoint))
	}
	params := u.Query()
	params.Set("exclude", "retweets,replies")
	params.Set("max_results", strconv.Itoa(c.maxResults))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build timeline request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "timeline request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("feed API error",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	}

	var raw struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode timeline response")
	}

	if raw.Data == nil {
		return []json.RawMessage{}, nil
	}
	return raw.Data, nil
}
