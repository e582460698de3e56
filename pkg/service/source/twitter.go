package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/domain/types"
	"github.com/lwalder/veille/pkg/utils/safe"
)

// Twitter is the adapter for the recent-search endpoint of the Twitter/X
// API v2.
type Twitter struct {
	cfg    *model.SourceConfig
	client *http.Client
	lookup LookupEnv
}

// NewTwitter creates the Twitter adapter for the given source config
func NewTwitter(cfg *model.SourceConfig, opts ...AdapterOption) *Twitter {
	o := newAdapterOptions(opts)
	return &Twitter{cfg: cfg, client: o.client, lookup: o.lookup}
}

// Name returns the source name
func (a *Twitter) Name() types.SourceName {
	return a.cfg.Name
}

type twitterSearchResponse struct {
	Data []tweet `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

type tweet struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	CreatedAt     string         `json:"created_at"`
	AuthorID      string         `json:"author_id"`
	PublicMetrics map[string]int `json:"public_metrics"`
}

// FetchRaw calls the recent-search endpoint. An empty query falls back to
// the OR-combination of the configured search queries.
func (a *Twitter) FetchRaw(ctx context.Context, query string) (any, error) {
	endpoint, err := a.cfg.Endpoint("search")
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid search endpoint", goerr.V("endpoint", endpoint))
	}

	params := u.Query()
	for key, value := range a.cfg.DefaultParams {
		params.Set(key, value)
	}
	params.Set("query", fallbackQuery(a.cfg, query))
	u.RawQuery = params.Encode()

	headers, err := authHeaders(a.cfg, a.lookup)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build search request")
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "twitter search request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("twitter API error",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	}

	var raw twitterSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode twitter response")
	}
	return &raw, nil
}

// Transform maps raw tweets into canonical items
func (a *Twitter) Transform(raw any) (*Payload, error) {
	resp, ok := raw.(*twitterSearchResponse)
	if !ok {
		return nil, goerr.Wrap(ErrInvalidSourceOutput, "unexpected raw payload type")
	}

	items := make([]model.Item, 0, len(resp.Data))
	for _, tw := range resp.Data {
		// Unparseable dates keep the zero value and end up sorting last
		publishedAt, _ := time.Parse(time.RFC3339, tw.CreatedAt)

		items = append(items, model.Item{
			ID:          tw.ID,
			Title:       tweetTitle(tw.Text),
			Description: tw.Text,
			URL:         "https://twitter.com/user/status/" + tw.ID,
			PublishedAt: publishedAt,
			Author:      tw.AuthorID,
			Source:      a.cfg.Name,
			Metadata: map[string]any{
				"public_metrics": tw.PublicMetrics,
				"hashtags":       extractPrefixed(hashtagPattern, tw.Text),
				"mentions":       extractPrefixed(mentionPattern, tw.Text),
			},
		})
	}

	totalResults := resp.Meta.ResultCount
	if totalResults == 0 {
		totalResults = len(items)
	}

	return &Payload{
		Items: items,
		Metadata: map[string]any{
			"total_results": totalResults,
			"source":        a.cfg.Name.String(),
		},
	}, nil
}

var (
	hashtagPattern = regexp.MustCompile(`#\w+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// tweetTitle derives a title from the first 8 whitespace-separated tokens
// of the tweet body, with an ellipsis when truncated.
func tweetTitle(text string) string {
	words := strings.Fields(text)
	if len(words) <= 8 {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:8], " ") + "..."
}

// extractPrefixed returns the matched tokens stripped of their prefix
// character. The result is never nil so it serializes as an array.
func extractPrefixed(pattern *regexp.Regexp, text string) []string {
	matches := pattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, m[1:])
	}
	return tokens
}
