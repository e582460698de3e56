package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/domain/types"
	"github.com/lwalder/veille/pkg/utils/safe"
)

// NewsAPI is the adapter for the newsapi.org "everything" endpoint
type NewsAPI struct {
	cfg    *model.SourceConfig
	client *http.Client
	lookup LookupEnv
}

// NewNewsAPI creates the NewsAPI adapter for the given source config
func NewNewsAPI(cfg *model.SourceConfig, opts ...AdapterOption) *NewsAPI {
	o := newAdapterOptions(opts)
	return &NewsAPI{cfg: cfg, client: o.client, lookup: o.lookup}
}

// Name returns the source name
func (a *NewsAPI) Name() types.SourceName {
	return a.cfg.Name
}

type newsAPIResponse struct {
	Status       string        `json:"status"`
	TotalResults int           `json:"totalResults"`
	Articles     []newsArticle `json:"articles"`
}

type newsArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// FetchRaw calls the everything endpoint with the configured defaults
func (a *NewsAPI) FetchRaw(ctx context.Context, query string) (any, error) {
	endpoint, err := a.cfg.Endpoint("everything")
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid everything endpoint", goerr.V("endpoint", endpoint))
	}

	params := u.Query()
	for key, value := range a.cfg.DefaultParams {
		params.Set(key, value)
	}
	params.Set("q", fallbackQuery(a.cfg, query))
	u.RawQuery = params.Encode()

	headers, err := authHeaders(a.cfg, a.lookup)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build everything request")
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "newsapi request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("newsapi error",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	}

	var raw newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode newsapi response")
	}
	return &raw, nil
}

// Transform maps raw articles into canonical items. NewsAPI has no article
// IDs, so the URL hash stands in.
func (a *NewsAPI) Transform(raw any) (*Payload, error) {
	resp, ok := raw.(*newsAPIResponse)
	if !ok {
		return nil, goerr.Wrap(ErrInvalidSourceOutput, "unexpected raw payload type")
	}

	items := make([]model.Item, 0, len(resp.Articles))
	for _, article := range resp.Articles {
		publishedAt, _ := time.Parse(time.RFC3339, article.PublishedAt)

		items = append(items, model.Item{
			ID:          articleID(article.URL),
			Title:       article.Title,
			Description: article.Description,
			URL:         article.URL,
			PublishedAt: publishedAt,
			Author:      article.Author,
			Source:      a.cfg.Name,
			Metadata: map[string]any{
				"outlet": article.Source.Name,
			},
		})
	}

	return &Payload{
		Items: items,
		Metadata: map[string]any{
			"total_results": resp.TotalResults,
			"source":        a.cfg.Name.String(),
		},
	}, nil
}

func articleID(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:16]
}
