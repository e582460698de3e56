package source

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/gofeed"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/domain/types"
)

// RSS is the adapter for press-review RSS/Atom feeds. The feed URL already
// encodes its search (e.g. an alert feed), so the caller query is ignored.
type RSS struct {
	cfg    *model.SourceConfig
	parser *gofeed.Parser
}

// NewRSS creates the RSS adapter for the given source config
func NewRSS(cfg *model.SourceConfig, opts ...AdapterOption) *RSS {
	o := newAdapterOptions(opts)
	parser := gofeed.NewParser()
	parser.Client = o.client
	return &RSS{cfg: cfg, parser: parser}
}

// Name returns the source name
func (a *RSS) Name() types.SourceName {
	return a.cfg.Name
}

// FetchRaw downloads and parses the configured feed
func (a *RSS) FetchRaw(ctx context.Context, _ string) (any, error) {
	endpoint, err := a.cfg.Endpoint("feed")
	if err != nil {
		return nil, err
	}

	feed, err := a.parser.ParseURLWithContext(endpoint, ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch feed", goerr.V("url", endpoint))
	}
	return feed, nil
}

// Transform maps feed entries into canonical items
func (a *RSS) Transform(raw any) (*Payload, error) {
	feed, ok := raw.(*gofeed.Feed)
	if !ok {
		return nil, goerr.Wrap(ErrInvalidSourceOutput, "unexpected raw payload type")
	}

	items := make([]model.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item := model.Item{
			ID:          entry.GUID,
			Title:       entry.Title,
			Description: entry.Description,
			URL:         entry.Link,
			Source:      a.cfg.Name,
		}
		if item.ID == "" {
			item.ID = articleID(entry.Link)
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.PublishedAt = *entry.UpdatedParsed
		}
		if entry.Author != nil {
			item.Author = entry.Author.Name
		}
		items = append(items, item)
	}

	return &Payload{
		Items: items,
		Metadata: map[string]any{
			"feed_title":    feed.Title,
			"total_results": len(items),
			"source":        a.cfg.Name.String(),
		},
	}, nil
}
