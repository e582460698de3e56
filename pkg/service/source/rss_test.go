package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/service/source"
)

const pressFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Revue de presse</title>
    <item>
      <title>Nouvelle réforme annoncée</title>
      <link>https://presse.example.fr/reforme</link>
      <guid>tag:presse,2025:reforme</guid>
      <description>Le détail de la réforme.</description>
      <pubDate>Wed, 02 Jul 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Sans identifiant</title>
      <link>https://presse.example.fr/sans-guid</link>
      <description>Entrée sans guid.</description>
    </item>
  </channel>
</rss>`

func rssConfig(endpoint string) *model.SourceConfig {
	return &model.SourceConfig{
		Name:        "pressrss",
		DisplayName: "Revue de presse RSS",
		Enabled:     true,
		Priority:    3,
		RateLimit:   model.RateLimitPolicy{PerHour: 60, PerDay: 600},
		Endpoints:   map[string]string{"feed": endpoint},
		Auth:        model.AuthScheme{Type: model.AuthTypeNone},
	}
}

func TestRSSAdapter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(pressFeed))
	}))
	defer srv.Close()

	adapter := source.NewRSS(rssConfig(srv.URL), source.WithHTTPClient(srv.Client()))

	raw, err := adapter.FetchRaw(context.Background(), "ignored")
	gt.NoError(t, err).Required()

	payload, err := adapter.Transform(raw)
	gt.NoError(t, err).Required()
	gt.Array(t, payload.Items).Length(2).Required()

	first := payload.Items[0]
	gt.Value(t, first.ID).Equal("tag:presse,2025:reforme")
	gt.Value(t, first.Title).Equal("Nouvelle réforme annoncée")
	gt.Value(t, first.URL).Equal("https://presse.example.fr/reforme")
	gt.Bool(t, first.PublishedAt.IsZero()).False()

	// Entries without a GUID get a stable URL-derived ID
	second := payload.Items[1]
	gt.Number(t, len(second.ID)).Equal(16)
	gt.Bool(t, second.PublishedAt.IsZero()).True()

	gt.Value(t, payload.Metadata["feed_title"]).Equal("Revue de presse")
}
