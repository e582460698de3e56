package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/service/source"
)

func newsConfig(endpoint string) *model.SourceConfig {
	return &model.SourceConfig{
		Name:        "newsapi",
		DisplayName: "NewsAPI",
		Enabled:     true,
		Priority:    2,
		RateLimit:   model.RateLimitPolicy{PerHour: 50, PerDay: 500},
		Endpoints:   map[string]string{"everything": endpoint},
		Auth: model.AuthScheme{
			Type:      model.AuthTypeHeader,
			Header:    "X-API-Key",
			SecretEnv: "NEWS_API_KEY",
		},
		DefaultParams: map[string]string{"language": "fr", "sortBy": "publishedAt"},
		SearchQueries: []string{"police syndicat UNSA"},
	}
}

func TestNewsAPIFetchRaw(t *testing.T) {
	t.Run("sends API key header and query", func(t *testing.T) {
		var gotKey, gotQ, gotLang string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("X-API-Key")
			gotQ = r.URL.Query().Get("q")
			gotLang = r.URL.Query().Get("language")
			w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
		}))
		defer srv.Close()

		adapter := source.NewNewsAPI(newsConfig(srv.URL),
			source.WithHTTPClient(srv.Client()),
			source.WithLookupEnv(lookupWith(map[string]string{"NEWS_API_KEY": "nk-1"})),
		)

		raw, err := adapter.FetchRaw(context.Background(), "")
		gt.NoError(t, err).Required()
		gt.Value(t, gotKey).Equal("nk-1")
		gt.Value(t, gotQ).Equal("police syndicat UNSA")
		gt.Value(t, gotLang).Equal("fr")

		resp := gt.Cast[*source.NewsAPIResponse](t, raw)
		gt.Value(t, resp.Status).Equal("ok")
	})
}

func TestNewsAPITransform(t *testing.T) {
	adapter := source.NewNewsAPI(newsConfig("https://newsapi.org/v2/everything"))

	t.Run("maps articles to canonical items", func(t *testing.T) {
		raw := &source.NewsAPIResponse{
			Status:       "ok",
			TotalResults: 2,
			Articles: []source.NewsArticle{
				{
					Author:      "A. Dupont",
					Title:       "Manifestation des syndicats de police",
					Description: "Compte rendu de la journée.",
					URL:         "https://presse.example.fr/articles/1",
					PublishedAt: "2025-07-02T09:00:00Z",
				},
			},
		}
		raw.Articles[0].Source.Name = "Presse Example"

		payload, err := adapter.Transform(raw)
		gt.NoError(t, err).Required()
		gt.Array(t, payload.Items).Length(1).Required()

		item := payload.Items[0]
		gt.Value(t, item.Title).Equal("Manifestation des syndicats de police")
		gt.Value(t, item.Author).Equal("A. Dupont")
		gt.Value(t, item.URL).Equal("https://presse.example.fr/articles/1")
		gt.Value(t, item.PublishedAt).Equal(time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC))
		gt.Value(t, item.Metadata["outlet"]).Equal("Presse Example")
		gt.Number(t, len(item.ID)).Equal(16)
		gt.Value(t, payload.Metadata["total_results"]).Equal(2)
	})

	t.Run("unexpected raw type is invalid output", func(t *testing.T) {
		_, err := adapter.Transform(42)
		gt.Error(t, err).Is(source.ErrInvalidSourceOutput)
	})
}
