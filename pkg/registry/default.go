package registry

import (
	"time"

	"github.com/lwalder/veille/pkg/domain/model"
)

// Default returns the built-in source catalog. Changing it requires a
// redeploy; there is deliberately no runtime mutation.
func Default() (*Registry, error) {
	return New(
		&model.SourceConfig{
			Name:        "twitter",
			DisplayName: "Twitter/X",
			Enabled:     true,
			Priority:    1,
			CacheTTL:    5 * time.Minute,
			RateLimit: model.RateLimitPolicy{
				PerHour: 100,
				PerDay:  1000,
			},
			Endpoints: map[string]string{
				"search": "https://api.twitter.com/2/tweets/search/recent",
			},
			Auth: model.AuthScheme{
				Type:      model.AuthTypeBearer,
				Header:    "Authorization",
				SecretEnv: "TWITTER_BEARER_TOKEN",
			},
			DefaultParams: map[string]string{
				"max_results":  "10",
				"tweet.fields": "created_at,author_id,public_metrics",
			},
			SearchQueries: []string{
				"UNSA Police",
				"Loïc Walder",
				"@UNSAPOLICE",
			},
		},
		&model.SourceConfig{
			Name:        "newsapi",
			DisplayName: "NewsAPI",
			Enabled:     true,
			Priority:    2,
			CacheTTL:    10 * time.Minute,
			RateLimit: model.RateLimitPolicy{
				PerHour: 50,
				PerDay:  500,
			},
			Endpoints: map[string]string{
				"everything": "https://newsapi.org/v2/everything",
			},
			Auth: model.AuthScheme{
				Type:      model.AuthTypeHeader,
				Header:    "X-API-Key",
				SecretEnv: "NEWS_API_KEY",
			},
			DefaultParams: map[string]string{
				"language": "fr",
				"sortBy":   "publishedAt",
				"pageSize": "20",
			},
			SearchQueries: []string{
				"police syndicat UNSA",
				"sécurité publique France",
			},
		},
		&model.SourceConfig{
			Name:        "pressrss",
			DisplayName: "Revue de presse RSS",
			Enabled:     true,
			Priority:    3,
			CacheTTL:    15 * time.Minute,
			RateLimit: model.RateLimitPolicy{
				PerHour: 60,
				PerDay:  600,
			},
			Endpoints: map[string]string{
				"feed": "https://www.google.fr/alerts/feeds/unsa-police.rss",
			},
			Auth: model.AuthScheme{
				Type: model.AuthTypeNone,
			},
			SearchQueries: []string{
				"UNSA Police",
			},
		},
	)
}
