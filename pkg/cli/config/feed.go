package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/lwalder/veille/pkg/service/feed"
)

// Feed holds the account-timeline proxy settings. The proxy is disabled
// unless a bearer token is provided.
type Feed struct {
	endpoint  string
	token     string
	accountID string
}

func (x *Feed) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "feed-endpoint",
			Usage:       "User timeline endpoint template ({id} stands for the account ID)",
			Category:    "Feed",
			Value:       "https://api.twitter.com/2/users/{id}/tweets",
			Sources:     cli.EnvVars("VEILLE_FEED_ENDPOINT"),
			Destination: &x.endpoint,
		},
		&cli.StringFlag{
			Name:        "feed-token",
			Usage:       "Bearer token for the timeline endpoint",
			Category:    "Feed",
			Sources:     cli.EnvVars("TWITTER_BEARER_TOKEN"),
			Destination: &x.token,
		},
		&cli.StringFlag{
			Name:        "feed-account",
			Usage:       "Account ID whose posts are served",
			Category:    "Feed",
			Value:       "92128424",
			Sources:     cli.EnvVars("VEILLE_FEED_ACCOUNT"),
			Destination: &x.accountID,
		},
	}
}

func (x Feed) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("account", x.accountID),
		slog.Int("token.len", len(x.token)),
	)
}

// IsConfigured reports whether the proxy has an upstream token
func (x *Feed) IsConfigured() bool {
	return x.token != ""
}

// Configure builds the feed client
func (x *Feed) Configure() *feed.Client {
	return feed.New(x.endpoint, x.token, x.accountID)
}
